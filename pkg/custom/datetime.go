package custom

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Datetime is a UTC timestamp persisted as RFC3339 in JSON and as a native
// datetime in BSON. The zero value is persisted as null.
type Datetime time.Time

// NewDatetime converts t to a Datetime, dropping the location and monotonic reading.
func NewDatetime(t time.Time) Datetime {
	return Datetime(t.UTC())
}

// Time returns the underlying time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the datetime is unset.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

// Unix returns the datetime as seconds since the epoch.
func (d Datetime) Unix() int64 {
	return time.Time(d).Unix()
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(time.Time(d).UTC().Format(time.RFC3339Nano))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	if bytes.Equal(text, []byte("null")) {
		*d = Datetime{}
		return nil
	}

	s, err := strconv.Unquote(string(text))
	if err != nil {
		return fmt.Errorf("invalid datetime %s: %w", text, err)
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	*d = NewDatetime(t)
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC())
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*d = Datetime{}
		return nil
	}

	tm, ok := bson.RawValue{Type: t, Value: data}.TimeOK()
	if !ok {
		return fmt.Errorf("invalid bson type %s for datetime", t)
	}
	*d = NewDatetime(tm)
	return nil
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).UTC().Format(time.RFC3339)
}
