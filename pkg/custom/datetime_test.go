package custom

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type wrapper struct {
	At Datetime `json:"at" bson:"at"`
}

func TestDatetime_JSON(t *testing.T) {
	at := NewDatetime(time.Date(2024, 3, 1, 12, 30, 15, 500, time.UTC))

	b, err := json.Marshal(wrapper{At: at})
	require.NoError(t, err)
	require.JSONEq(t, `{"at":"2024-03-01T12:30:15.0000005Z"}`, string(b))

	var got wrapper
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, at, got.At)
}

func TestDatetime_JSONNull(t *testing.T) {
	b, err := json.Marshal(wrapper{})
	require.NoError(t, err)
	require.JSONEq(t, `{"at":null}`, string(b))

	var got wrapper
	require.NoError(t, json.Unmarshal(b, &got))
	require.True(t, got.At.IsZero())
}

func TestDatetime_JSONInvalid(t *testing.T) {
	var got wrapper
	require.Error(t, json.Unmarshal([]byte(`{"at":"yesterday"}`), &got))
	require.Error(t, json.Unmarshal([]byte(`{"at":12}`), &got))
}

func TestDatetime_BSON(t *testing.T) {
	at := NewDatetime(time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC))

	b, err := bson.Marshal(wrapper{At: at})
	require.NoError(t, err)

	var got wrapper
	require.NoError(t, bson.Unmarshal(b, &got))
	require.Equal(t, at, got.At)

	b, err = bson.Marshal(wrapper{})
	require.NoError(t, err)

	got = wrapper{At: at}
	require.NoError(t, bson.Unmarshal(b, &got))
	require.True(t, got.At.IsZero())
}

func TestDatetime_String(t *testing.T) {
	at := NewDatetime(time.Date(2024, 3, 1, 12, 30, 15, 0, time.FixedZone("X", 3600)))
	require.Equal(t, "2024-03-01T11:30:15Z", at.String())
}
