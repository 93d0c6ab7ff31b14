package dataaccess

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/custom"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")
	return l
}

func fullDocument() *entities.Document {
	at := custom.NewDatetime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	doc := entities.NewDocument()
	doc.UsedKeys = append(doc.UsedKeys, "ABC123", "XYZ789")
	doc.UserModes["u1"] = &entities.UserMode{UserID: "u1", Mode: entities.ModeMiddleman, Tier: "lifetime", RedeemedAt: at}
	doc.UserModes["u2"] = &entities.UserMode{UserID: "u2", Mode: entities.ModeUnset, Tier: "3-month", RedeemedAt: at}
	doc.Guild("g1").Setup = entities.GuildSetup{
		TranscriptsChannelID: "c-transcripts",
		MiddlemanRoleID:      "r-mm",
		HelperRoleID:         "r-helper",
		CoOwnerRoleID:        "r-co",
		VerificationLink:     "https://verify.example.com",
		GuideChannelID:       "c-guide",
	}
	doc.Guild("g2")
	doc.Tickets["c1"] = &entities.Ticket{
		ChannelID:  "c1",
		GuildID:    "g1",
		Opener:     "u3",
		ClaimedBy:  "u4",
		AddedUsers: []string{"u5"},
		Mode:       entities.ModeMiddleman,
		CreatedAt:  at,
	}
	doc.Tickets["c2"] = &entities.Ticket{
		ChannelID:  "c2",
		GuildID:    "g1",
		Opener:     "u6",
		AddedUsers: []string{},
		CreatedAt:  at,
	}
	doc.Vouches["u4"] = 7
	doc.Afk["u5"] = &entities.Afk{Reason: "lunch", Since: at}
	return doc
}

func TestFilePersister_RoundTrip(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "state.json"))

	want := fullDocument()
	require.NoError(t, p.Save(context.Background(), want))

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFilePersister_Missing(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "missing.json"))

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, entities.NewDocument(), got)
}

func TestFilePersister_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFilePersister(path).Load(context.Background())
	require.Error(t, err)
}

func TestFilePersister_Keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, NewFilePersister(path).Save(context.Background(), fullDocument()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"usedKeys"`, `"userModes"`, `"guilds"`, `"setup"`, `"tickets"`, `"vouches"`, `"afk"`} {
		require.Contains(t, string(b), key)
	}
}

func TestFilePersister_Ping(t *testing.T) {
	require.NoError(t, NewFilePersister(filepath.Join(t.TempDir(), "state.json")).Ping(context.Background()))
	require.Error(t, NewFilePersister(filepath.Join(t.TempDir(), "nope", "state.json")).Ping(context.Background()))
}

func TestMemoryPersister_RoundTrip(t *testing.T) {
	p := NewMemoryPersister()

	want := fullDocument()
	require.NoError(t, p.Save(context.Background(), want))

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, p.Saves())
}

func TestStore_UpdateSaves(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(testLogger(t), p)

	err := s.Update(context.Background(), func(doc *entities.Document) error {
		doc.UsedKeys = append(doc.UsedKeys, "k1")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, p.Saves())

	reloaded := NewStore(testLogger(t), p)
	require.NoError(t, reloaded.Load(context.Background()))
	reloaded.View(func(doc *entities.Document) {
		require.Equal(t, []string{"k1"}, doc.UsedKeys)
	})
}

func TestStore_UpdateError(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(testLogger(t), p)

	errBoom := errors.New("boom")
	err := s.Update(context.Background(), func(doc *entities.Document) error {
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 0, p.Saves())
}

func TestStore_SaveError(t *testing.T) {
	p := NewMemoryPersister()
	p.SaveErr = errors.New("disk full")
	s := NewStore(testLogger(t), p)

	err := s.Update(context.Background(), func(doc *entities.Document) error {
		doc.Vouches["u1"] = 1
		return nil
	})
	require.ErrorIs(t, err, p.SaveErr)

	// The mutation is rolled back.
	s.View(func(doc *entities.Document) {
		require.NotContains(t, doc.Vouches, "u1")
	})

	p.SaveErr = nil
	err = s.Update(context.Background(), func(doc *entities.Document) error {
		doc.Vouches["u2"] = 3
		return nil
	})
	require.NoError(t, err)
	s.View(func(doc *entities.Document) {
		require.Equal(t, map[string]int{"u2": 3}, doc.Vouches)
	})
}

func TestStore_SaveErrorKeepsEarlierState(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(testLogger(t), p)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(doc *entities.Document) error {
		doc.UsedKeys = append(doc.UsedKeys, "ABC123")
		doc.Guild("g1").Setup.MiddlemanRoleID = "r-mm"
		return nil
	}))

	p.SaveErr = errors.New("disk full")
	err := s.Update(ctx, func(doc *entities.Document) error {
		doc.UsedKeys = append(doc.UsedKeys, "XYZ789")
		doc.Guild("g1").Setup.MiddlemanRoleID = "r-other"
		delete(doc.Guilds, "g1")
		return nil
	})
	require.Error(t, err)

	s.View(func(doc *entities.Document) {
		require.Equal(t, []string{"ABC123"}, doc.UsedKeys)
		require.Contains(t, doc.Guilds, "g1")
		require.Equal(t, "r-mm", doc.Guilds["g1"].Setup.MiddlemanRoleID)
	})
}

func TestStore_Ping(t *testing.T) {
	s := NewStore(testLogger(t), NewMemoryPersister())
	require.NoError(t, s.Ping(context.Background()))
	require.Equal(t, BackendMemory, s.Backend())
}
