package keys

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *dataaccess.Store) {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	store := dataaccess.NewStore(l, dataaccess.NewMemoryPersister())
	return NewLedger(l, store, map[string]string{
		"ABC123": TierLifetime,
		"QTR001": TierThreeMonth,
		"QTR002": TierThreeMonth,
	}), store
}

func TestLedger_Redeem(t *testing.T) {
	ledger, store := newTestLedger(t)

	tier, err := ledger.Redeem(context.Background(), "u1", "ABC123", now)
	require.NoError(t, err)
	require.Equal(t, TierLifetime, tier)

	store.View(func(doc *entities.Document) {
		require.Equal(t, []string{"ABC123"}, doc.UsedKeys)
		require.Equal(t, entities.ModeUnset, doc.UserModes["u1"].Mode)
		require.Equal(t, now, doc.UserModes["u1"].RedeemedAt.Time())
	})
}

func TestLedger_RedeemTwice(t *testing.T) {
	tests := []struct {
		name   string
		second string
	}{
		{name: "SameUser", second: "u1"},
		{name: "OtherUser", second: "u2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, store := newTestLedger(t)

			_, err := ledger.Redeem(context.Background(), "u1", "ABC123", now)
			require.NoError(t, err)

			_, err = ledger.Redeem(context.Background(), tt.second, "ABC123", now)
			require.ErrorIs(t, err, ErrAlreadyUsed)

			store.View(func(doc *entities.Document) {
				require.Equal(t, []string{"ABC123"}, doc.UsedKeys)
			})
		})
	}
}

func TestLedger_RedeemKeepsMode(t *testing.T) {
	ledger, store := newTestLedger(t)

	_, err := ledger.Redeem(context.Background(), "u1", "QTR001", now)
	require.NoError(t, err)
	_, ok, err := ledger.SelectMode(context.Background(), "u1", "middleman")
	require.NoError(t, err)
	require.True(t, ok)

	later := now.Add(30 * 24 * time.Hour)
	tier, err := ledger.Redeem(context.Background(), "u1", "ABC123", later)
	require.NoError(t, err)
	require.Equal(t, TierLifetime, tier)
	require.False(t, ledger.Pending("u1"))

	store.View(func(doc *entities.Document) {
		um := doc.UserModes["u1"]
		require.Equal(t, entities.ModeMiddleman, um.Mode)
		require.Equal(t, TierLifetime, um.Tier)
		require.Equal(t, later, um.RedeemedAt.Time())
	})
}

func TestLedger_RedeemAfterUnsetKeepsPending(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Redeem(context.Background(), "u1", "QTR001", now)
	require.NoError(t, err)
	_, err = ledger.Redeem(context.Background(), "u1", "QTR002", now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ledger.Pending("u1"))
}

func TestLedger_RedeemSaveError(t *testing.T) {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	p := dataaccess.NewMemoryPersister()
	store := dataaccess.NewStore(l, p)
	ledger := NewLedger(l, store, map[string]string{"ABC123": TierLifetime})

	p.SaveErr = errors.New("disk full")
	_, err = ledger.Redeem(context.Background(), "u1", "ABC123", now)
	require.ErrorIs(t, err, p.SaveErr)
	require.False(t, ledger.Pending("u1"))

	store.View(func(doc *entities.Document) {
		require.Empty(t, doc.UsedKeys)
		require.NotContains(t, doc.UserModes, "u1")
	})

	// The key was never consumed.
	p.SaveErr = nil
	_, err = ledger.Redeem(context.Background(), "u1", "ABC123", now)
	require.NoError(t, err)
	require.True(t, ledger.Pending("u1"))
}

func TestLedger_RedeemInvalid(t *testing.T) {
	ledger, store := newTestLedger(t)

	_, err := ledger.Redeem(context.Background(), "u1", "nope", now)
	require.ErrorIs(t, err, ErrInvalidKey)

	store.View(func(doc *entities.Document) {
		require.Empty(t, doc.UsedKeys)
		require.Empty(t, doc.UserModes)
	})
}

func TestLedger_SelectMode(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Redeem(context.Background(), "u1", "ABC123", now)
	require.NoError(t, err)
	require.True(t, ledger.Pending("u1"))

	mode, ok, err := ledger.SelectMode(context.Background(), "u1", "Ticket")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entities.ModeTicket, mode)
	require.False(t, ledger.Pending("u1"))

	// One-way transition.
	_, ok, err = ledger.SelectMode(context.Background(), "u1", "2")
	require.NoError(t, err)
	require.False(t, ok)

	um, err := ledger.Active(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Equal(t, entities.ModeTicket, um.Mode)
}

func TestLedger_SelectModeIgnored(t *testing.T) {
	ledger, _ := newTestLedger(t)

	// No redeemed key.
	_, ok, err := ledger.SelectMode(context.Background(), "u1", "1")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = ledger.Redeem(context.Background(), "u1", "ABC123", now)
	require.NoError(t, err)

	// Not a choice.
	_, ok, err = ledger.SelectMode(context.Background(), "u1", "hello")
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, ledger.Pending("u1"))
}

func TestLedger_Active(t *testing.T) {
	ledger, store := newTestLedger(t)

	_, err := ledger.Active(context.Background(), "u1", now)
	require.ErrorIs(t, err, ErrNoMode)

	_, err = ledger.Redeem(context.Background(), "u1", "QTR001", now)
	require.NoError(t, err)

	um, err := ledger.Active(context.Background(), "u1", now)
	require.ErrorIs(t, err, ErrModeUnset)
	require.NotNil(t, um)

	_, _, err = ledger.SelectMode(context.Background(), "u1", "middleman")
	require.NoError(t, err)

	_, err = ledger.Active(context.Background(), "u1", now.Add(89*24*time.Hour))
	require.NoError(t, err)

	_, err = ledger.Active(context.Background(), "u1", now.Add(90*24*time.Hour))
	require.ErrorIs(t, err, ErrExpired)

	store.View(func(doc *entities.Document) {
		require.NotContains(t, doc.UserModes, "u1")
	})

	// Re-redemption with a fresh key works.
	_, err = ledger.Redeem(context.Background(), "u1", "QTR002", now.Add(91*24*time.Hour))
	require.NoError(t, err)
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name string
		tier string
		age  time.Duration
		want bool
	}{
		{"LifetimeOld", TierLifetime, 10 * 365 * 24 * time.Hour, false},
		{"ThreeMonthFresh", TierThreeMonth, 24 * time.Hour, false},
		{"ThreeMonthBoundary", TierThreeMonth, 90 * 24 * time.Hour, true},
		{"OneMonthOld", TierOneMonth, 31 * 24 * time.Hour, true},
		{"UnknownTier", "weekly-ish", 365 * 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Expired(tt.tier, now, now.Add(tt.age)))
		})
	}
}
