package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/custom"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
)

var (
	// ErrInvalidKey is returned when a key is not in the key table.
	ErrInvalidKey = errors.New("invalid key")

	// ErrAlreadyUsed is returned when a key has already been redeemed.
	ErrAlreadyUsed = errors.New("key already used")

	// ErrNoMode is returned when the user has not redeemed a key.
	ErrNoMode = errors.New("no key redeemed")

	// ErrModeUnset is returned when the user has not picked a mode yet.
	ErrModeUnset = errors.New("mode not selected")

	// ErrExpired is returned when the user's key has expired. The record is deleted.
	ErrExpired = errors.New("key expired")
)

const (
	// TierLifetime never expires.
	TierLifetime = "lifetime"

	// TierThreeMonth expires 90 days after redemption.
	TierThreeMonth = "3-month"

	// TierOneMonth expires 30 days after redemption.
	TierOneMonth = "1-month"
)

// tierDurations maps expiring tiers to their lifetime. Tiers not listed never expire.
var tierDurations = map[string]time.Duration{
	TierThreeMonth: 90 * 24 * time.Hour,
	TierOneMonth:   30 * 24 * time.Hour,
}

// Expired reports whether a key of tier redeemed at redeemedAt has expired at now.
func Expired(tier string, redeemedAt, now time.Time) bool {
	d, ok := tierDurations[strings.ToLower(tier)]
	if !ok {
		return false
	}
	return !now.Before(redeemedAt.Add(d))
}

// Ledger redeems one-time keys and tracks the mode each user unlocked.
type Ledger struct {
	l     *slog.Logger
	store *dataaccess.Store

	// table maps keys to their tier.
	table map[string]string
}

// NewLedger creates a ledger over the static key table.
func NewLedger(l *slog.Logger, store *dataaccess.Store, table map[string]string) *Ledger {
	return &Ledger{
		l:     l.With(slog.String(logging.KeyComponent, "keys")),
		store: store,
		table: table,
	}
}

// Redeem consumes key for userID and returns its tier. A first redemption
// leaves the mode unset until the user picks one. Redeeming again renews the
// tier and redemption time but keeps a mode already picked.
func (l *Ledger) Redeem(ctx context.Context, userID, key string, now time.Time) (string, error) {
	tier, ok := l.table[key]
	if !ok {
		return "", ErrInvalidKey
	}

	err := l.store.Update(ctx, func(doc *entities.Document) error {
		if slices.Contains(doc.UsedKeys, key) {
			return ErrAlreadyUsed
		}

		mode := entities.ModeUnset
		if prev, ok := doc.UserModes[userID]; ok && !Expired(prev.Tier, prev.RedeemedAt.Time(), now) {
			mode = prev.Mode
		}

		doc.UsedKeys = append(doc.UsedKeys, key)
		doc.UserModes[userID] = &entities.UserMode{
			UserID:     userID,
			Mode:       mode,
			Tier:       tier,
			RedeemedAt: custom.NewDatetime(now),
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	l.l.Info("Key redeemed", slog.String(logging.KeyUserID, userID), slog.String("tier", tier))
	return tier, nil
}

// SelectMode sets the mode of a user whose mode is unset. ok is false when
// the choice is not a mode or the user has nothing to select.
func (l *Ledger) SelectMode(ctx context.Context, userID, choice string) (mode entities.Mode, ok bool, err error) {
	mode, ok = entities.ParseModeChoice(choice)
	if !ok {
		return entities.ModeUnset, false, nil
	}

	if !l.Pending(userID) {
		return entities.ModeUnset, false, nil
	}

	applied := false
	err = l.store.Update(ctx, func(doc *entities.Document) error {
		um, exists := doc.UserModes[userID]
		if !exists || um.Mode != entities.ModeUnset {
			return nil
		}
		um.Mode = mode
		applied = true
		return nil
	})
	if err != nil {
		return entities.ModeUnset, false, fmt.Errorf("error selecting mode: %w", err)
	} else if !applied {
		return entities.ModeUnset, false, nil
	}

	l.l.Info("Mode selected", slog.String(logging.KeyUserID, userID), slog.String("mode", string(mode)))
	return mode, true, nil
}

// Pending reports whether userID has redeemed a key and not yet picked a mode.
func (l *Ledger) Pending(userID string) bool {
	pending := false
	l.store.View(func(doc *entities.Document) {
		um, exists := doc.UserModes[userID]
		pending = exists && um.Mode == entities.ModeUnset
	})
	return pending
}

// Active returns the user's mode record, deleting it if its tier has
// expired. ErrModeUnset is returned alongside the record when no mode has
// been picked.
func (l *Ledger) Active(ctx context.Context, userID string, now time.Time) (*entities.UserMode, error) {
	var (
		um      entities.UserMode
		found   bool
		expired bool
	)
	l.store.View(func(doc *entities.Document) {
		rec, ok := doc.UserModes[userID]
		if !ok {
			return
		}
		found = true
		um = *rec
		expired = Expired(rec.Tier, rec.RedeemedAt.Time(), now)
	})

	if !found {
		return nil, ErrNoMode
	}

	if expired {
		err := l.store.Update(ctx, func(doc *entities.Document) error {
			delete(doc.UserModes, userID)
			return nil
		})
		if err != nil {
			l.l.Error("Error deleting expired mode",
				slog.String(logging.KeyUserID, userID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
		l.l.Info("Key expired", slog.String(logging.KeyUserID, userID), slog.String("tier", um.Tier))
		return nil, ErrExpired
	}

	if um.Mode == entities.ModeUnset {
		return &um, ErrModeUnset
	}
	return &um, nil
}
