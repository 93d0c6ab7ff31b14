package social

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/custom"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
)

// ErrSelfVouch is returned when a user vouches for themselves.
var ErrSelfVouch = errors.New("cannot vouch for yourself")

// Service holds the AFK statuses and vouch counts.
type Service struct {
	l     *slog.Logger
	store *dataaccess.Store
}

// NewService creates a social service.
func NewService(l *slog.Logger, store *dataaccess.Store) *Service {
	return &Service{
		l:     l.With(slog.String(logging.KeyComponent, "social")),
		store: store,
	}
}

// SetAfk marks userID as away.
func (s *Service) SetAfk(ctx context.Context, userID, reason string, now time.Time) (*entities.Afk, error) {
	rec := &entities.Afk{
		Reason: strings.TrimSpace(reason),
		Since:  custom.NewDatetime(now),
	}

	err := s.store.Update(ctx, func(doc *entities.Document) error {
		doc.Afk[userID] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ClearAfk removes the away status of userID, reporting whether there was one.
func (s *Service) ClearAfk(ctx context.Context, userID string) (bool, error) {
	found := false
	s.store.View(func(doc *entities.Document) {
		_, found = doc.Afk[userID]
	})
	if !found {
		return false, nil
	}

	err := s.store.Update(ctx, func(doc *entities.Document) error {
		delete(doc.Afk, userID)
		return nil
	})
	return true, err
}

// Afk returns the away statuses of the given users that have one.
func (s *Service) Afk(userIDs ...string) map[string]entities.Afk {
	out := make(map[string]entities.Afk)
	s.store.View(func(doc *entities.Document) {
		for _, id := range userIDs {
			if rec, ok := doc.Afk[id]; ok {
				out[id] = *rec
			}
		}
	})
	return out
}

// Vouch increments the vouch count of to and returns the new count.
func (s *Service) Vouch(ctx context.Context, from, to string) (int, error) {
	if from == to {
		return 0, ErrSelfVouch
	}

	var n int
	err := s.store.Update(ctx, func(doc *entities.Document) error {
		doc.Vouches[to]++
		n = doc.Vouches[to]
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.l.Debug("Vouch added", slog.String(logging.KeyUserID, from), slog.String("target", to), slog.Int("count", n))
	return n, nil
}

// Vouches returns the vouch count of userID.
func (s *Service) Vouches(userID string) int {
	var n int
	s.store.View(func(doc *entities.Document) {
		n = doc.Vouches[userID]
	})
	return n
}
