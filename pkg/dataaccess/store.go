package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
)

const storeDalName = "state_store"

// ErrNilDocument is returned when a persister hands back no document.
var ErrNilDocument = errors.New("persister returned a nil document")

// Persister loads and saves the whole state document.
type Persister interface {
	// Name is the name of the backend, used in logs and metrics.
	Name() string

	// Load reads the document. A missing document is not an error, an empty one is returned.
	Load(ctx context.Context) (*entities.Document, error)

	// Save overwrites the persisted document.
	Save(ctx context.Context, doc *entities.Document) error
}

// Pinger is implemented by persisters that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the in-memory state mirrored to a persister. Every mutation is
// followed by a whole-document save; concurrent processes sharing a backend
// overwrite each other.
type Store struct {
	// l is the logger.
	l *slog.Logger

	// p is the persistence backend.
	p Persister

	// mu guards doc.
	mu sync.Mutex

	// doc is the in-memory document.
	doc *entities.Document
}

// NewStore creates a store backed by p holding an empty document.
func NewStore(l *slog.Logger, p Persister) *Store {
	return &Store{
		l:   l.With(slog.String(logging.KeyDal, storeDalName), slog.String("backend", p.Name())),
		p:   p,
		doc: entities.NewDocument(),
	}
}

// Load replaces the in-memory document with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	doc, err := s.p.Load(ctx)
	if err != nil {
		return fmt.Errorf("error loading state: %w", err)
	} else if doc == nil {
		return ErrNilDocument
	}
	doc.Normalize()

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	s.l.Info("Loaded state",
		slog.Int("tickets", len(doc.Tickets)),
		slog.Int("guilds", len(doc.Guilds)),
		slog.Int("user_modes", len(doc.UserModes)),
	)
	return nil
}

// View calls fn with the document. fn must not retain or mutate it.
func (s *Store) View(fn func(doc *entities.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Update calls fn with the document and saves it if fn succeeds. fn must
// return before mutating when it returns an error. A failed save rolls the
// in-memory document back to its state before fn.
func (s *Store) Update(ctx context.Context, fn func(doc *entities.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("error snapshotting state: %w", err)
	}

	if err := fn(s.doc); err != nil {
		return err
	}

	if err := s.p.Save(ctx, s.doc); err != nil {
		s.l.Error("Error saving state", slog.String(logging.KeyError, err.Error()))
		if rerr := s.restore(snapshot); rerr != nil {
			s.l.Error("Error restoring state", slog.String(logging.KeyError, rerr.Error()))
		}
		return fmt.Errorf("error saving state: %w", err)
	}
	return nil
}

// restore replaces the in-memory document with a snapshot. mu must be held.
func (s *Store) restore(snapshot []byte) error {
	doc := new(entities.Document)
	if err := json.Unmarshal(snapshot, doc); err != nil {
		return err
	}
	doc.Normalize()
	s.doc = doc
	return nil
}

// Ping checks the backend if it supports it.
func (s *Store) Ping(ctx context.Context) error {
	pinger, ok := s.p.(Pinger)
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

// Backend returns the name of the persistence backend.
func (s *Store) Backend() string {
	return s.p.Name()
}
