package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Jacobbrewer1/broker/pkg/entities"
)

// BackendMemory is the name of the in-memory backend.
const BackendMemory = "memory"

// MemoryPersister keeps the last saved document as JSON in memory. Saves go
// through the same encoding as the file backend.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int

	// SaveErr is returned by Save when set.
	SaveErr error
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return new(MemoryPersister)
}

func (m *MemoryPersister) Name() string {
	return BackendMemory
}

func (m *MemoryPersister) Load(_ context.Context) (*entities.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return entities.NewDocument(), nil
	}

	doc := new(entities.Document)
	if err := json.Unmarshal(m.data, doc); err != nil {
		return nil, fmt.Errorf("error decoding state: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (m *MemoryPersister) Save(_ context.Context, doc *entities.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}
	m.data = b
	m.saves++
	return nil
}

// Saves returns the number of successful saves.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
