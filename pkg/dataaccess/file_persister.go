package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/broker/pkg/entities"
)

// BackendFile is the name of the JSON file backend.
const BackendFile = "file"

// FilePersister persists the document as a single JSON file.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (f *FilePersister) Name() string {
	return BackendFile
}

// Load reads the file. A missing file yields an empty document.
func (f *FilePersister) Load(_ context.Context) (doc *entities.Document, err error) {
	done := monitoring.Observe(BackendFile, "load")
	defer func() { done(err) }()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.NewDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", f.path, err)
	}

	doc = new(entities.Document)
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", f.path, err)
	}
	doc.Normalize()
	return doc, nil
}

// Save overwrites the file. The document is written to a temporary file in
// the same directory first and renamed over the target.
func (f *FilePersister) Save(_ context.Context, doc *entities.Document) (err error) {
	done := monitoring.Observe(BackendFile, "save")
	defer func() { done(err) }()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("error replacing %s: %w", f.path, err)
	}
	return nil
}

// Ping checks that the directory holding the file exists.
func (f *FilePersister) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(f.path))
	if err != nil {
		return fmt.Errorf("error checking state directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(f.path))
	}
	return nil
}
