// Package store keeps the config document: every configured storage and the
// name of the default one.
//
// A Store is only an in-memory view. Mutations reach disk when Save is called,
// through the Persister the store was loaded with.
package store

import (
	"errors"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

// DefaultName is the name of the storage materialized for a fresh install.
const DefaultName = "default"

// ErrNoDocument is returned by a Persister when nothing has been saved yet.
var ErrNoDocument = errors.New("no config document")

// Document is the persisted shape of the store.
type Document struct {
	Default  string          `json:"default,omitempty"`
	Storages []storage.Props `json:"storages"`
}

// Persister reads and writes the document. Implementations decide the format
// and location.
type Persister interface {
	Load() (*Document, error)
	Save(doc *Document) error
}

type Store struct {
	persister   Persister
	defaultName string
	storages    []*storage.Storage
}

// Load reads the document through p. When p has nothing saved yet the store
// starts with a single minio storage named "default".
func Load(p Persister) (*Store, error) {
	doc, err := p.Load()
	switch {
	case errors.Is(err, ErrNoDocument):
		doc = &Document{
			Default:  DefaultName,
			Storages: []storage.Props{{Name: DefaultName, Type: storage.TypeMinio}},
		}
	case err != nil:
		if errdefs.IsPersistence(err) {
			return nil, err
		}
		return nil, errdefs.Persistence(err, "load config")
	}

	s := &Store{persister: p, defaultName: doc.Default}
	for _, props := range doc.Storages {
		st, err := storage.FromProps(props)
		if err != nil {
			return nil, errdefs.Persistence(err, "invalid storage entry %q", props.Name)
		}
		if s.Has(st.Name()) {
			return nil, errdefs.Persistence(nil, "duplicate storage %q in config", st.Name())
		}
		s.storages = append(s.storages, st)
	}
	return s, nil
}

func (s *Store) index(name string) int {
	for i, st := range s.storages {
		if st.Name() == name {
			return i
		}
	}
	return -1
}

// DefaultName returns the configured default, which may be empty.
func (s *Store) DefaultName() string {
	return s.defaultName
}

// Default returns the default storage.
func (s *Store) Default() (*storage.Storage, error) {
	if s.defaultName == "" {
		return nil, errdefs.NotFound("default storage is not defined")
	}
	i := s.index(s.defaultName)
	if i < 0 {
		return nil, errdefs.NotFound("default storage %s not found", s.defaultName)
	}
	return s.storages[i], nil
}

func (s *Store) Get(name string) (*storage.Storage, error) {
	i := s.index(name)
	if i < 0 {
		return nil, errdefs.NotFound("storage %s not found", name)
	}
	return s.storages[i], nil
}

// GetOrDefault returns the named storage, or the default one when name is empty.
func (s *Store) GetOrDefault(name string) (*storage.Storage, error) {
	if name != "" {
		return s.Get(name)
	}
	return s.Default()
}

func (s *Store) Has(name string) bool {
	return s.index(name) >= 0
}

// Upsert adds st or replaces the storage with the same name in place. The
// first storage added to a store without a default becomes the default.
func (s *Store) Upsert(st *storage.Storage) {
	if i := s.index(st.Name()); i >= 0 {
		s.storages[i] = st
	} else {
		s.storages = append(s.storages, st)
	}
	if s.defaultName == "" {
		s.defaultName = st.Name()
	}
}

// Remove deletes the named storage and clears the default if it pointed there.
func (s *Store) Remove(name string) error {
	i := s.index(name)
	if i < 0 {
		return errdefs.NotFound("storage %s not found", name)
	}
	s.storages = append(s.storages[:i:i], s.storages[i+1:]...)
	if s.defaultName == name {
		s.defaultName = ""
	}
	return nil
}

// SetDefault makes the named storage the default.
func (s *Store) SetDefault(name string) error {
	if !s.Has(name) {
		return errdefs.NotFound("storage %s not found", name)
	}
	s.defaultName = name
	return nil
}

// Storages returns the storages in insertion order.
func (s *Store) Storages() []*storage.Storage {
	out := make([]*storage.Storage, len(s.storages))
	copy(out, s.storages)
	return out
}

// Document returns the persisted form of the store.
func (s *Store) Document() *Document {
	doc := &Document{Default: s.defaultName, Storages: make([]storage.Props, 0, len(s.storages))}
	for _, st := range s.storages {
		doc.Storages = append(doc.Storages, st.Props())
	}
	return doc
}

// Save writes the whole document through the persister.
func (s *Store) Save() error {
	if err := s.persister.Save(s.Document()); err != nil {
		if errdefs.IsPersistence(err) {
			return err
		}
		return errdefs.Persistence(err, "save config")
	}
	return nil
}
