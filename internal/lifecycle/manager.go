// Package lifecycle creates, starts, stops, upgrades and destroys storages.
//
// A Manager combines the config document (loaded lazily through a
// store.Persister) with a container driver, a reverse proxy and a prompter
// for values the caller did not supply. Each operation persists the document
// itself when it changes it; a failed operation leaves the saved document
// untouched.
package lifecycle

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/docker"
	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/prompt"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
	"github.com/sarth-shah20/stasis-storage/internal/store"
)

// Driver manages containers and volumes on the container engine.
type Driver interface {
	// SupportsVolumes reports whether the engine is recent enough for the
	// volume operations storages rely on.
	SupportsVolumes(ctx context.Context) (bool, error)
	EnsureNetwork(ctx context.Context, name string) error
	HasVolume(ctx context.Context, name string) (bool, error)
	CreateVolume(ctx context.Context, name string) error
	RemoveVolume(ctx context.Context, name string) error
	// GetContainer returns nil when the container does not exist.
	GetContainer(ctx context.Context, name string) (*docker.Container, error)
	CreateContainer(ctx context.Context, spec docker.ContainerSpec) (*docker.Container, error)
	// RemoveContainer is a no-op for a missing container.
	RemoveContainer(ctx context.Context, name string) error
	Inspect(ctx context.Context, name string) (*docker.ContainerState, error)
	StartContainer(ctx context.Context, name string) error
	ListContainers(ctx context.Context) ([]docker.Container, error)
}

// Proxy re-applies virtual host routing after a storage container starts.
type Proxy interface {
	Start(ctx context.Context) error
}

// Prompter asks the user for missing values.
type Prompter interface {
	Text(message string, validate prompt.Validator) (string, error)
	Secret(message string, validate prompt.Validator) (string, error)
	Select(message string, options []prompt.Option) (string, error)
	Confirm(message string, def bool) (bool, error)
}

// Prober checks that a running storage answers at host.
type Prober interface {
	Probe(ctx context.Context, s *storage.Storage, host string) (string, error)
}

type Manager struct {
	persister store.Persister
	driver    Driver
	proxy     Proxy
	prompter  Prompter

	network string
	probers map[storage.Type]Prober
	kinds   map[storage.Type]kind
	logger  *zap.Logger
	out     io.Writer

	cfg *store.Store
}

type Option func(*Manager)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithOutput sets where user facing progress is written.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = w }
}

// WithNetwork sets the docker network storage containers join.
func WithNetwork(name string) Option {
	return func(m *Manager) { m.network = name }
}

// WithProber registers the readiness probe for a storage type.
func WithProber(t storage.Type, p Prober) Option {
	return func(m *Manager) { m.probers[t] = p }
}

func New(p store.Persister, d Driver, px Proxy, pr Prompter, opts ...Option) *Manager {
	m := &Manager{
		persister: p,
		driver:    d,
		proxy:     px,
		prompter:  pr,
		network:   "workspace",
		probers:   map[storage.Type]Prober{},
		kinds: map[storage.Type]kind{
			storage.TypeMinio: minioKind{},
			storage.TypeRedis: redisKind{},
		},
		logger: zap.NewNop(),
		out:    io.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store loads the config document on first use and returns it.
func (m *Manager) Store() (*store.Store, error) {
	if m.cfg == nil {
		cfg, err := store.Load(m.persister)
		if err != nil {
			return nil, err
		}
		m.cfg = cfg
	}
	return m.cfg, nil
}

func (m *Manager) kindOf(s *storage.Storage) kind {
	return m.kinds[s.Type()]
}

func (m *Manager) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// requireVolumes fails when the engine cannot manage volumes.
func (m *Manager) requireVolumes(ctx context.Context) error {
	ok, err := m.driver.SupportsVolumes(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errdefs.Unsupported("the docker engine is too old to manage storage volumes, please update")
	}
	return nil
}

// Row is one line of the storage listing.
type Row struct {
	Name          string
	Type          storage.Type
	ContainerName string
	Default       bool
}

func (m *Manager) row(cfg *store.Store, s *storage.Storage) Row {
	return Row{
		Name:          s.Name(),
		Type:          s.Type(),
		ContainerName: s.ContainerName(),
		Default:       cfg.DefaultName() == s.Name(),
	}
}

// List returns every storage in configuration order.
func (m *Manager) List(ctx context.Context) ([]Row, error) {
	cfg, err := m.Store()
	if err != nil {
		return nil, err
	}
	rows := []Row{}
	for _, s := range cfg.Storages() {
		rows = append(rows, m.row(cfg, s))
	}
	return rows, nil
}

// Use makes the named storage the default.
func (m *Manager) Use(ctx context.Context, name string) error {
	if name == "" {
		return errdefs.Validation("storage name is required")
	}
	cfg, err := m.Store()
	if err != nil {
		return err
	}
	if err := cfg.SetDefault(name); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	m.printf("Storage %s is now the default\n", name)
	return nil
}
