package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/docker"
	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
	"github.com/sarth-shah20/stasis-storage/internal/store"
)

// Start launches a storage. With an empty name the default storage is
// started, and if there is none a new storage is created first. restart
// replaces an existing container so that upgraded settings take effect.
func (m *Manager) Start(ctx context.Context, name string, restart bool) error {
	cfg, err := m.Store()
	if err != nil {
		return err
	}

	if name == "" {
		if _, err := cfg.Default(); errdefs.IsNotFound(err) {
			s, err := m.createDefault(ctx, cfg)
			if err != nil {
				return err
			}
			name = s.Name()
		}
	}

	s, err := cfg.GetOrDefault(name)
	if err != nil {
		return err
	}
	if err := m.requireVolumes(ctx); err != nil {
		return err
	}

	k := m.kindOf(s)
	if k.NeedsCredentials() && !s.HasCredentials() {
		if s, err = m.fillCredentials(cfg, s); err != nil {
			return err
		}
	}

	spec := k.LaunchSpec(s, m.network)
	if spec == nil {
		m.logger.Info("storage type has no container", zap.String("storage", s.Name()), zap.String("type", string(s.Type())))
		return nil
	}
	// Only kinds with a container own a volume.
	if err := m.ensureVolume(ctx, s); err != nil {
		return err
	}
	return m.launch(ctx, s, *spec, restart)
}

// createDefault creates a storage interactively and makes it the default.
func (m *Manager) createDefault(ctx context.Context, cfg *store.Store) (*storage.Storage, error) {
	m.printf("No default storage is configured, creating one\n")
	s, err := m.Create(ctx, CreateProps{})
	if err != nil {
		return nil, err
	}
	// Create only sets the default when none was named. A dangling name is
	// replaced here.
	if _, err := cfg.Default(); err != nil {
		if err := cfg.SetDefault(s.Name()); err != nil {
			return nil, err
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// fillCredentials asks for the credentials a storage is missing and saves
// them before anything is launched with them.
func (m *Manager) fillCredentials(cfg *store.Store, s *storage.Storage) (*storage.Storage, error) {
	m.printf("Storage %s has no credentials\n", s.Name())

	username := s.Username()
	if username == "" {
		var err error
		if username, err = m.askUsername(); err != nil {
			return nil, err
		}
	}
	password := s.Password()
	if password == "" {
		var err error
		if password, err = m.askPassword(); err != nil {
			return nil, err
		}
	}

	next := s.Clone()
	next.SetCredentials(username, password)
	cfg.Upsert(next)
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return next, nil
}

func (m *Manager) ensureVolume(ctx context.Context, s *storage.Storage) error {
	exists, err := m.driver.HasVolume(ctx, s.Volume())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.driver.CreateVolume(ctx, s.Volume())
}

func (m *Manager) launch(ctx context.Context, s *storage.Storage, spec docker.ContainerSpec, restart bool) error {
	if err := m.driver.EnsureNetwork(ctx, m.network); err != nil {
		return err
	}

	if restart {
		if err := m.driver.RemoveContainer(ctx, spec.Name); err != nil {
			return err
		}
	}

	c, err := m.driver.GetContainer(ctx, spec.Name)
	if err != nil {
		return err
	}
	if c == nil {
		if _, err := m.driver.CreateContainer(ctx, spec); err != nil {
			return err
		}
	}

	state, err := m.driver.Inspect(ctx, spec.Name)
	if err != nil {
		return err
	}
	if state.Running {
		m.printf("Storage %s is already running\n", s.Name())
		return nil
	}

	if err := m.driver.StartContainer(ctx, spec.Name); err != nil {
		return err
	}
	if err := m.proxy.Start(ctx); err != nil {
		return fmt.Errorf("storage %s started but the proxy failed: %w", s.Name(), err)
	}

	m.logger.Info("storage started", zap.String("storage", s.Name()), zap.String("container", spec.Name))
	m.printf("Storage %s started at http://%s\n", s.Name(), spec.Name)
	return nil
}

// Stop stops a storage. The volume and the configuration are kept.
func (m *Manager) Stop(ctx context.Context, name string) error {
	cfg, err := m.Store()
	if err != nil {
		return err
	}
	s, err := cfg.GetOrDefault(name)
	if err != nil {
		return err
	}
	if err := m.kindOf(s).OnStop(ctx, m, s); err != nil {
		return err
	}
	m.logger.Info("storage stopped", zap.String("storage", s.Name()))
	m.printf("Storage %s stopped\n", s.Name())
	return nil
}

// Destroy removes a storage together with its container and owned volume.
// The default storage can only be destroyed with force, and the user is
// asked to confirm unless yes is set.
func (m *Manager) Destroy(ctx context.Context, name string, yes, force bool) error {
	if name == "" {
		return errdefs.Validation("storage name is required")
	}
	cfg, err := m.Store()
	if err != nil {
		return err
	}
	s, err := cfg.Get(name)
	if err != nil {
		return err
	}

	if cfg.DefaultName() == s.Name() && !force {
		return errdefs.Forbidden("storage %s is the default, use --force to destroy it", s.Name())
	}

	if !yes {
		ok, err := m.prompter.Confirm(fmt.Sprintf("Destroy storage %s?", s.Name()), false)
		if err != nil {
			return err
		}
		if !ok {
			return errdefs.Aborted("destroy of storage %s cancelled", s.Name())
		}
	}

	if err := m.kindOf(s).OnDestroy(ctx, m, s); err != nil {
		return err
	}
	if err := cfg.Remove(s.Name()); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	m.logger.Info("storage destroyed", zap.String("storage", s.Name()))
	m.printf("Storage %s destroyed\n", s.Name())
	return nil
}

// Container states reported by Status.
const (
	StateRunning = "running"
	StateStopped = "stopped"
	StateAbsent  = "absent"
)

// StatusRow is a listing row with the runtime state of the storage.
type StatusRow struct {
	Row
	State string
	IP    string
	// Probe holds the probe result, or the probe error when it failed.
	Probe string
}

// Status reports the container state of one storage, or of all storages when
// name is empty. With probe set, running storages are also checked on their
// own protocol.
func (m *Manager) Status(ctx context.Context, name string, probe bool) ([]StatusRow, error) {
	cfg, err := m.Store()
	if err != nil {
		return nil, err
	}

	storages := cfg.Storages()
	if name != "" {
		s, err := cfg.Get(name)
		if err != nil {
			return nil, err
		}
		storages = []*storage.Storage{s}
	}

	containers, err := m.driver.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(containers))
	for _, c := range containers {
		known[c.Name] = true
	}

	rows := make([]StatusRow, 0, len(storages))
	for _, s := range storages {
		row := StatusRow{Row: m.row(cfg, s), State: StateAbsent}
		if known[s.ContainerName()] {
			state, err := m.driver.Inspect(ctx, s.ContainerName())
			if err != nil {
				return nil, err
			}
			row.State = StateStopped
			if state.Running {
				row.State = StateRunning
				row.IP = state.IP
			}
		}
		if probe && row.State == StateRunning {
			row.Probe = m.probe(ctx, s, row.IP)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *Manager) probe(ctx context.Context, s *storage.Storage, host string) string {
	p, ok := m.probers[s.Type()]
	if !ok {
		return "no probe"
	}
	if host == "" {
		return "no address"
	}
	res, err := p.Probe(ctx, s, host)
	if err != nil {
		m.logger.Warn("probe failed", zap.String("storage", s.Name()), zap.Error(err))
		return "error: " + err.Error()
	}
	return res
}
