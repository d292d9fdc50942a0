package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/docker"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

// kind holds the behavior that differs between storage types.
type kind interface {
	NeedsCredentials() bool
	// LaunchSpec returns the container to run, or nil when the type has no
	// container of its own yet.
	LaunchSpec(s *storage.Storage, network string) *docker.ContainerSpec
	OnStop(ctx context.Context, m *Manager, s *storage.Storage) error
	OnDestroy(ctx context.Context, m *Manager, s *storage.Storage) error
}

const (
	minioDataDir     = "/data"
	minioAPIPort     = "80"
	minioConsolePort = "9000"
)

type minioKind struct{}

func (minioKind) NeedsCredentials() bool { return true }

func (minioKind) LaunchSpec(s *storage.Storage, network string) *docker.ContainerSpec {
	name := s.ContainerName()
	return &docker.ContainerSpec{
		Name:  name,
		Image: s.ImageTag(),
		Cmd: []string{
			"server", minioDataDir,
			"--address", ":" + minioAPIPort,
			"--console-address", ":" + minioConsolePort,
		},
		Env: []string{
			"VIRTUAL_HOST=" + name,
			"VIRTUAL_PORT=" + minioConsolePort,
			"MINIO_ROOT_USER=" + s.Username(),
			"MINIO_ROOT_PASSWORD=" + s.Password(),
		},
		Labels: map[string]string{
			docker.LabelStorage: s.Name(),
			docker.LabelType:    string(s.Type()),
		},
		Binds:   []string{s.Volume() + ":" + minioDataDir},
		Ports:   []string{minioAPIPort + "/tcp", minioConsolePort + "/tcp"},
		Network: network,
		Aliases: []string{name},
	}
}

func (minioKind) OnStop(ctx context.Context, m *Manager, s *storage.Storage) error {
	return m.driver.RemoveContainer(ctx, s.ContainerName())
}

// OnDestroy removes the container and the volume it owns. A volume set by
// the user is left in place.
func (minioKind) OnDestroy(ctx context.Context, m *Manager, s *storage.Storage) error {
	if err := m.driver.RemoveContainer(ctx, s.ContainerName()); err != nil {
		return err
	}

	if s.HasCustomVolume() {
		m.printf("Volume %s was set manually and has been kept\n", s.Volume())
		return nil
	}

	ok, err := m.driver.SupportsVolumes(ctx)
	if err != nil {
		return err
	}
	if !ok {
		m.logger.Warn("docker engine cannot manage volumes, volume kept", zap.String("volume", s.Volume()))
		return nil
	}
	exists, err := m.driver.HasVolume(ctx, s.Volume())
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return m.driver.RemoveVolume(ctx, s.Volume())
}

// redisKind is configuration only for now. Its containers are not managed.
type redisKind struct{}

func (redisKind) NeedsCredentials() bool { return false }

func (redisKind) LaunchSpec(*storage.Storage, string) *docker.ContainerSpec { return nil }

func (redisKind) OnStop(context.Context, *Manager, *storage.Storage) error { return nil }

func (redisKind) OnDestroy(context.Context, *Manager, *storage.Storage) error { return nil }
