// Package proxy runs the reverse proxy that routes VIRTUAL_HOST names to
// storage containers on the shared network.
package proxy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/docker"
)

// DockerSocket is mounted read-only so the proxy can watch container events.
const DockerSocket = "/var/run/docker.sock"

// Driver is the part of the container driver the proxy needs.
type Driver interface {
	EnsureNetwork(ctx context.Context, name string) error
	GetContainer(ctx context.Context, name string) (*docker.Container, error)
	CreateContainer(ctx context.Context, spec docker.ContainerSpec) (*docker.Container, error)
	Inspect(ctx context.Context, name string) (*docker.ContainerState, error)
	StartContainer(ctx context.Context, name string) error
}

type Config struct {
	Container string // container name
	Image     string
	Port      string // host:container
	Network   string
}

type Proxy struct {
	driver Driver
	cfg    Config
	logger *zap.Logger
}

func New(driver Driver, cfg Config, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{driver: driver, cfg: cfg, logger: logger}
}

// Start makes sure the proxy container exists and is running. nginx-proxy
// picks up new VIRTUAL_HOST containers from docker events once it runs.
func (p *Proxy) Start(ctx context.Context) error {
	if err := p.driver.EnsureNetwork(ctx, p.cfg.Network); err != nil {
		return err
	}

	c, err := p.driver.GetContainer(ctx, p.cfg.Container)
	if err != nil {
		return err
	}
	if c == nil {
		c, err = p.driver.CreateContainer(ctx, docker.ContainerSpec{
			Name:    p.cfg.Container,
			Image:   p.cfg.Image,
			Binds:   []string{DockerSocket + ":/tmp/docker.sock:ro"},
			Publish: []string{p.cfg.Port},
			Network: p.cfg.Network,
			Labels:  map[string]string{docker.LabelType: "proxy"},
		})
		if err != nil {
			return fmt.Errorf("failed to create proxy: %w", err)
		}
	}

	state, err := p.driver.Inspect(ctx, c.Name)
	if err != nil {
		return err
	}
	if state.Running {
		p.logger.Debug("proxy already running", zap.String("container", c.Name))
		return nil
	}

	if err := p.driver.StartContainer(ctx, c.Name); err != nil {
		return fmt.Errorf("failed to start proxy: %w", err)
	}
	p.logger.Info("proxy started", zap.String("container", c.Name), zap.String("port", p.cfg.Port))
	return nil
}
