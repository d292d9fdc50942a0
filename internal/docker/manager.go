package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/versions"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"
)

// Manager handles all interactions with the Docker Daemon
type Manager struct {
	cli           *client.Client
	out           io.Writer
	logger        *zap.Logger
	minAPIVersion string
}

// Options configures a Manager.
type Options struct {
	Host          string // overrides DOCKER_HOST when set
	MinAPIVersion string // oldest daemon API allowed to manage volumes
	Out           io.Writer
	Logger        *zap.Logger
}

// NewManager creates a new Docker client connected to the local daemon
func NewManager(opts Options) (*Manager, error) {
	// FromEnv looks for standard env vars like DOCKER_HOST,
	// or defaults to the unix socket /var/run/docker.sock
	clientOpts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if opts.Host != "" {
		clientOpts = append(clientOpts, client.WithHost(opts.Host))
	}
	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Manager{
		cli:           cli,
		out:           opts.Out,
		logger:        opts.Logger,
		minAPIVersion: opts.MinAPIVersion,
	}, nil
}

// Close releases the client transport.
func (m *Manager) Close() error {
	return m.cli.Close()
}

// SupportsVolumes reports whether the daemon API is recent enough for the
// volume operations used by storages.
func (m *Manager) SupportsVolumes(ctx context.Context) (bool, error) {
	v, err := m.cli.ServerVersion(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to query docker version: %w", err)
	}
	ok := m.minAPIVersion == "" || versions.GreaterThanOrEqualTo(v.APIVersion, m.minAPIVersion)
	m.logger.Debug("docker api version",
		zap.String("server", v.APIVersion),
		zap.String("required", m.minAPIVersion),
		zap.Bool("supported", ok))
	return ok, nil
}

// EnsureImage pulls an image unless it is already present locally.
func (m *Manager) EnsureImage(ctx context.Context, imageName string) error {
	if _, _, err := m.cli.ImageInspectWithRaw(ctx, imageName); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image %s: %w", imageName, err)
	}

	fmt.Fprintf(m.out, "Pulling image: %s...\n", imageName)

	reader, err := m.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream has been read to EOF.
	if err := jsonmessage.DisplayJSONMessagesStream(reader, m.out, 0, false, nil); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}

	return nil
}

// EnsureNetwork creates a bridge network if it doesn't exist.
func (m *Manager) EnsureNetwork(ctx context.Context, networkName string) error {
	filterArgs := filters.NewArgs(filters.Arg("name", networkName))
	networks, err := m.cli.NetworkList(ctx, network.ListOptions{Filters: filterArgs})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	// the name filter matches substrings
	for _, n := range networks {
		if n.Name == networkName {
			return nil
		}
	}

	m.logger.Info("creating network", zap.String("network", networkName))
	_, err = m.cli.NetworkCreate(ctx, networkName, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{LabelManaged: "true"},
	})
	if err != nil {
		return fmt.Errorf("failed to create network %s: %w", networkName, err)
	}

	return nil
}

func (m *Manager) HasVolume(ctx context.Context, name string) (bool, error) {
	if _, err := m.cli.VolumeInspect(ctx, name); err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect volume %s: %w", name, err)
	}
	return true, nil
}

func (m *Manager) CreateVolume(ctx context.Context, name string) error {
	m.logger.Info("creating volume", zap.String("volume", name))
	_, err := m.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Driver: "local",
		Labels: map[string]string{LabelManaged: "true"},
	})
	if err != nil {
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}
	return nil
}

func (m *Manager) RemoveVolume(ctx context.Context, name string) error {
	m.logger.Info("removing volume", zap.String("volume", name))
	if err := m.cli.VolumeRemove(ctx, name, false); err != nil {
		return fmt.Errorf("failed to remove volume %s: %w", name, err)
	}
	return nil
}

// GetContainer returns the named container, or nil if it does not exist.
func (m *Manager) GetContainer(ctx context.Context, name string) (*Container, error) {
	info, err := m.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	c := &Container{
		ID:   info.ID,
		Name: strings.TrimPrefix(info.Name, "/"),
	}
	if info.Config != nil {
		c.Image = info.Config.Image
		c.Labels = info.Config.Labels
	}
	if info.State != nil {
		c.State = info.State.Status
	}
	return c, nil
}

// CreateContainer creates (but does not start) a container.
func (m *Manager) CreateContainer(ctx context.Context, spec ContainerSpec) (*Container, error) {
	if err := m.EnsureImage(ctx, spec.Image); err != nil {
		return nil, err
	}

	// 1. Exposed ports (inside) and host bindings (outside)
	exposedPorts := nat.PortSet{}
	for _, p := range spec.Ports {
		proto, port := nat.SplitProtoPort(p)
		natPort, err := nat.NewPort(proto, port)
		if err != nil {
			return nil, fmt.Errorf("invalid port %s: %w", p, err)
		}
		exposedPorts[natPort] = struct{}{}
	}

	portBindings := nat.PortMap{}
	for _, portMapping := range spec.Publish {
		// nat.ParsePortSpec parses "8080:80" into structs
		mappings, err := nat.ParsePortSpec(portMapping)
		if err != nil {
			return nil, fmt.Errorf("invalid port mapping %s: %w", portMapping, err)
		}
		for _, pm := range mappings {
			exposedPorts[pm.Port] = struct{}{}
			portBindings[pm.Port] = append(portBindings[pm.Port], pm.Binding)
		}
	}

	labels := map[string]string{LabelManaged: "true"}
	for k, v := range spec.Labels {
		labels[k] = v
	}

	// 2. Container config
	config := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Cmd,
		Env:          spec.Env,
		Labels:       labels,
		ExposedPorts: exposedPorts,
	}

	// 3. Host config
	hostConfig := &container.HostConfig{
		Binds:        spec.Binds,
		PortBindings: portBindings,
	}

	// 4. Network config
	var networkConfig *network.NetworkingConfig
	if spec.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(spec.Network)
		networkConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {Aliases: spec.Aliases},
			},
		}
	}

	m.logger.Info("creating container", zap.String("container", spec.Name), zap.String("image", spec.Image))
	resp, err := m.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}
	for _, w := range resp.Warnings {
		m.logger.Warn("docker warning", zap.String("container", spec.Name), zap.String("warning", w))
	}

	return &Container{
		ID:     resp.ID,
		Name:   spec.Name,
		Image:  spec.Image,
		State:  "created",
		Labels: labels,
	}, nil
}

// StartContainer starts an existing container.
func (m *Manager) StartContainer(ctx context.Context, name string) error {
	m.logger.Info("starting container", zap.String("container", name))
	if err := m.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", name, err)
	}
	return nil
}

// RemoveContainer stops and deletes a container. A missing container is not
// an error. Volumes are kept.
func (m *Manager) RemoveContainer(ctx context.Context, name string) error {
	m.logger.Info("removing container", zap.String("container", name))
	err := m.cli.ContainerRemove(ctx, name, container.RemoveOptions{
		RemoveVolumes: false, // Keep the data!
		Force:         true,
	})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Inspect returns the runtime state of a container.
func (m *Manager) Inspect(ctx context.Context, name string) (*ContainerState, error) {
	info, err := m.cli.ContainerInspect(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	state := &ContainerState{}
	if info.State != nil {
		state.Running = info.State.Running
		state.Status = info.State.Status
	}
	if info.NetworkSettings != nil {
		for _, ep := range info.NetworkSettings.Networks {
			if ep != nil && ep.IPAddress != "" {
				state.IP = ep.IPAddress
				break
			}
		}
	}
	return state, nil
}

// ListContainers returns the containers created by stasis-storage.
func (m *Manager) ListContainers(ctx context.Context) ([]Container, error) {
	// Create a filter: label="stasis.managed=true"
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", LabelManaged+"=true")

	list, err := m.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	out := make([]Container, 0, len(list))
	for _, c := range list {
		name := ""
		if len(c.Names) > 0 {
			// c.Names[0] is usually "/minio-s1.ws", strip the slash
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		out = append(out, Container{
			ID:     c.ID,
			Name:   name,
			Image:  c.Image,
			State:  c.State,
			Labels: c.Labels,
		})
	}
	return out, nil
}
