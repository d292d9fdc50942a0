package config

import "time"

// Settings configures the stasis-storage tool itself. The storages it manages
// live in the config document under DataDir, not here.
type Settings struct {
	DataDir string         `mapstructure:"data_dir"` // where config.json is kept
	NoInput bool           `mapstructure:"no_input"` // never prompt, fail on missing input
	Network string         `mapstructure:"network"`  // docker network shared by storages and the proxy
	Log     LogSettings    `mapstructure:"log"`
	Docker  DockerSettings `mapstructure:"docker"`
	Proxy   ProxySettings  `mapstructure:"proxy"`
	Probe   ProbeSettings  `mapstructure:"probe"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

type DockerSettings struct {
	Host          string `mapstructure:"host"`            // e.g. "unix:///var/run/docker.sock", empty uses DOCKER_HOST
	MinAPIVersion string `mapstructure:"min_api_version"` // oldest daemon API allowed to manage volumes
}

// ProxySettings describes the reverse proxy container routing VIRTUAL_HOST
// names to storage containers.
type ProxySettings struct {
	Container string `mapstructure:"container"`
	Image     string `mapstructure:"image"`
	Port      string `mapstructure:"port"` // host:container, e.g. "80:80"
}

type ProbeSettings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}
