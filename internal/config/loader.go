package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STASIS_LOG_LEVEL.
const EnvPrefix = "STASIS"

// flagKeys maps command line flags onto settings keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"log-level": "log.level",
	"no-input":  "no_input",
}

// DefaultFile returns $HOME/.stasis/storage.yaml.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stasis", "storage.yaml")
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(".stasis", "plugins", "storage")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, dataDir)
	}

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("no_input", false)
	v.SetDefault("network", "workspace")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("docker.host", "")
	v.SetDefault("docker.min_api_version", "1.41")
	v.SetDefault("proxy.container", "proxy.ws")
	v.SetDefault("proxy.image", "nginxproxy/nginx-proxy:latest")
	v.SetDefault("proxy.port", "80:80")
	v.SetDefault("probe.timeout", "5s")
}

// Load reads the settings. filename is optional: when empty the default file
// is used if it exists. Environment variables and the given flags override
// the file.
func Load(filename string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	explicit := filename != ""
	if !explicit {
		filename = DefaultFile()
	}
	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(filename); os.IsNotExist(statErr) {
				if explicit {
					return nil, fmt.Errorf("settings file %s not found", filename)
				}
			} else {
				return nil, fmt.Errorf("error reading settings file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that would otherwise fail deep inside an operation.
func (s *Settings) Validate() error {
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.Log.Level)
	}
	switch s.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", s.Log.Format)
	}
	if s.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if s.Network == "" {
		return fmt.Errorf("network must not be empty")
	}
	if s.Docker.MinAPIVersion == "" {
		return fmt.Errorf("docker.min_api_version must not be empty")
	}
	if _, err := nat.ParsePortSpec(s.Proxy.Port); err != nil {
		return fmt.Errorf("invalid proxy port mapping %s: %w", s.Proxy.Port, err)
	}
	if s.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	return nil
}
