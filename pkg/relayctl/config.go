package relayctl

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/relayhid/relayctl/internal/relaysvc"
)

// Config is the optional on-disk configuration. Its only content is the set
// of relay family profiles; an empty or missing file selects the built-in
// USBRelay profile.
type Config struct {
	Profiles []relaysvc.Profile `yaml:"profiles"`
}

// LoadConfig reads the configuration file at path. A missing file is only an
// error when the path was given explicitly.
func LoadConfig(path string, required bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for _, profile := range cfg.Profiles {
		if profile.Marker == "" {
			return Config{}, fmt.Errorf("profile %q in %s has no marker", profile.Name, path)
		}
	}
	return cfg, nil
}
