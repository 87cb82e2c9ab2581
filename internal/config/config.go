package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/coordkit/coordctl/internal/center"
)

// CenterEntry is one candidate coordination-store backend in the
// config file.
type CenterEntry struct {
	Name  string            `toml:"name"`
	Type  string            `toml:"type"`
	Roles string            `toml:"roles"`
	Props map[string]string `toml:"props"`
}

// Config is the daemon configuration: the candidate pool plus the
// admin surface settings.
type Config struct {
	AdminAddr string        `toml:"admin_addr"`
	Schemas   []string      `toml:"schemas"`
	Centers   []CenterEntry `toml:"centers"`
}

func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":9600"
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Validate rejects pools that cannot bootstrap: duplicate or unnamed
// candidates, missing provider types, or any required role left
// untagged.
func Validate(cfg Config) error {
	if len(cfg.Centers) == 0 {
		return fmt.Errorf("no centers configured")
	}
	seen := map[string]bool{}
	for _, entry := range cfg.Centers {
		if entry.Name == "" {
			return fmt.Errorf("center with empty name")
		}
		if entry.Type == "" {
			return fmt.Errorf("center %q has no provider type", entry.Name)
		}
		if seen[entry.Name] {
			return fmt.Errorf("duplicate center name %q", entry.Name)
		}
		seen[entry.Name] = true
	}
	pool := Pool(cfg)
	for _, role := range center.Roles() {
		if _, ok := center.Resolve(pool, role); !ok {
			return fmt.Errorf("no center tagged for role %q", role)
		}
	}
	return nil
}
