package loader

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"itorder/internal/config"
)

// LoadConfig reads a YAML config on top of config.Default(). An empty path
// returns the defaults.
func LoadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
