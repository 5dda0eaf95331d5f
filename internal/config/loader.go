package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir   string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DataDir     string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	BaseURL     string `json:"base_url" yaml:"base_url" toml:"base_url"`
	Production  bool   `json:"production" yaml:"production" toml:"production"`
	GPUID       int    `json:"gpu_id" yaml:"gpu_id" toml:"gpu_id"`
	TileSize    int    `json:"tile_size" yaml:"tile_size" toml:"tile_size"`
	MaxUploadMB int    `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
	// Maximum wall-clock minutes a job may run before it is failed
	// and the single-flight slot is released. 0 means the default.
	JobTimeoutMin int `json:"job_timeout_min" yaml:"job_timeout_min" toml:"job_timeout_min"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
