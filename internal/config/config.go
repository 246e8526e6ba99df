package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeBackend  = "backend"
	ModeFrontend = "frontend"
)

type Config struct {
	Project struct {
		Input  string `yaml:"input"`
		Output string `yaml:"output"`
	} `yaml:"project"`
	Render struct {
		Mode            string `yaml:"mode"` // backend or frontend
		HideDescription bool   `yaml:"hide_description"`
		DocsAlert       bool   `yaml:"docs_alert"` // "Doc" column and missing documentation markers
		HTML            bool   `yaml:"html"`
	} `yaml:"render"`
	Scan struct {
		Ignored []string `yaml:"ignored"`
		Workers int      `yaml:"workers"`
	} `yaml:"scan"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Input = "."
	cfg.Project.Output = "docs"
	cfg.Render.Mode = ModeBackend
	cfg.Scan.Workers = 4
	cfg.Storage.Path = "odatadoc.db"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file yields the
// defaults (with environment overrides applied) and an error wrapping
// os.ErrNotExist, which callers may ignore.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		applyEnv(cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ODATADOC_INPUT"); v != "" {
		cfg.Project.Input = v
	}
	if v := os.Getenv("ODATADOC_OUTPUT"); v != "" {
		cfg.Project.Output = v
	}
	if v := os.Getenv("ODATADOC_MODE"); v != "" {
		cfg.Render.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("ODATADOC_DB"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("ODATADOC_DOCS_ALERT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Render.DocsAlert = b
		}
	}
	if v := os.Getenv("ODATADOC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Workers = n
		}
	}
}

// Validate reports settings that cannot drive a run.
func (c *Config) Validate() error {
	switch c.Render.Mode {
	case ModeBackend, ModeFrontend:
	default:
		return fmt.Errorf("unknown render mode %q (want %s or %s)", c.Render.Mode, ModeBackend, ModeFrontend)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive, got %d", c.Scan.Workers)
	}
	return nil
}
