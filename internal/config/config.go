package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved run configuration. Precedence, lowest to
// highest: built-in defaults, YAML run file, environment, command-line
// flags (applied by the caller).
type Config struct {
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`
	ReportPath string `yaml:"report"`
	Workers    int    `yaml:"workers"`
	StripHTML  bool   `yaml:"strip_html"`
	Quiet      bool   `yaml:"quiet"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

// Default returns the built-in configuration: sequential processing over
// input.json / output.json, pretty logging at info level.
func Default() Config {
	return Config{
		InputPath:  "input.json",
		OutputPath: "output.json",
		Workers:    1,
		LogLevel:   "info",
		LogFormat:  "pretty",
	}
}

// LoadFile overlays a YAML run file on top of the defaults. Keys absent from
// the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	payload, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. A .env file is loaded if present
// but is optional.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}
