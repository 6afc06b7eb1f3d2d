package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %v", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the server configuration, loaded from an optional YAML file
// with env overrides for secrets.
type Config struct {
	Server struct {
		WSPort  int `yaml:"wsPort"`
		APIPort int `yaml:"apiPort"`
	} `yaml:"server"`

	Database struct {
		// Driver is "sqlite", "postgres", or "" to run without
		// persistence.
		Driver     string `yaml:"driver"`
		DSN        string `yaml:"dsn"`
		Migrations string `yaml:"migrations"`
	} `yaml:"database"`

	Game struct {
		QuestionsPerMatch int      `yaml:"questionsPerMatch"`
		IdleWindow        Duration `yaml:"idleWindow"`
		WatchdogInterval  Duration `yaml:"watchdogInterval"`
		Retention         Duration `yaml:"retention"`
		SaveChannelSize   int      `yaml:"saveChannelSize"`
	} `yaml:"game"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.WSPort = 8888
	cfg.Server.APIPort = 9090
	cfg.Database.Migrations = "migrations/sqlite"
	cfg.Game.QuestionsPerMatch = 5
	cfg.Game.IdleWindow = Duration(5 * time.Minute)
	cfg.Game.WatchdogInterval = Duration(30 * time.Second)
	cfg.Game.Retention = Duration(time.Hour)
	cfg.Game.SaveChannelSize = 100
	return cfg
}

// Load reads a YAML config file over the defaults. DATABASE_URL, if set,
// overrides the configured DSN.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return fmt.Errorf("database driver %s requires a dsn", c.Database.Driver)
	}
	if c.Game.QuestionsPerMatch <= 0 {
		return fmt.Errorf("questionsPerMatch must be positive")
	}
	return nil
}
