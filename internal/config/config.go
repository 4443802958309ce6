// Package config loads settings from defaults, an optional config.yaml,
// a .env file and TASKR_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TASKR"

type Config struct {
	APIURL    string        `yaml:"api_url" mapstructure:"api_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries   int           `yaml:"retries" mapstructure:"retries"`
	DBPath    string        `yaml:"db_path" mapstructure:"db_path"`
	LogFile   string        `yaml:"log_file" mapstructure:"log_file"`
	LogLevel  string        `yaml:"log_level" mapstructure:"log_level"`
	NotifyTTL time.Duration `yaml:"notify_ttl" mapstructure:"notify_ttl"`
}

// Dir returns the taskr directory under the user config dir.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "taskr"), nil
}

// DefaultConfig returns the built-in settings. Paths fall back to the
// working directory when no user config dir is available.
func DefaultConfig() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		APIURL:    "http://localhost:3000",
		Timeout:   10 * time.Second,
		Retries:   2,
		DBPath:    filepath.Join(dir, "taskr.db"),
		LogFile:   filepath.Join(dir, "taskr.log"),
		LogLevel:  "info",
		NotifyTTL: 3 * time.Second,
	}
}

// Options controls where Load looks. Zero values use the defaults.
type Options struct {
	// ConfigFile overrides <Dir>/config.yaml.
	ConfigFile string
	// EnvFile is loaded into the environment before reading TASKR_*.
	// Defaults to .env in the working directory; a missing file is ignored.
	EnvFile string
}

func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFile
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if opts.ConfigFile != "" {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("retries", cfg.Retries)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("notify_ttl", cfg.NotifyTTL)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("config: retries must not be negative, got %d", c.Retries)
	}
	if c.NotifyTTL <= 0 {
		return fmt.Errorf("config: notify_ttl must be positive, got %s", c.NotifyTTL)
	}
	return nil
}

// YAML renders the config for `taskr config show`.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(struct {
		APIURL    string `yaml:"api_url"`
		Timeout   string `yaml:"timeout"`
		Retries   int    `yaml:"retries"`
		DBPath    string `yaml:"db_path"`
		LogFile   string `yaml:"log_file"`
		LogLevel  string `yaml:"log_level"`
		NotifyTTL string `yaml:"notify_ttl"`
	}{
		APIURL:    c.APIURL,
		Timeout:   c.Timeout.String(),
		Retries:   c.Retries,
		DBPath:    c.DBPath,
		LogFile:   c.LogFile,
		LogLevel:  c.LogLevel,
		NotifyTTL: c.NotifyTTL.String(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
