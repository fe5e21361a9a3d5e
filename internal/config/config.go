// Package config loads kamdesk settings from defaults, a YAML file,
// KAMDESK_* environment variables and bound command-line flags, in that
// order of precedence (lowest first).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goatkit/kamdesk/internal/constants"
)

// Keys understood in the config file and environment.
const (
	KeyAPIURL    = "api_url"
	KeyStateFile = "state_file"
	KeyLogLevel  = "log_level"
	KeyOutput    = "output"
	KeyTimeout   = "timeout"
)

// EnvPrefix prefixes every environment override (KAMDESK_API_URL, ...).
const EnvPrefix = "KAMDESK"

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config is the resolved client configuration.
type Config struct {
	APIURL    string        `mapstructure:"api_url" yaml:"api_url"`
	StateFile string        `mapstructure:"state_file" yaml:"state_file"`
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level"`
	Output    string        `mapstructure:"output" yaml:"output"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 leaves the transport default
}

// Dir returns the directory holding config.yaml and state.yaml.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "kamdesk")
}

// DefaultPath is where the config file is looked up when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, constants.DefaultAPIURL)
	v.SetDefault(KeyStateFile, filepath.Join(Dir(), "state.yaml"))
	v.SetDefault(KeyLogLevel, constants.DefaultLogLevel)
	v.SetDefault(KeyOutput, constants.DefaultOutput)
	v.SetDefault(KeyTimeout, time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v and returns the validated result. A missing file
// at the default location is not an error; a missing explicit path is.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if strings.HasPrefix(c.StateFile, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.StateFile = filepath.Join(home, c.StateFile[2:])
		}
	}
}

func (c *Config) validate() error {
	var errs []string
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("api_url %q must be an http(s) URL", c.APIURL))
	}
	if c.StateFile == "" {
		errs = append(errs, "state_file is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Sprintf("output %q must be one of table, json, yaml", c.Output))
	}
	if c.Timeout < 0 {
		errs = append(errs, "timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
