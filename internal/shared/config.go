package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

//go:embed config.example.toml
var exampleConf []byte

// Collection states understood by the collection endpoint.
const (
	StateOwn      = "own"
	StateWishlist = "wishlist"
)

// Config represents the application configuration loaded from a TOML or INI file.
type Config struct {
	User     UserConfig     `toml:"user"`
	Settings SettingsConfig `toml:"settings"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// UserConfig identifies whose collection is profiled.
type UserConfig struct {
	Username string `toml:"username"`
}

// SettingsConfig selects the collection state and the report template set.
type SettingsConfig struct {
	State        string `toml:"state"`
	Templates    string `toml:"templates"`
	TemplatesDir string `toml:"templates_dir"`
	OutputDir    string `toml:"output_dir"`
	Format       string `toml:"format"`
}

// APIConfig contains BoardGameGeek XML API settings.
type APIConfig struct {
	BaseURL              string        `toml:"base_url"`
	Token                string        `toml:"token"`
	CollectionRetryDelay time.Duration `toml:"collection_retry_delay"`
	GameRetryDelay       time.Duration `toml:"game_retry_delay"`
	RequestInterval      time.Duration `toml:"request_interval"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	Record       bool   `toml:"record"`
}

// ServerConfig contains report preview server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address for the preview server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads a configuration file from the specified path, overlays it on [DefaultConfig] and validates it.
//
// Files ending in .cfg, .ini or .properties are read as INI sections; everything else is parsed as TOML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg", ".ini", ".properties":
		err = decodeINI(data, config)
	default:
		err = toml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if config.Settings.Templates == "" {
		config.Settings.Templates = "default"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeINI maps the sections of an INI file onto config, keeping existing values for absent keys.
func decodeINI(data []byte, config *Config) error {
	file, err := ini.Load(data)
	if err != nil {
		return err
	}

	user := file.Section("user")
	config.User.Username = user.Key("username").MustString(config.User.Username)

	settings := file.Section("settings")
	config.Settings.State = settings.Key("state").MustString(config.Settings.State)
	config.Settings.Templates = settings.Key("templates").MustString(config.Settings.Templates)
	config.Settings.TemplatesDir = settings.Key("templates_dir").MustString(config.Settings.TemplatesDir)
	config.Settings.OutputDir = settings.Key("output_dir").MustString(config.Settings.OutputDir)
	config.Settings.Format = settings.Key("format").MustString(config.Settings.Format)

	api := file.Section("api")
	config.API.BaseURL = api.Key("base_url").MustString(config.API.BaseURL)
	config.API.Token = api.Key("token").MustString(config.API.Token)
	for name, target := range map[string]*time.Duration{
		"collection_retry_delay": &config.API.CollectionRetryDelay,
		"game_retry_delay":       &config.API.GameRetryDelay,
		"request_interval":       &config.API.RequestInterval,
	} {
		if !api.HasKey(name) {
			continue
		}
		d, err := api.Key(name).Duration()
		if err != nil {
			return fmt.Errorf("api.%s: %w", name, err)
		}
		*target = d
	}

	database := file.Section("database")
	config.Database.Path = database.Key("path").MustString(config.Database.Path)
	config.Database.MaxOpenConns = database.Key("max_open_conns").MustInt(config.Database.MaxOpenConns)
	config.Database.MaxIdleConns = database.Key("max_idle_conns").MustInt(config.Database.MaxIdleConns)
	config.Database.Record = database.Key("record").MustBool(config.Database.Record)

	server := file.Section("server")
	config.Server.Host = server.Key("host").MustString(config.Server.Host)
	config.Server.Port = server.Key("port").MustInt(config.Server.Port)

	return nil
}

// Validate checks the fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User.Username) == "" {
		return fmt.Errorf("%w: user.username is required", ErrInvalidConfig)
	}

	switch c.Settings.State {
	case StateOwn, StateWishlist:
	default:
		return fmt.Errorf("%w: settings.state must be %q or %q, got %q", ErrInvalidConfig, StateOwn, StateWishlist, c.Settings.State)
	}

	switch c.Settings.Format {
	case "", "html", "csv", "markdown":
	default:
		return fmt.Errorf("%w: unsupported settings.format %q", ErrInvalidConfig, c.Settings.Format)
	}

	if c.API.CollectionRetryDelay < 0 || c.API.GameRetryDelay < 0 || c.API.RequestInterval < 0 {
		return fmt.Errorf("%w: api delays must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
