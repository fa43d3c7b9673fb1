package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CAFE"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultAccessPassword mirrors the password the directory originally shipped
// with. Serving with it logs a warning.
const DefaultAccessPassword = "12345"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Access   AccessConfig   `mapstructure:"access"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AccessConfig configures the shared-secret gate in front of update, delete
// and import.
type AccessConfig struct {
	Password    string        `mapstructure:"password"`
	Enforce     bool          `mapstructure:"enforce"`
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "9000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "cafes.db")
	v.SetDefault("access.password", DefaultAccessPassword)
	v.SetDefault("access.enforce", true)
	v.SetDefault("access.token_secret", "")
	v.SetDefault("access.token_ttl", 15*time.Minute)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment bindings but no
// config file. Read builds on it.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables the service has always honoured.
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.mode", envPrefix+"_SERVER_MODE", "GIN_MODE")
	_ = v.BindEnv("database.dsn", envPrefix+"_DATABASE_DSN", "DATABASE_DSN")
	_ = v.BindEnv("server.allowed_origins", envPrefix+"_SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
	return v
}

// Read layers the YAML file at path (optional) over v and decodes the result.
// Callers bind flags on v beforehand.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Access.Password == "" {
		return errors.New("access password is required")
	}
	if c.Access.TokenTTL <= 0 {
		return errors.New("access token ttl must be positive")
	}
	return nil
}

// Env values arrive as one comma separated string.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
