package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides, e.g. DUTY_FILL__MORNING_WEIGHT.
const EnvPrefix = "DUTY_"

type Config struct {
	Roster   RosterConfig   `json:"roster"`
	Fill     FillConfig     `json:"fill"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Logging  LoggingConfig  `json:"logging"`
}

// RosterConfig selects where registration rows come from.
type RosterConfig struct {
	// Source is "csv", "xlsx" or "db". Empty means guess from Path.
	Source string `json:"source"`
	Path   string `json:"path"`
}

// FillConfig holds the allocator knobs.
type FillConfig struct {
	// MorningWeight biases ratio-based slots: 0 excludes the morning pool,
	// 1 is neutral, above 1 prefers morning students.
	MorningWeight float64 `json:"morning_weight"`
	// FairnessCeiling caps duty assignments per family.
	FairnessCeiling int `json:"fairness_ceiling"`
	// Seed fixes the pool shuffle. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

type ServerConfig struct {
	Port    string `json:"port"`
	GinMode string `json:"gin_mode"`
}

type DatabaseConfig struct {
	// URL is a postgres DSN. When empty the sqlite file at Path is used.
	URL  string `json:"url"`
	Path string `json:"path"`
}

type AuthConfig struct {
	JWTSecret       string `json:"jwt_secret"`
	APIMasterSecret string `json:"api_master_secret"`
	AdminUsername   string `json:"admin_username"`
	AdminPassword   string `json:"admin_password"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Fill: FillConfig{MorningWeight: 1}}
	cfg.SetDefaults()
	return cfg
}

// Load reads path (yaml or json, optional when empty), then applies
// DUTY_ environment overrides, a .env file if present and the plain
// variables understood by the server (DATABASE_URL, PORT, ...).
func Load(path string) (*Config, error) {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	k := koanf.New(".")
	if err := k.Set("fill.morning_weight", 1.0); err != nil {
		return nil, err
	}
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.applyLegacyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyLegacyEnv() {
	set := func(dst *string, name string) {
		if *dst == "" {
			*dst = os.Getenv(name)
		}
	}
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Database.Path, "DATA_PATH")
	set(&c.Server.Port, "PORT")
	set(&c.Server.GinMode, "GIN_MODE")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Auth.APIMasterSecret, "API_MASTER_SECRET")
	set(&c.Auth.AdminUsername, "ADMIN_USERNAME")
	set(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Fill.FairnessCeiling == 0 {
		c.Fill.FairnessCeiling = 2
	}
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.Database.Path == "" {
		c.Database.Path = "api_keys.db"
	}
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
	if c.Auth.AdminPassword == "" {
		c.Auth.AdminPassword = "admin123"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Roster.Source == "" && c.Roster.Path != "" {
		c.Roster.Source = SourceFor(c.Roster.Path)
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Fill.MorningWeight < 0 {
		return errors.New("fill.morning_weight must not be negative")
	}
	if c.Fill.FairnessCeiling < 1 {
		return errors.New("fill.fairness_ceiling must be positive")
	}
	switch c.Roster.Source {
	case "", "csv", "xlsx", "db":
	default:
		return fmt.Errorf("unknown roster source %s", c.Roster.Source)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port: %w", err)
	}
	return nil
}

// SourceFor guesses the roster source from a file name.
func SourceFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "csv"
	}
}
