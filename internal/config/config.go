package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/msgtlv/internal/logging"
	"github.com/danmuck/msgtlv/internal/protocol/schema"
)

const (
	DefaultName = "tlvd"
	DefaultAddr = ":9400"
)

// Config is the tlvctl/tlvd configuration.
type Config struct {
	Server ServerConfig
	Log    logging.Config
	Schema *schema.Schema
}

type ServerConfig struct {
	Name        string
	Addr        string
	CorsOrigins []string
}

type fileConfig struct {
	Schema string       `toml:"schema"`
	Server serverTable  `toml:"server"`
	Log    logTable     `toml:"log"`
	Fields []FieldEntry `toml:"field"`
}

type serverTable struct {
	Name        string   `toml:"name"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type logTable struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	s, _ := schema.New("empty", nil)
	return Config{
		Server: ServerConfig{Name: DefaultName, Addr: DefaultAddr},
		Log:    logging.DefaultConfig(logging.ProfileRuntime),
		Schema: s,
	}
}

// Load reads path. Keys that are absent keep their defaults. A relative
// schema path is resolved against the config file's directory; inline
// [[field]] tables are used when no schema path is set.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("server", "name") {
		cfg.Server.Name = strings.TrimSpace(raw.Server.Name)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}

	if meta.IsDefined("log", "level") {
		lvl, ok := logging.ParseLevel(raw.Log.Level)
		if !ok {
			return Config{}, fmt.Errorf("config %s: unknown log level %q", path, raw.Log.Level)
		}
		cfg.Log.Level = lvl
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	switch {
	case meta.IsDefined("schema"):
		schemaPath := strings.TrimSpace(raw.Schema)
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(filepath.Dir(path), schemaPath)
		}
		s, err := schema.Load(schemaPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Schema = s
	case len(raw.Fields) > 0:
		s, err := schema.New(path, SchemaFields(raw.Fields))
		if err != nil {
			return Config{}, err
		}
		cfg.Schema = s
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Name) == "" {
		return fmt.Errorf("server name is required")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server addr is required")
	}
	if cfg.Schema == nil {
		return fmt.Errorf("schema is required")
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
