// Package config resolves CLI settings from defaults, an optional
// wayfinder.yaml file and WAYFINDER_* environment variables, in that order.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "wayfinder.yaml"

// EnvPrefix prefixes the environment variables that override the file.
const EnvPrefix = "WAYFINDER_"

// Config holds every setting of the CLI.
type Config struct {
	Flow    string        `mapstructure:"flow"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// SessionConfig selects where runs are persisted.
type SessionConfig struct {
	Backend  string        `mapstructure:"backend"` // file, redis or memory
	Dir      string        `mapstructure:"dir"`
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`

	// EncryptionKey seals stored runs with AES-256-GCM (hex or base64).
	// FallbackKeys still decrypt runs saved before a key rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

type CatalogConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Session: SessionConfig{Backend: "file", Dir: ".wayfinder/sessions", LockTTL: 30 * time.Second},
		Server:  ServerConfig{Addr: ":8080", Metrics: true},
	}
}

// Load resolves the configuration. An empty path means DefaultFile, which may
// be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	raw := map[string]any{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	keys := envKeys()
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if path, known := keys[strings.TrimPrefix(key, EnvPrefix)]; known {
			setPath(raw, path, value)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	// Relative session dirs in a config file are relative to that file.
	if explicit && !filepath.IsAbs(cfg.Session.Dir) && hasKey(raw, "session", "dir") {
		cfg.Session.Dir = filepath.Join(filepath.Dir(path), cfg.Session.Dir)
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Session.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("invalid configuration: unknown session backend %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Session.RedisURL == "" {
		return errors.New("invalid configuration: session.redis_url is required for the redis backend")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid configuration: unknown log format %q", c.Log.Format)
	}
	return nil
}

// envKeys maps environment suffixes such as SESSION_REDIS_URL to the
// corresponding key path. Variables matching no setting are ignored.
func envKeys() map[string][]string {
	out := map[string][]string{}
	var walk func(t reflect.Type, prefix []string)
	walk = func(t reflect.Type, prefix []string) {
		for i := range t.NumField() {
			f := t.Field(i)
			path := append(slices.Clone(prefix), f.Tag.Get("mapstructure"))
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, path)
				continue
			}
			out[strings.ToUpper(strings.Join(path, "_"))] = path
		}
	}
	walk(reflect.TypeOf(Config{}), nil)
	return out
}

func setPath(m map[string]any, path []string, value string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func hasKey(m map[string]any, path ...string) bool {
	for i, p := range path {
		v, ok := m[p]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		if m, ok = v.(map[string]any); !ok {
			return false
		}
	}
	return false
}
