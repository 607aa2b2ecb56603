// Package config loads soundchunk settings from a TOML file.
//
// Config file locations (priority order):
//  1. $SOUNDCHUNK_CONFIG
//  2. ./soundchunk.toml
//  3. ~/.config/soundchunk/config.toml
//
// A missing file is not an error: [Load] returns [Default]. Command-line
// flags override whatever the file sets.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "SOUNDCHUNK_CONFIG"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNull  = "null"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config is the full settings file.
type Config struct {
	LogLevel string       `toml:"log_level"`
	Server   ServerConfig `toml:"server"`
	Cache    CacheConfig  `toml:"cache"`
	Store    StoreConfig  `toml:"store"`
	Layout   LayoutConfig `toml:"layout"`
	Editor   EditorConfig `toml:"editor"`
}

// ServerConfig configures `soundchunk serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Kind     string   `toml:"kind"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// StoreConfig selects the graph store used by the server.
type StoreConfig struct {
	Kind     string `toml:"kind"`
	RedisURL string `toml:"redis_url"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	Prefix   string `toml:"prefix"`
}

// LayoutConfig tunes the Graphviz solver.
type LayoutConfig struct {
	Direction string  `toml:"direction"`
	NodeSep   float64 `toml:"nodesep"`
	RankSep   float64 `toml:"ranksep"`
}

// EditorConfig tunes editor sessions.
type EditorConfig struct {
	Strict bool `toml:"strict"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8080"},
		Cache:    CacheConfig{Kind: CacheFile, TTL: Duration{24 * time.Hour}},
		Store:    StoreConfig{Kind: StoreMemory, Database: "soundchunk"},
		Layout:   LayoutConfig{Direction: "TB", NodeSep: 50, RankSep: 50},
	}
}

// Load finds and loads the config file, or returns defaults if none is
// found. The returned path is empty when defaults were used.
func Load() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath reads and validates the file at path. Keys the file omits
// keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case CacheFile, CacheNull:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache: redis_url is required for kind %q", CacheRedis)
		}
	default:
		return fmt.Errorf("cache: unknown kind %q", c.Cache.Kind)
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store: redis_url is required for kind %q", StoreRedis)
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store: mongo_uri is required for kind %q", StoreMongo)
		}
	default:
		return fmt.Errorf("store: unknown kind %q", c.Store.Kind)
	}

	switch strings.ToUpper(c.Layout.Direction) {
	case "", "TB", "LR":
	default:
		return fmt.Errorf("layout: invalid direction %q (must be TB or LR)", c.Layout.Direction)
	}
	if c.Layout.NodeSep < 0 || c.Layout.RankSep < 0 {
		return fmt.Errorf("layout: separations must not be negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FindPath returns the first existing config file, or "".
func FindPath() string {
	for _, p := range SearchPaths() {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// SearchPaths lists the candidate locations in priority order.
func SearchPaths() []string {
	paths := []string{os.Getenv(EnvVar), "soundchunk.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "soundchunk", "config.toml"))
	}
	return paths
}
