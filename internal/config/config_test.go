package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	data := []byte(`
log_level = "debug"

[server]
addr = "127.0.0.1:9000"

[cache]
kind = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "1h30m"

[store]
kind = "mongo"
mongo_uri = "mongodb://localhost:27017"

[layout]
direction = "LR"
nodesep = 30

[editor]
strict = true
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Default()
	want.LogLevel = "debug"
	want.Server.Addr = "127.0.0.1:9000"
	want.Cache.Kind = CacheRedis
	want.Cache.RedisURL = "redis://localhost:6379/0"
	want.Cache.TTL = Duration{90 * time.Minute}
	want.Store.Kind = StoreMongo
	want.Store.MongoURI = "mongodb://localhost:27017"
	want.Layout.Direction = "LR"
	want.Layout.NodeSep = 30
	want.Editor.Strict = true

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", `log_level = `, "parse config"},
		{"unknown key", `colour = "red"`, "unknown keys: colour"},
		{"bad duration", "[cache]\nttl = \"forever\"", "invalid duration"},
		{"cache kind", "[cache]\nkind = \"memcached\"", `unknown kind "memcached"`},
		{"redis cache without url", "[cache]\nkind = \"redis\"", "redis_url is required"},
		{"store kind", "[store]\nkind = \"postgres\"", `unknown kind "postgres"`},
		{"mongo without uri", "[store]\nkind = \"mongo\"", "mongo_uri is required"},
		{"redis store without url", "[store]\nkind = \"redis\"", "redis_url is required"},
		{"direction", "[layout]\ndirection = \"RL\"", "invalid direction"},
		{"negative sep", "[layout]\nranksep = -1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Addr = ":9999"
	cfg.Cache.TTL = Duration{time.Hour}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sc.toml")
	if err := os.WriteFile(path, []byte("log_level = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, path)

	cfg, found, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found != path {
		t.Errorf("path = %q, want %q", found, path)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
