package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesim.toml")
	body := `
[server]
world_seed = 99

[engine]
tick_rate = "100ms"
spawn_interval = 40

[database]
backend = "postgres"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.WorldSeed != 99 || cfg.Server.Name != "hearthmod" {
		t.Fatalf("server=%+v", cfg.Server)
	}
	if cfg.Engine.TickRate != 100*time.Millisecond || cfg.Engine.SpawnInterval != 40 {
		t.Fatalf("engine tick=%v spawn=%d", cfg.Engine.TickRate, cfg.Engine.SpawnInterval)
	}
	if cfg.Engine.DespawnInterval != 20 || cfg.Enhancement.MaxMultiplier != 3.0 {
		t.Fatalf("defaults lost: despawn=%d max=%v", cfg.Engine.DespawnInterval, cfg.Enhancement.MaxMultiplier)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not set")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"zero interval": "[engine]\ndespawn_interval = 0\n",
		"bad backend":   "[database]\nbackend = \"mysql\"\n",
		"bad toml":      "[engine\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			os.WriteFile(path, []byte(body), 0o644)
			if _, err := Load(path); err == nil {
				t.Fatalf("accepted %q", body)
			}
		})
	}
}

func TestDeepSearchMustLandOnSweeps(t *testing.T) {
	cfg := Defaults()
	cfg.Engine.DespawnInterval = 7
	if err := cfg.validate(); err == nil {
		t.Fatalf("despawn_interval 7 accepted with deep_search_interval %d", cfg.Engine.DeepSearchInterval)
	}

	cfg = Defaults()
	cfg.Engine.SpawnInterval = 30
	cfg.Engine.DeepSearchInterval = 1220
	if err := cfg.validate(); err == nil {
		t.Fatalf("deep_search_interval 1220 accepted with spawn_interval 30")
	}

	cfg.Engine.SpawnInterval = 20
	if err := cfg.validate(); err != nil {
		t.Fatalf("aligned intervals rejected: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
