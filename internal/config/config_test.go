package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Window.Scale != 2 {
		t.Fatalf("Window.Scale = %d, want 2 (default)", c.Window.Scale)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Load should have written the default config to disk: %v", err)
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"window":{"scale":4,"fullscreen":true,"vsync":false}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Window.Scale != 4 || !c.Window.Fullscreen || c.Window.VSync {
		t.Fatalf("Window = %+v, want scale=4 fullscreen=true vsync=false", c.Window)
	}
}

func TestLoadFillsInZeroValuedFieldsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"window":{"scale":0}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Window.Scale != 2 {
		t.Fatalf("Window.Scale = %d, want 2 (zero value should fall back to default)", c.Window.Scale)
	}
	if c.Emulation.Region != "NTSC" {
		t.Fatalf("Emulation.Region = %q, want NTSC default", c.Emulation.Region)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c := Default()
	c.path = path
	c.Audio.Volume = 0.3
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	c2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c2.Audio.Volume != 0.3 {
		t.Fatalf("Audio.Volume = %v, want 0.3 after round trip", c2.Audio.Volume)
	}
}

func TestEnsureDirsCreatesConfiguredPaths(t *testing.T) {
	root := t.TempDir()
	c := Default()
	c.Paths.SaveData = filepath.Join(root, "saves")
	c.Paths.SaveStates = filepath.Join(root, "states")
	if err := c.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.Paths.SaveData); err != nil {
		t.Fatalf("EnsureDirs did not create SaveData dir: %v", err)
	}
	if _, err := os.Stat(c.Paths.SaveStates); err != nil {
		t.Fatalf("EnsureDirs did not create SaveStates dir: %v", err)
	}
}
