// Package config provides JSON-backed configuration for the nesium
// front end: window/audio/input/emulation/debug/paths sections
// loaded from a file with sane defaults when one isn't present yet.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all front-end configuration. The emulation core itself
// (internal/console) takes no dependency on this package; it is wired
// by cmd/nesium only.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	path string
}

// WindowConfig controls the Ebitengine window.
type WindowConfig struct {
	Scale      int  `json:"scale"` // NES resolution multiplier
	Fullscreen bool `json:"fullscreen"`
	VSync      bool `json:"vsync"`
}

// AudioConfig controls host audio playback.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float32 `json:"volume"`
}

// KeyMapping names the Ebitengine key bound to each NES controller button.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// InputConfig controls keyboard bindings for both controller ports.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// EmulationConfig controls core behavior exposed to the front end.
type EmulationConfig struct {
	Region         string `json:"region"` // "NTSC" is the only one currently supported
	SaveStateSlots int    `json:"save_state_slots"`
	PauseOnFocusLoss bool `json:"pause_on_focus_loss"`
}

// DebugConfig controls diagnostics surfaced while running.
type DebugConfig struct {
	ShowFPS       bool   `json:"show_fps"`
	EnableLogging bool   `json:"enable_logging"`
	CPUTracing    bool   `json:"cpu_tracing"`
}

// PathsConfig names on-disk locations the front end reads and writes.
type PathsConfig struct {
	SaveData   string `json:"save_data"`
	SaveStates string `json:"save_states"`
}

// Default returns a Config populated with the values nesium ships with.
func Default() *Config {
	return &Config{
		Window: WindowConfig{Scale: 2, Fullscreen: false, VSync: true},
		Audio:  AudioConfig{Enabled: true, SampleRate: 44100, Volume: 0.8},
		Input: InputConfig{
			Player1Keys: KeyMapping{Up: "W", Down: "S", Left: "A", Right: "D", A: "J", B: "K", Start: "Return", Select: "Space"},
			Player2Keys: KeyMapping{Up: "Up", Down: "Down", Left: "Left", Right: "Right", A: "N", B: "M", Start: "RShift", Select: "RCtrl"},
		},
		Emulation: EmulationConfig{Region: "NTSC", SaveStateSlots: 10, PauseOnFocusLoss: true},
		Debug:     DebugConfig{},
		Paths:     PathsConfig{SaveData: "./saves", SaveStates: "./states"},
	}
}

// Load reads Config from path, writing out the default config there first
// if the file doesn't exist yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := Default()
		c.path = path
		if err := c.Save(); err != nil {
			return nil, err
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	c.path = path
	c.applyDefaultsForZeroValues()
	return c, nil
}

// applyDefaultsForZeroValues fixes up fields a hand-edited or partial
// config file left at their JSON zero value.
func (c *Config) applyDefaultsForZeroValues() {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 2
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = 0.8
	}
	if c.Emulation.Region == "" {
		c.Emulation.Region = "NTSC"
	}
	if c.Emulation.SaveStateSlots <= 0 {
		c.Emulation.SaveStateSlots = 10
	}
	if c.Paths.SaveData == "" {
		c.Paths.SaveData = "./saves"
	}
	if c.Paths.SaveStates == "" {
		c.Paths.SaveStates = "./states"
	}
}

// Save writes c back to the path it was loaded from (or last saved to).
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no path to save to")
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nesium.json"
	}
	return filepath.Join(dir, "nesium", "config.json")
}

// EnsureDirs creates the save-data and save-state directories if missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.SaveData, c.Paths.SaveStates} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
