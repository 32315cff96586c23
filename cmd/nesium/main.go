// Package main implements the nesium NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mikai233/nesium-sub002/internal/config"
	"github.com/mikai233/nesium-sub002/internal/console"
	versionPkg "github.com/mikai233/nesium-sub002/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (iNES/NES 2.0)")
		configFile = flag.String("config", "", "Path to configuration file")
		trace      = flag.Bool("trace", false, "Enable bus event trace logging")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println(versionPkg.String())
		os.Exit(0)
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "usage: nesium -rom <file.nes>")
		os.Exit(1)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Printf("warning: %v", err)
	}

	romData, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("failed to read ROM: %v", err)
	}

	core := console.New(console.RegionNTSC)
	if err := core.LoadCartridge(romData); err != nil {
		log.Fatalf("failed to load cartridge: %v", err)
	}
	core.SetAudioSampleRate(cfg.Audio.SampleRate)
	if *trace {
		core.AttachTraceSink(newLogTraceSink())
	}

	game := newGame(core, cfg)

	ebiten.SetWindowTitle("nesium")
	ebiten.SetWindowSize(256*cfg.Window.Scale, 240*cfg.Window.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.Window.VSync)
	if cfg.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("emulator exited: %v", err)
	}
}
