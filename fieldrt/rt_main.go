package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/gekko3d/repel"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (defaults are embedded)")
	debug := flag.Bool("debug", false, "Enable debug logging and print frame stats on exit")
	flag.Parse()

	cfg, err := repel.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		cfg.Debug = true
	}

	app := repel.NewAppBuilder().
		UseModule(
			repel.LoggingModule{Prefix: "repel", Debug: cfg.Debug},
			repel.TimeModule{},
			repel.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			repel.InputModule{},
			repel.AssetServerModule{},
			repel.RepelModule{Config: cfg},
		).
		Build()

	app.Run()
}
