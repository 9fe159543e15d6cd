package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/foto/bridge"
	"go.aimuz.me/foto/config"
	"go.aimuz.me/foto/internal/app"
	"go.aimuz.me/foto/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	if cfg.LogFile != "" {
		logFile := logging.File(cfg.LogFile)
		defer logFile.Close()
		logging.Setup(logFile, cfg.LogLevel)
	} else {
		logging.Setup(os.Stderr, cfg.LogLevel)
	}
	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	d, err := bridge.Open(cfg)
	if err != nil {
		slog.Error("open bridge", "error", err)
		os.Exit(1)
	}
	appService := app.New(d, version)

	wails := application.New(application.Options{
		Name:        "Foto",
		Description: "Image viewer",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	wails.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Foto",
		Width:  1200,
		Height: 800,
		URL:    "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
	})

	// Must be hooked before Run so a launch-time open is not missed.
	appService.Init(wails)

	// Other desktops pass opened files on the command line.
	appService.RecordOpenFiles(existingFiles(os.Args[1:]))

	if err := wails.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}

func existingFiles(args []string) []string {
	var files []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			files = append(files, arg)
		}
	}
	return files
}
