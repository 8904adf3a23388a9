package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/nayana/internal/app"
	"github.com/ayusman/nayana/internal/config"
	"github.com/ayusman/nayana/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	cameraID := flag.Int("camera", -1, "camera device ID (overrides config)")
	headless := flag.Bool("headless", false, "run without the preview window")
	addr := flag.String("addr", "", "enable the HTTP status server on this address")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nayana: %v\n", err)
		os.Exit(2)
	}
	if *cameraID >= 0 {
		cfg.Camera.DeviceID = *cameraID
	}
	if *headless {
		cfg.Display.Headless = true
	}
	if *addr != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = *addr
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	os.Exit(run(cfg))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.Resolve()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func run(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, app.Deps{})
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")
		return 1
	}

	log.Info().
		Str("session", application.ID()).
		Int("camera", cfg.Camera.DeviceID).
		Str("pointer", cfg.Action.Backend).
		Bool("server", cfg.Server.Enabled).
		Msg("nayana starting")

	var (
		reason session.Reason
		runErr error
	)
	if t := application.Tray(); t != nil {
		// The tray event loop owns the main goroutine; the session ends it.
		done := make(chan struct{})
		go func() {
			defer close(done)
			<-t.Ready()
			reason, runErr = application.Run(ctx)
		}()
		t.Run()
		<-done
	} else {
		reason, runErr = application.Run(ctx)
	}

	if runErr != nil {
		log.Error().Err(runErr).Str("reason", reason.String()).Msg("session failed")
	}
	return reason.ExitCode()
}
