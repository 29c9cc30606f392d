package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"StateScope/emulator"
	"StateScope/emulator/retroarch"
	"StateScope/emulator/statefile"
	"StateScope/emulator/statesock"
	"StateScope/gba"
	"StateScope/processing"
	"StateScope/repo"
	"StateScope/sink"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	folder, err := repo.SetupPaths()
	if err != nil {
		logger.Fatal().Err(err).Msg("setup paths")
	}

	cfg, err := repo.LoadFile(filepath.Join(folder, "config.yml"))
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	var provider emulator.SnapshotProvider
	switch cfg.Provider {
	case repo.ProviderRetroArch:
		provider = retroarch.NewClient(logger, cfg.Host, cfg.Port)
	case repo.ProviderStateSock:
		provider = statesock.NewClient(logger, statesock.NewWebsocketRW(cfg.SocketURL))
	case repo.ProviderStateFile:
		provider = statefile.NewProvider(logger, cfg.StateDir)
	}

	engine := gba.NewEngine(logger, time.Duration(cfg.CacheTTLMS)*time.Millisecond)

	processor := processing.NewEngine(logger)
	defer processor.Close()

	hooks := cfg.HooksFile
	if hooks == "" {
		hooks = filepath.Join(folder, "hooks.lua")
	}
	if _, err := os.Stat(hooks); err == nil {
		if err := processor.LoadHooks(hooks); err != nil {
			logger.Fatal().Err(err).Str("path", hooks).Msg("load hooks")
		}
		logger.Info().Str("path", hooks).Msg("hooks loaded")
	}

	publisher := sink.New(logger, cfg.SinkURL)

	app := NewApp(logger, cfg, provider, engine, processor, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("provider", cfg.Provider).Str("sink", cfg.SinkURL).Msg("starting")
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("run")
	}
}
