package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"StateScope/emulator"
	"StateScope/gba"
	"StateScope/processing"
	"StateScope/repo"
	"StateScope/sink"
)

// App owns the capture loop: connect to the snapshot provider, poll it on
// a ticker, extract telemetry, derive events, publish.
type App struct {
	log       zerolog.Logger
	cfg       *repo.Config
	provider  emulator.SnapshotProvider
	engine    *gba.Engine
	processor *processing.Engine
	publisher *sink.HTTPSink
}

func NewApp(logger zerolog.Logger,
	cfg *repo.Config,
	provider emulator.SnapshotProvider,
	engine *gba.Engine,
	processor *processing.Engine,
	publisher *sink.HTTPSink) *App {

	return &App{
		log:       logger.With().Str("component", "app").Logger(),
		cfg:       cfg,
		provider:  provider,
		engine:    engine,
		processor: processor,
		publisher: publisher,
	}
}

// Run blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("provider connected")

	ticker := time.NewTicker(time.Duration(a.cfg.PollIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if a.provider.Status() != emulator.Connected {
			a.log.Info().Msg("provider lost, reconnecting")
			a.engine.InvalidateLayout()
			if err := a.connect(ctx); err != nil {
				return err
			}
			a.log.Info().Msg("provider reconnected")
		}

		a.tick(ctx)
	}
}

func (a *App) tick(ctx context.Context) {
	snap, err := a.provider.CaptureSnapshot(ctx)
	if err != nil {
		if errors.Is(err, emulator.ErrGameNotLoaded) {
			a.log.Debug().Msg("waiting for game")
			return
		}
		if ctx.Err() != nil {
			return
		}
		a.log.Warn().Err(err).Msg("capture failed")
		return
	}

	t, err := a.engine.Extract(snap.Seq, snap.Data)
	if err != nil {
		// Unrecognized buffer; nothing to publish this tick.
		a.log.Debug().Err(err).Msg("no telemetry in snapshot")
		return
	}

	events := a.processor.ProcessTelemetry(t)
	if err := a.publisher.Publish(ctx, t, events); err != nil && ctx.Err() == nil {
		a.log.Warn().Err(err).Msg("publish failed")
	}
}

func (a *App) connect(ctx context.Context) error {
	for {
		if status := a.provider.Connect(); status == emulator.Connected {
			return nil
		}
		a.log.Info().Msg("provider not reachable, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
