// Package gba extracts structured game telemetry from opaque GBA emulator
// memory snapshots. The snapshot format is emulator-defined and carries no
// offset table, so the work-RAM banks are found by heuristic scanning (see
// Locator) before any field is decoded. Extraction is read-only, synchronous
// and best-effort per field.
package gba

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheTTL bounds how long a located layout is reused without
// rescanning the buffer.
const DefaultCacheTTL = 500 * time.Millisecond

// Engine ties the locator, decoder and layout cache together. One Engine
// serves one snapshot source.
type Engine struct {
	log     zerolog.Logger
	locator *Locator
	decoder *Decoder
	cache   *layoutCache
}

// NewEngine builds an extraction engine. A non-positive cacheTTL selects
// DefaultCacheTTL.
func NewEngine(logger zerolog.Logger, cacheTTL time.Duration) *Engine {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Engine{
		log:     logger.With().Str("component", "engine").Logger(),
		locator: NewLocator(logger),
		decoder: NewDecoder(logger),
		cache:   newLayoutCache(cacheTTL),
	}
}

// Extract decodes telemetry from one snapshot buffer. seq identifies the
// capture: the same seq within the cache TTL reuses the previously located
// layout instead of rescanning. The buffer is not retained after the call.
//
// The only possible error is ErrLayoutNotFound; all field-level problems
// surface as nil fields in the returned Telemetry.
func (e *Engine) Extract(seq uint64, buf []byte) (Telemetry, error) {
	layout, err := e.cache.getOrCompute(seq, func() (Layout, error) {
		return e.locator.Locate(buf)
	})
	if err != nil {
		return Telemetry{}, err
	}
	return e.decoder.Decode(NewReader(buf, layout)), nil
}

// InvalidateLayout drops the cached layout, forcing a rescan on the next
// Extract. Call after the emulator reloads or switches games.
func (e *Engine) InvalidateLayout() {
	e.cache.invalidate()
}

// Locator exposes the engine's locator for instrumentation.
func (e *Engine) Locator() *Locator {
	return e.locator
}
