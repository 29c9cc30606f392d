package gba

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineExtract(t *testing.T) {
	f := newFixture(t, 0x40).putSaveData()
	e := NewEngine(zerolog.Nop(), time.Minute)

	tel, err := e.Extract(1, f.buf)
	require.NoError(t, err)
	require.NotNil(t, tel.PlayerName)
	assert.Equal(t, "RED", *tel.PlayerName)
}

func TestEngineReusesLayoutForSameCapture(t *testing.T) {
	f := newFixture(t, 0x40).putSaveData()
	e := NewEngine(zerolog.Nop(), time.Minute)

	_, err := e.Extract(1, f.buf)
	require.NoError(t, err)
	_, err = e.Extract(1, f.buf)
	require.NoError(t, err)

	assert.Equal(t, 1, e.Locator().Runs(StrategyMagic), "second extract must hit the layout cache")
}

func TestEngineLayoutNotFound(t *testing.T) {
	e := NewEngine(zerolog.Nop(), time.Minute)

	tel, err := e.Extract(1, make([]byte, 0x50000))
	assert.ErrorIs(t, err, ErrLayoutNotFound)
	assert.Equal(t, Telemetry{}, tel, "a missing layout yields empty telemetry, not partial garbage")
}

func TestEngineInvalidateForcesRescan(t *testing.T) {
	f := newFixture(t, 0x40).putSaveData()
	e := NewEngine(zerolog.Nop(), time.Minute)

	_, err := e.Extract(1, f.buf)
	require.NoError(t, err)
	e.InvalidateLayout()
	_, err = e.Extract(1, f.buf)
	require.NoError(t, err)

	assert.Equal(t, 2, e.Locator().Runs(StrategyMagic))
}
