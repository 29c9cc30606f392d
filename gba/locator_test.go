package gba

import (
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorMagicDeterminism(t *testing.T) {
	const h = 0x40
	f := newFixture(t, h)

	loc := NewLocator(zerolog.Nop())
	layout, err := loc.Locate(f.buf)
	require.NoError(t, err)

	assert.Equal(t, h+iwramOffset, layout.IWRAMBase)
	assert.Equal(t, h+ewramOffset, layout.EWRAMBase)
	assert.Equal(t, h, layout.HeaderOffset)
	assert.Equal(t, 1, loc.Runs(StrategyMagic))
	assert.Equal(t, 0, loc.Runs(StrategyKnownOffset))
	assert.Equal(t, 0, loc.Runs(StrategyFullScan))
}

func TestLocatorKnownOffsetSkipsFullScan(t *testing.T) {
	// Header at a known offset but without the magic tag, as older
	// emulator builds serialize it.
	const h = 0x60
	f := newFixture(t, h).clearMagic()

	loc := NewLocator(zerolog.Nop())
	layout, err := loc.Locate(f.buf)
	require.NoError(t, err)

	assert.Equal(t, h+iwramOffset, layout.IWRAMBase)
	assert.Equal(t, h+ewramOffset, layout.EWRAMBase)
	assert.Equal(t, 1, loc.Runs(StrategyKnownOffset))
	assert.Equal(t, 0, loc.Runs(StrategyFullScan), "expensive scan must not run when a known offset matches")
}

func TestLocatorFullScanOnRawDump(t *testing.T) {
	// A raw bank dump: IWRAM then EWRAM, no header at all. Only the
	// pointer-pair scan can find this one.
	buf := make([]byte, int(iwramSize)+int(ewramSize))
	binary.LittleEndian.PutUint32(buf[savePtrOffset:], fixSB1)
	binary.LittleEndian.PutUint32(buf[savePtrOffset+4:], fixSB2)
	nameOff := int(iwramSize) + int(fixSB2-ewramStart) + sb2PlayerName
	copy(buf[nameOff:], EncodeText("RED"))

	loc := NewLocator(zerolog.Nop())
	layout, err := loc.Locate(buf)
	require.NoError(t, err)

	assert.Equal(t, 0, layout.IWRAMBase)
	assert.Equal(t, int(iwramSize), layout.EWRAMBase)
	assert.Equal(t, 1, loc.Runs(StrategyFullScan))
	assert.Equal(t, 0, loc.Runs(StrategySignature))
}

func TestLocatorFullScanRejectsImplausibleName(t *testing.T) {
	buf := make([]byte, int(iwramSize)+int(ewramSize))
	binary.LittleEndian.PutUint32(buf[savePtrOffset:], fixSB1)
	binary.LittleEndian.PutUint32(buf[savePtrOffset+4:], fixSB2)
	// Name slot left blank: the candidate must be refused.

	loc := NewLocator(zerolog.Nop())
	_, err := loc.Locate(buf)
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestLocatorSignatureFallback(t *testing.T) {
	// Header at an unknown offset, no magic, and a blanked name so the
	// full scan can't confirm its candidate. Only the ROM title remains.
	const h = 0x300
	f := newFixture(t, h).clearMagic().putTitle()
	f.put(fixSB2+sb2PlayerName, []byte{codeBlank})

	loc := NewLocator(zerolog.Nop())
	layout, err := loc.Locate(f.buf)
	require.NoError(t, err)

	assert.Equal(t, h+iwramOffset, layout.IWRAMBase)
	assert.Equal(t, h+ewramOffset, layout.EWRAMBase)
	assert.Equal(t, 1, loc.Runs(StrategySignature))
}

func TestLocatorNotFound(t *testing.T) {
	loc := NewLocator(zerolog.Nop())
	_, err := loc.Locate(make([]byte, 0x50000))
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestLocatorRejectsShortBuffer(t *testing.T) {
	f := newFixture(t, 0x40)
	loc := NewLocator(zerolog.Nop())
	// Truncate below the EWRAM end: every candidate is out of bounds.
	_, err := loc.Locate(f.buf[:len(f.buf)/2])
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestValidPointerPair(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 uint32
		want   bool
	}{
		{"close pair in EWRAM", 0x02025A00, 0x02024A00, true},
		{"equal pointers", 0x02025A00, 0x02025A00, false},
		{"gap too wide", 0x02000000, 0x02030000, false},
		{"first outside EWRAM", 0x03005A00, 0x02024A00, false},
		{"second outside EWRAM", 0x02025A00, 0x08024A00, false},
		{"both zero", 0, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, validPointerPair(tc.p1, tc.p2))
		})
	}
}
