package gba

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/rs/zerolog"
)

// ErrLayoutNotFound is returned when none of the locator strategies could
// find the work-RAM banks inside a snapshot. It is the only engine-level
// error: callers should treat it as "no telemetry available" and retry on
// the next capture.
var ErrLayoutNotFound = errors.New("work-RAM layout not found in snapshot")

// Layout records where the two work-RAM banks start inside a snapshot
// buffer. Offsets are byte positions in the buffer, not virtual addresses.
// A Layout is only valid for the exact buffer it was computed from.
type Layout struct {
	EWRAMBase    int
	IWRAMBase    int
	HeaderOffset int
}

// Snapshot serializer constants. Different emulator builds prepend headers
// of different sizes, but once the header start is known the banks sit at
// fixed offsets from it: IWRAM first, then EWRAM immediately after.
const (
	stateMagic uint32 = 0x01000002

	iwramOffset = 0x2040
	ewramOffset = iwramOffset + int(iwramSize)

	// IWRAM-relative position of the save block pointer pair
	// (0x03005008 - 0x03000000).
	savePtrOffset = 0x5008

	// The two save blocks are allocated close together; pointers further
	// apart than this are noise that happens to land in the EWRAM range.
	ptrPairMaxGap = 0x10000
)

// Header offsets seen in emulator builds that predate the magic tag.
var knownHeaderOffsets = []int{0x00, 0x60, 0xC0, 0x1F0}

// ROM title as serialized in the snapshot header, at a fixed distance from
// the header start. Last-resort locate signal.
var (
	romTitleSig    = []byte("POKEMON FIRE")
	romTitleOffset = 0x8
)

var stateMagicBytes = func() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, stateMagic)
	return b
}()

// Strategy names, in the order they are tried. Exported so callers (and
// tests) can ask the locator which paths ran.
const (
	StrategyMagic       = "magic"
	StrategyKnownOffset = "known-offset"
	StrategyFullScan    = "full-scan"
	StrategySignature   = "signature"
)

type locatorStrategy struct {
	name   string
	locate func(buf []byte) (Layout, bool)
}

// Locator scans a snapshot buffer for the work-RAM banks. Strategies are
// tried cheapest first and the chain stops at the first hit; every
// candidate must pass an independent semantic check before it is trusted,
// because a silently wrong layout is worse than no layout.
type Locator struct {
	log        zerolog.Logger
	strategies []locatorStrategy
	runs       map[string]int
}

// NewLocator builds a locator with the full fallback chain.
func NewLocator(logger zerolog.Logger) *Locator {
	l := &Locator{
		log:  logger.With().Str("component", "locator").Logger(),
		runs: make(map[string]int),
	}
	l.strategies = []locatorStrategy{
		{StrategyMagic, l.locateByMagic},
		{StrategyKnownOffset, l.locateByKnownOffset},
		{StrategyFullScan, l.locateByFullScan},
		{StrategySignature, l.locateBySignature},
	}
	return l
}

// Locate runs the fallback chain over buf. The returned Layout is bounds-
// checked and pointer-validated; if no strategy succeeds, ErrLayoutNotFound.
func (l *Locator) Locate(buf []byte) (Layout, error) {
	for _, s := range l.strategies {
		l.runs[s.name]++
		layout, ok := s.locate(buf)
		if !ok {
			continue
		}
		l.log.Debug().
			Str("strategy", s.name).
			Int("iwram", layout.IWRAMBase).
			Int("ewram", layout.EWRAMBase).
			Msg("located work-RAM banks")
		return layout, nil
	}
	return Layout{}, ErrLayoutNotFound
}

// Runs reports how many times the named strategy has executed. Zero for
// strategies the chain never reached.
func (l *Locator) Runs(name string) int {
	return l.runs[name]
}

func (l *Locator) locateByMagic(buf []byte) (Layout, bool) {
	for h := 0; ; {
		i := bytes.Index(buf[h:], stateMagicBytes)
		if i < 0 {
			return Layout{}, false
		}
		h += i
		if layout, ok := layoutFromHeader(buf, h); ok {
			return layout, true
		}
		h += 4
		if h >= len(buf) {
			return Layout{}, false
		}
	}
}

func (l *Locator) locateByKnownOffset(buf []byte) (Layout, bool) {
	for _, h := range knownHeaderOffsets {
		if layout, ok := layoutFromHeader(buf, h); ok {
			return layout, true
		}
	}
	return Layout{}, false
}

// locateByFullScan walks the whole buffer in 4-byte strides looking for two
// adjacent little-endian words that both point into EWRAM and sit close
// together: the save block pointer pair. From a hit the IWRAM base falls
// out by subtracting the pair's fixed IWRAM offset, and EWRAM follows
// IWRAM in every serializer layout we know. The candidate is confirmed by
// reading the first player name byte through it, which exploits the fact
// that player-entered names are non-empty and start with a plausible
// character.
func (l *Locator) locateByFullScan(buf []byte) (Layout, bool) {
	for i := 0; i+8 <= len(buf); i += 4 {
		p1 := binary.LittleEndian.Uint32(buf[i:])
		p2 := binary.LittleEndian.Uint32(buf[i+4:])
		if !validPointerPair(p1, p2) {
			continue
		}

		iwramBase := i - savePtrOffset
		ewramBase := iwramBase + int(iwramSize)
		layout := Layout{EWRAMBase: ewramBase, IWRAMBase: iwramBase, HeaderOffset: iwramBase - iwramOffset}
		if !layoutInBounds(layout, len(buf)) {
			continue
		}

		nameOff := ewramBase + int(p2-ewramStart) + sb2PlayerName
		if nameOff < 0 || nameOff >= len(buf) {
			continue
		}
		if !plausibleNameStart(buf[nameOff]) {
			continue
		}
		return layout, true
	}
	return Layout{}, false
}

func (l *Locator) locateBySignature(buf []byte) (Layout, bool) {
	for t := 0; ; {
		i := bytes.Index(buf[t:], romTitleSig)
		if i < 0 {
			return Layout{}, false
		}
		t += i
		if h := t - romTitleOffset; h >= 0 {
			if layout, ok := layoutFromHeader(buf, h); ok {
				return layout, true
			}
		}
		t += len(romTitleSig)
		if t >= len(buf) {
			return Layout{}, false
		}
	}
}

// layoutFromHeader derives bank bases from a candidate header start and
// validates them with the save pointer pair check.
func layoutFromHeader(buf []byte, h int) (Layout, bool) {
	layout := Layout{
		EWRAMBase:    h + ewramOffset,
		IWRAMBase:    h + iwramOffset,
		HeaderOffset: h,
	}
	if !layoutInBounds(layout, len(buf)) {
		return Layout{}, false
	}
	p := layout.IWRAMBase + savePtrOffset
	p1 := binary.LittleEndian.Uint32(buf[p:])
	p2 := binary.LittleEndian.Uint32(buf[p+4:])
	if !validPointerPair(p1, p2) {
		return Layout{}, false
	}
	return layout, true
}

func layoutInBounds(layout Layout, n int) bool {
	if layout.IWRAMBase < 0 || layout.EWRAMBase < 0 {
		return false
	}
	if layout.IWRAMBase+int(iwramSize) > n {
		return false
	}
	if layout.EWRAMBase+int(ewramSize) > n {
		return false
	}
	return true
}

func validPointerPair(p1, p2 uint32) bool {
	if !inEWRAM(p1) || !inEWRAM(p2) {
		return false
	}
	gap := int64(p1) - int64(p2)
	if gap < 0 {
		gap = -gap
	}
	return gap > 0 && gap < ptrPairMaxGap
}

func inEWRAM(addr uint32) bool {
	return addr >= ewramStart && addr < ewramStart+ewramSize
}

// plausibleNameStart reports whether b can begin a player-entered name:
// a letter or a digit in the game's character encoding.
func plausibleNameStart(b byte) bool {
	return (b >= digitBase && b < digitBase+10) ||
		(b >= upperBase && b < upperBase+26) ||
		(b >= lowerBase && b < lowerBase+26)
}
