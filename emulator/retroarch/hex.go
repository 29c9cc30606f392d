package retroarch

import (
	"fmt"

	"StateScope/emulator"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}

func fromHexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// skipField advances past one whitespace-delimited field and any
// whitespace around it.
func skipField(buf []byte, i int) int {
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	for i < len(buf) && !isSpace(buf[i]) {
		i++
	}
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	return i
}

// decodeReadCoreMemory parses a "READ_CORE_MEMORY <addr> <b0> <b1> ..."
// response, filling dst with exactly len(dst) decoded bytes. RetroArch
// answers "-1" in the byte position when no game is loaded.
func decodeReadCoreMemory(resp []byte, dst []byte) error {
	i := skipField(resp, 0) // command echo
	i = skipField(resp, i)  // address

	if i < len(resp) && resp[i] == '-' {
		return emulator.ErrGameNotLoaded
	}

	for j := range dst {
		for i < len(resp) && isSpace(resp[i]) {
			i++
		}
		if i+2 > len(resp) {
			return fmt.Errorf("truncated response: %d of %d bytes", j, len(dst))
		}
		hi, ok := fromHexNibble(resp[i])
		if !ok {
			return fmt.Errorf("invalid hex char %q", resp[i])
		}
		lo, ok := fromHexNibble(resp[i+1])
		if !ok {
			return fmt.Errorf("invalid hex char %q", resp[i+1])
		}
		dst[j] = hi<<4 | lo
		i += 2
	}
	return nil
}

// appendHexUpper writes v as uppercase hex with no prefix, avoiding the
// allocations of strconv.FormatUint in the capture hot path.
func appendHexUpper(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var tmp [16]byte
	i := len(tmp)
	for v != 0 {
		n := v & 0xF
		i--
		if n < 10 {
			tmp[i] = byte('0' + n)
		} else {
			tmp[i] = byte('A' + (n - 10))
		}
		v >>= 4
	}
	return append(dst, tmp[i:]...)
}
