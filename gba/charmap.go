package gba

import "strings"

// The game stores text in a proprietary single-byte encoding. The subset
// mapped here covers everything a player can type into a name: digits,
// some punctuation, both letter cases and the space. Bytes outside the
// table decode to nothing rather than erroring; real save data is full of
// control codes we don't care about.
const (
	codeSpace      byte = 0x00
	codeTerminator byte = 0xFF
	// Empty name slots are filled with this byte rather than the
	// terminator; both end a string.
	codeBlank byte = 0x50

	digitBase byte = 0xA1 // '0'..'9'
	upperBase byte = 0xBB // 'A'..'Z'
	lowerBase byte = 0xD5 // 'a'..'z'
)

var punctCodes = map[byte]rune{
	0xAB: '!',
	0xAC: '?',
	0xAD: '.',
	0xAE: '-',
	0xB8: ',',
}

var punctBytes = func() map[rune]byte {
	m := make(map[rune]byte, len(punctCodes))
	for b, r := range punctCodes {
		m[r] = b
	}
	return m
}()

// DecodeText converts game-encoded bytes to a string, stopping at the
// first terminator or blank-slot byte. Unmapped bytes are skipped.
func DecodeText(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == codeTerminator || c == codeBlank {
			break
		}
		switch {
		case c == codeSpace:
			sb.WriteByte(' ')
		case c >= digitBase && c < digitBase+10:
			sb.WriteByte('0' + (c - digitBase))
		case c >= upperBase && c < upperBase+26:
			sb.WriteByte('A' + (c - upperBase))
		case c >= lowerBase && c < lowerBase+26:
			sb.WriteByte('a' + (c - lowerBase))
		default:
			if r, ok := punctCodes[c]; ok {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// EncodeText converts s to game encoding, appending the terminator.
// Characters outside the supported alphabet are dropped. Exists for
// building fixtures and for the decode round-trip guarantee; the engine
// itself never writes text back.
func EncodeText(s string) []byte {
	out := make([]byte, 0, len(s)+1)
	for _, r := range s {
		switch {
		case r == ' ':
			out = append(out, codeSpace)
		case r >= '0' && r <= '9':
			out = append(out, digitBase+byte(r-'0'))
		case r >= 'A' && r <= 'Z':
			out = append(out, upperBase+byte(r-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, lowerBase+byte(r-'a'))
		default:
			if b, ok := punctBytes[r]; ok {
				out = append(out, b)
			}
		}
	}
	return append(out, codeTerminator)
}
