package gba

import "encoding/binary"

// Reader resolves virtual GBA addresses into slices of one snapshot buffer
// through a located Layout. All reads are bounds-checked twice: the address
// must fall inside a known bank's range, and the resulting buffer offset
// must fit the buffer. Either check failing yields ok=false, never a panic.
// There is no write path; the engine only observes snapshots.
type Reader struct {
	buf    []byte
	layout Layout
}

// NewReader wraps buf with the given layout. The Reader must not outlive
// the extraction call that produced buf.
func NewReader(buf []byte, layout Layout) *Reader {
	return &Reader{buf: buf, layout: layout}
}

func (r *Reader) offset(addr uint32, length int) (int, bool) {
	if length < 0 {
		return 0, false
	}
	var base int
	var start, size uint32
	switch {
	case inEWRAM(addr):
		base, start, size = r.layout.EWRAMBase, ewramStart, ewramSize
	case addr >= iwramStart && addr < iwramStart+iwramSize:
		base, start, size = r.layout.IWRAMBase, iwramStart, iwramSize
	default:
		return 0, false
	}
	rel := addr - start
	if uint32(length) > size-rel {
		return 0, false
	}
	off := base + int(rel)
	if off < 0 || off+length > len(r.buf) {
		return 0, false
	}
	return off, true
}

// Bytes returns n bytes starting at virtual address addr. The slice aliases
// the snapshot buffer; callers must not hold it past the extraction.
func (r *Reader) Bytes(addr uint32, n int) ([]byte, bool) {
	off, ok := r.offset(addr, n)
	if !ok {
		return nil, false
	}
	return r.buf[off : off+n], true
}

func (r *Reader) U8(addr uint32) (byte, bool) {
	off, ok := r.offset(addr, 1)
	if !ok {
		return 0, false
	}
	return r.buf[off], true
}

func (r *Reader) U16(addr uint32) (uint16, bool) {
	off, ok := r.offset(addr, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.buf[off:]), true
}

func (r *Reader) U32(addr uint32) (uint32, bool) {
	off, ok := r.offset(addr, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.buf[off:]), true
}
