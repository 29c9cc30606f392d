package gba

import (
	"encoding/binary"
	"testing"
)

// Virtual save block addresses used by every fixture. Close together, as
// the real allocator places them.
const (
	fixSB1 uint32 = 0x02025A00
	fixSB2 uint32 = 0x02024A00
)

// fixture builds a synthetic snapshot buffer shaped like a serialized save
// state: header at offset h, IWRAM at h+iwramOffset, EWRAM at h+ewramOffset.
type fixture struct {
	t   *testing.T
	buf []byte
	h   int
}

func newFixture(t *testing.T, h int) *fixture {
	t.Helper()
	f := &fixture{
		t:   t,
		buf: make([]byte, h+ewramOffset+int(ewramSize)),
		h:   h,
	}
	binary.LittleEndian.PutUint32(f.buf[h:], stateMagic)
	f.putU32(0x03000000+savePtrOffset, fixSB1)
	f.putU32(0x03000000+savePtrOffset+4, fixSB2)
	f.put(fixSB2+sb2PlayerName, EncodeText("RED"))
	return f
}

func (f *fixture) clearMagic() *fixture {
	copy(f.buf[f.h:f.h+4], []byte{0, 0, 0, 0})
	return f
}

func (f *fixture) putTitle() *fixture {
	copy(f.buf[f.h+romTitleOffset:], romTitleSig)
	return f
}

// off maps a virtual address to its buffer offset through the fixture's
// own layout.
func (f *fixture) off(addr uint32) int {
	switch {
	case inEWRAM(addr):
		return f.h + ewramOffset + int(addr-ewramStart)
	case addr >= iwramStart && addr < iwramStart+iwramSize:
		return f.h + iwramOffset + int(addr-iwramStart)
	}
	f.t.Fatalf("address %#x outside work RAM", addr)
	return 0
}

func (f *fixture) put(addr uint32, b []byte) *fixture {
	copy(f.buf[f.off(addr):], b)
	return f
}

func (f *fixture) putU8(addr uint32, v byte) *fixture {
	f.buf[f.off(addr)] = v
	return f
}

func (f *fixture) putU16(addr uint32, v uint16) *fixture {
	binary.LittleEndian.PutUint16(f.buf[f.off(addr):], v)
	return f
}

func (f *fixture) putU32(addr uint32, v uint32) *fixture {
	binary.LittleEndian.PutUint32(f.buf[f.off(addr):], v)
	return f
}

// putPartyMember fills slot i of the party with a minimal valid record.
func (f *fixture) putPartyMember(i int, pid uint32, nick string, level byte, curHP, maxHP, atk, def, spd uint16) *fixture {
	base := addrTable[fieldPlayerParty].Addr + uint32(i*partyRecordSize)
	f.putU32(base, pid)
	f.put(base+recNickname, EncodeText(nick))
	f.putU8(base+recLevel, level)
	f.putU16(base+recCurrentHP, curHP)
	f.putU16(base+recMaxHP, maxHP)
	f.putU16(base+recAttack, atk)
	f.putU16(base+recDefense, def)
	f.putU16(base+recSpeed, spd)
	return f
}

// putEnemy fills the first enemy roster slot.
func (f *fixture) putEnemy(pid uint32, nick string, level byte, curHP, maxHP uint16) *fixture {
	base := addrTable[fieldEnemyParty].Addr
	f.putU32(base, pid)
	f.put(base+recNickname, EncodeText(nick))
	f.putU8(base+recLevel, level)
	f.putU16(base+recCurrentHP, curHP)
	f.putU16(base+recMaxHP, maxHP)
	return f
}

// putSaveData fills in a coherent mid-game save: Pallet Town, two badges,
// a money value encrypted with a nonzero key, a running clock.
func (f *fixture) putSaveData() *fixture {
	f.putU16(fixSB1+sb1CoordX, 12)
	f.putU16(fixSB1+sb1CoordY, 7)
	f.putU8(fixSB1+sb1MapGroup, 3)
	f.putU8(fixSB1+sb1MapNum, 0)
	f.putU8(fixSB1+sb1Flags+badgeByteOffset, 0b00010001)

	const key = 0xA3F21B07
	f.putU32(fixSB2+sb2EncryptKey, key)
	f.putU32(fixSB1+sb1Money, 3790^uint32(key))

	f.putU16(fixSB2+sb2PlayHours, 14)
	f.putU8(fixSB2+sb2PlayMins, 32)
	f.putU8(fixSB2+sb2PlaySecs, 5)
	return f
}
