package gba

// Region identifies one of the GBA's two work-RAM banks.
type Region byte

const (
	// RegionEWRAM is the 256 KiB external work RAM at 0x02000000.
	RegionEWRAM Region = iota
	// RegionIWRAM is the 32 KiB internal work RAM at 0x03000000.
	RegionIWRAM
)

const (
	ewramStart uint32 = 0x02000000
	ewramSize  uint32 = 0x40000
	iwramStart uint32 = 0x03000000
	iwramSize  uint32 = 0x8000
)

// AddrEntry maps a logical field name to a virtual address in one of the
// work-RAM banks. The table is fixed for the target build (FireRed v1.0);
// supporting another revision means swapping table values, nothing else.
type AddrEntry struct {
	Name string
	Addr uint32
	Reg  Region
	Size uint8
}

const (
	fieldSaveBlock1Ptr   = "saveBlock1Ptr"
	fieldSaveBlock2Ptr   = "saveBlock2Ptr"
	fieldPlayerParty     = "playerParty"
	fieldEnemyParty      = "enemyParty"
	fieldBattleFlags     = "battleFlags"
	fieldPlayerNameFixed = "playerNameFixed"
)

var addrTable = map[string]AddrEntry{
	// Save blocks move between resets; their pointers don't.
	fieldSaveBlock1Ptr: {Name: fieldSaveBlock1Ptr, Addr: 0x03005008, Reg: RegionIWRAM, Size: 4},
	fieldSaveBlock2Ptr: {Name: fieldSaveBlock2Ptr, Addr: 0x0300500C, Reg: RegionIWRAM, Size: 4},

	fieldPlayerParty: {Name: fieldPlayerParty, Addr: 0x02024284, Reg: RegionEWRAM, Size: 100},
	fieldEnemyParty:  {Name: fieldEnemyParty, Addr: 0x0202402C, Reg: RegionEWRAM, Size: 100},
	fieldBattleFlags: {Name: fieldBattleFlags, Addr: 0x02022B4C, Reg: RegionEWRAM, Size: 4},

	// Pre-pointer engine builds kept the trainer block at a fixed address.
	// Tried first when reading the player name, see decoder.
	fieldPlayerNameFixed: {Name: fieldPlayerNameFixed, Addr: 0x02024EA4, Reg: RegionEWRAM, Size: 8},
}

// Offsets inside the two save blocks, relative to the block pointers held
// in IWRAM.
const (
	sb1CoordX   = 0x0000 // u16
	sb1CoordY   = 0x0002 // u16
	sb1MapGroup = 0x0004 // u8
	sb1MapNum   = 0x0005 // u8
	sb1Money    = 0x0290 // u32, XOR-encrypted
	sb1Flags    = 0x0EE0 // event flag array

	sb2PlayerName = 0x0000 // 7 chars + terminator
	sb2PlayHours  = 0x000E // u16
	sb2PlayMins   = 0x0010 // u8
	sb2PlaySecs   = 0x0011 // u8
	sb2EncryptKey = 0x0F20 // u32, money XOR key

	// The gym badge flags sit together in a single byte of the flag array.
	badgeByteOffset = 0x104
)

const (
	playerNameLen = 8

	partySlots      = 6
	partyRecordSize = 100

	recNickname  = 8  // 10 bytes
	recNickLen   = 10
	recLevel     = 84 // u8
	recCurrentHP = 86 // u16
	recMaxHP     = 88 // u16
	recAttack    = 90 // u16
	recDefense   = 92 // u16
	recSpeed     = 94 // u16

	// Purse cap enforced by the game itself. Anything above this decoded
	// from memory is a misread, not a rich player.
	maxMoney = 999999
)
