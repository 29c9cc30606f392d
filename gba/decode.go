package gba

import (
	"encoding/binary"
	"math/bits"

	"github.com/rs/zerolog"
)

// Decoder turns a located snapshot into Telemetry. Every field is decoded
// independently and best-effort: a bad save block pointer kills the fields
// behind it and nothing else.
type Decoder struct {
	log zerolog.Logger
}

func NewDecoder(logger zerolog.Logger) *Decoder {
	return &Decoder{log: logger.With().Str("component", "decoder").Logger()}
}

// Decode reads every telemetry field through r. It never fails as a whole;
// fields that can't be read or don't pass sanity checks come back nil.
func (d *Decoder) Decode(r *Reader) Telemetry {
	var t Telemetry

	sb1, sb1ok := r.U32(addrTable[fieldSaveBlock1Ptr].Addr)
	sb2, sb2ok := r.U32(addrTable[fieldSaveBlock2Ptr].Addr)
	sb1ok = sb1ok && inEWRAM(sb1)
	sb2ok = sb2ok && inEWRAM(sb2)

	t.PlayerName = d.decodePlayerName(r, sb2, sb2ok)

	if sb1ok {
		t.Location = d.decodeLocation(r, sb1)
		t.Coords = d.decodeCoords(r, sb1)
		t.BadgeCount = d.decodeBadges(r, sb1)
	}
	if sb1ok && sb2ok {
		t.Money = d.decodeMoney(r, sb1, sb2)
	}
	if sb2ok {
		t.Playtime = d.decodePlaytime(r, sb2)
	}

	if flags, ok := r.U32(addrTable[fieldBattleFlags].Addr); ok {
		inBattle := flags != 0
		t.InBattle = &inBattle
	}

	t.Party = d.decodeParty(r)
	t.Enemy = d.decodeEnemy(r)
	return t
}

// decodePlayerName tries the fixed legacy address first, then the save
// block pointer. A name is accepted only if its first byte is something a
// player could actually have typed.
func (d *Decoder) decodePlayerName(r *Reader, sb2 uint32, sb2ok bool) *string {
	if raw, ok := r.Bytes(addrTable[fieldPlayerNameFixed].Addr, playerNameLen); ok && plausibleNameStart(raw[0]) {
		name := DecodeText(raw)
		return &name
	}
	if !sb2ok {
		return nil
	}
	raw, ok := r.Bytes(sb2+sb2PlayerName, playerNameLen)
	if !ok || !plausibleNameStart(raw[0]) {
		return nil
	}
	name := DecodeText(raw)
	return &name
}

func (d *Decoder) decodeLocation(r *Reader, sb1 uint32) *string {
	group, ok1 := r.U8(sb1 + sb1MapGroup)
	num, ok2 := r.U8(sb1 + sb1MapNum)
	if !ok1 || !ok2 {
		return nil
	}
	name := locationName(group, num)
	return &name
}

func (d *Decoder) decodeCoords(r *Reader, sb1 uint32) *Coords {
	x, ok1 := r.U16(sb1 + sb1CoordX)
	y, ok2 := r.U16(sb1 + sb1CoordY)
	if !ok1 || !ok2 {
		return nil
	}
	return &Coords{X: x, Y: y}
}

func (d *Decoder) decodeBadges(r *Reader, sb1 uint32) *uint8 {
	b, ok := r.U8(sb1 + sb1Flags + badgeByteOffset)
	if !ok {
		return nil
	}
	count := uint8(bits.OnesCount8(b))
	return &count
}

// decodeMoney reads the encrypted purse from save block 1 and its XOR key
// from save block 2; the two are deliberately not colocated. A zero key
// means the value was written before encryption was armed and is used
// as-is. Either way the result is rejected if it exceeds the game's purse
// cap, since a mislocated read tends to produce garbage well above it.
func (d *Decoder) decodeMoney(r *Reader, sb1, sb2 uint32) *uint32 {
	enc, ok := r.U32(sb1 + sb1Money)
	if !ok {
		return nil
	}
	key, ok := r.U32(sb2 + sb2EncryptKey)
	if !ok {
		return nil
	}
	money := enc ^ key
	if money > maxMoney {
		d.log.Debug().Uint32("value", money).Msg("money above purse cap, dropping field")
		return nil
	}
	return &money
}

func (d *Decoder) decodePlaytime(r *Reader, sb2 uint32) *Playtime {
	h, ok1 := r.U16(sb2 + sb2PlayHours)
	m, ok2 := r.U8(sb2 + sb2PlayMins)
	s, ok3 := r.U8(sb2 + sb2PlaySecs)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return &Playtime{Hours: h, Minutes: m, Seconds: s}
}

// decodeParty walks the six fixed party slots in order. A zero personality
// value marks the first empty slot and ends the roster; the in-game count
// field is not trusted.
func (d *Decoder) decodeParty(r *Reader) []PartyMember {
	base := addrTable[fieldPlayerParty].Addr
	party := make([]PartyMember, 0, partySlots)
	for i := 0; i < partySlots; i++ {
		rec, ok := r.Bytes(base+uint32(i*partyRecordSize), partyRecordSize)
		if !ok {
			break
		}
		m, ok := decodeRecord(rec)
		if !ok {
			break
		}
		party = append(party, m)
	}
	return party
}

// decodeEnemy reads the opposing side's active battler, the first slot of
// the enemy roster. The slot layout is the same 100-byte record the player
// party uses.
func (d *Decoder) decodeEnemy(r *Reader) *PartyMember {
	rec, ok := r.Bytes(addrTable[fieldEnemyParty].Addr, partyRecordSize)
	if !ok {
		return nil
	}
	m, ok := decodeRecord(rec)
	if !ok {
		return nil
	}
	return &m
}

func decodeRecord(rec []byte) (PartyMember, bool) {
	pid := binary.LittleEndian.Uint32(rec)
	if pid == 0 {
		return PartyMember{}, false
	}
	return PartyMember{
		Nickname:  DecodeText(rec[recNickname : recNickname+recNickLen]),
		Level:     rec[recLevel],
		CurrentHP: binary.LittleEndian.Uint16(rec[recCurrentHP:]),
		MaxHP:     binary.LittleEndian.Uint16(rec[recMaxHP:]),
		Attack:    binary.LittleEndian.Uint16(rec[recAttack:]),
		Defense:   binary.LittleEndian.Uint16(rec[recDefense:]),
		Speed:     binary.LittleEndian.Uint16(rec[recSpeed:]),
		PID:       pid,
	}, true
}
