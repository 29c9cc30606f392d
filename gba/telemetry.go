package gba

// Telemetry is one decoded view of the running game. Every field is
// independently optional: a nil pointer means the field could not be read
// from this snapshot, not that the whole extraction failed.
type Telemetry struct {
	PlayerName *string
	Location   *string
	Coords     *Coords
	BadgeCount *uint8
	Money      *uint32
	Playtime   *Playtime
	InBattle   *bool
	Party      []PartyMember
	// Enemy is the opposing side's active battler. The backing memory
	// keeps the previous opponent after a battle ends, so it is only
	// meaningful while InBattle is true.
	Enemy *PartyMember
}

// Coords is the player's position on the current map.
type Coords struct {
	X uint16
	Y uint16
}

// Playtime is the in-game clock as stored in the save data.
type Playtime struct {
	Hours   uint16
	Minutes uint8
	Seconds uint8
}

// PartyMember is one decoded 100-byte party record.
type PartyMember struct {
	Nickname  string
	Level     uint8
	CurrentHP uint16
	MaxHP     uint16
	Attack    uint16
	Defense   uint16
	Speed     uint16
	PID       uint32
}
