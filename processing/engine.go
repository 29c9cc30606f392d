// Package processing derives game events by diffing successive telemetry
// snapshots, and dispatches them to operator-supplied Lua hooks.
package processing

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"StateScope/gba"
)

type EventType string

const (
	EventLocationChange EventType = "location_change"
	EventBattleStart    EventType = "battle_start"
	EventBattleEnd      EventType = "battle_end"
	EventEnemyAppeared  EventType = "enemy_appeared"
	EventEnemySwitched  EventType = "enemy_switched"
	EventEnemyHPChange  EventType = "enemy_hp_change"
	EventLevelUp        EventType = "level_up"
	EventBadgeEarned    EventType = "badge_earned"
	EventMoneyChange    EventType = "money_change"
)

// Event is one derived state transition, shaped for the JSON payload the
// downstream consumers expect.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Engine holds the previous telemetry and the loaded Lua hook functions.
// Hooks are cached once at load time; a hook the script doesn't define is
// simply never called.
type Engine struct {
	log zerolog.Logger
	m   sync.Mutex
	L   *lua.LState
	now func() time.Time

	prev    *gba.Telemetry
	hasPrev bool

	locationChanged *lua.LFunction
	battleStarted   *lua.LFunction
	battleEnded     *lua.LFunction
	enemyAppeared   *lua.LFunction
	enemySwitched   *lua.LFunction
	enemyHPChanged  *lua.LFunction
	levelUp         *lua.LFunction
	badgeEarned     *lua.LFunction
	moneyChanged    *lua.LFunction
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		log: logger.With().Str("component", "processing").Logger(),
		L:   lua.NewState(),
		now: time.Now,
	}
}

func (e *Engine) Close() {
	e.m.Lock()
	defer e.m.Unlock()
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// LoadHooks runs the script at path and caches the hook functions it
// defines: locationChanged(from, to), battleStarted(), battleEnded(),
// enemyAppeared(nickname, level, hp, maxHp), enemySwitched(nickname, level,
// hp, maxHp), enemyHpChanged(nickname, oldHp, newHp), levelUp(nickname,
// old, new), badgeEarned(count), moneyChanged(old, new).
func (e *Engine) LoadHooks(path string) error {
	e.m.Lock()
	defer e.m.Unlock()
	if err := e.L.DoFile(path); err != nil {
		return err
	}
	e.cacheCallbacks()
	return nil
}

func (e *Engine) cacheCallbacks() {
	e.locationChanged = asFunc(e.L.GetGlobal("locationChanged"))
	e.battleStarted = asFunc(e.L.GetGlobal("battleStarted"))
	e.battleEnded = asFunc(e.L.GetGlobal("battleEnded"))
	e.enemyAppeared = asFunc(e.L.GetGlobal("enemyAppeared"))
	e.enemySwitched = asFunc(e.L.GetGlobal("enemySwitched"))
	e.enemyHPChanged = asFunc(e.L.GetGlobal("enemyHpChanged"))
	e.levelUp = asFunc(e.L.GetGlobal("levelUp"))
	e.badgeEarned = asFunc(e.L.GetGlobal("badgeEarned"))
	e.moneyChanged = asFunc(e.L.GetGlobal("moneyChanged"))
}

func asFunc(v lua.LValue) *lua.LFunction {
	if f, ok := v.(*lua.LFunction); ok {
		return f
	}
	return nil
}

// ProcessTelemetry diffs t against the previous telemetry and returns the
// derived events, firing Lua hooks along the way. The first call only
// seeds the baseline. Fields absent on either side of a comparison are
// skipped; a transiently unreadable field must not fake a transition.
func (e *Engine) ProcessTelemetry(t gba.Telemetry) []Event {
	e.m.Lock()
	defer e.m.Unlock()

	if !e.hasPrev {
		e.prev = &t
		e.hasPrev = true
		return nil
	}
	prev := e.prev

	var events []Event
	add := func(typ EventType, data map[string]any) {
		events = append(events, Event{Type: typ, Timestamp: e.now(), Data: data})
	}

	if prev.Location != nil && t.Location != nil && *prev.Location != *t.Location {
		add(EventLocationChange, map[string]any{"from": *prev.Location, "to": *t.Location})
		e.call(e.locationChanged, lua.LString(*prev.Location), lua.LString(*t.Location))
	}

	if prev.InBattle != nil && t.InBattle != nil && *prev.InBattle != *t.InBattle {
		if *t.InBattle {
			add(EventBattleStart, map[string]any{})
			e.call(e.battleStarted)
			if t.Enemy != nil {
				add(EventEnemyAppeared, enemyData(t.Enemy))
				e.callEnemy(e.enemyAppeared, t.Enemy)
			}
		} else {
			add(EventBattleEnd, map[string]any{})
			e.call(e.battleEnded)
		}
	}

	// Enemy transitions are only meaningful while a battle spans both
	// snapshots; outside battle the slot holds the previous opponent.
	if inBattleBoth(prev, &t) && prev.Enemy != nil && t.Enemy != nil {
		if prev.Enemy.PID != t.Enemy.PID {
			add(EventEnemySwitched, enemyData(t.Enemy))
			e.callEnemy(e.enemySwitched, t.Enemy)
		} else if prev.Enemy.CurrentHP != t.Enemy.CurrentHP {
			add(EventEnemyHPChange, map[string]any{
				"pokemon": t.Enemy.Nickname,
				"oldHp":   int(prev.Enemy.CurrentHP),
				"newHp":   int(t.Enemy.CurrentHP),
				"delta":   int(t.Enemy.CurrentHP) - int(prev.Enemy.CurrentHP),
			})
			e.call(e.enemyHPChanged, lua.LString(t.Enemy.Nickname),
				lua.LNumber(prev.Enemy.CurrentHP), lua.LNumber(t.Enemy.CurrentHP))
		}
	}

	for _, m := range t.Party {
		old, ok := findByPID(prev.Party, m.PID)
		if !ok {
			continue
		}
		if m.Level > old.Level {
			add(EventLevelUp, map[string]any{
				"pokemon":  m.Nickname,
				"oldLevel": int(old.Level),
				"newLevel": int(m.Level),
			})
			e.call(e.levelUp, lua.LString(m.Nickname), lua.LNumber(old.Level), lua.LNumber(m.Level))
		}
	}

	if prev.BadgeCount != nil && t.BadgeCount != nil && *t.BadgeCount > *prev.BadgeCount {
		add(EventBadgeEarned, map[string]any{"count": int(*t.BadgeCount)})
		e.call(e.badgeEarned, lua.LNumber(*t.BadgeCount))
	}

	if prev.Money != nil && t.Money != nil && *prev.Money != *t.Money {
		add(EventMoneyChange, map[string]any{
			"old": int(*prev.Money),
			"new": int(*t.Money),
		})
		e.call(e.moneyChanged, lua.LNumber(*prev.Money), lua.LNumber(*t.Money))
	}

	e.prev = &t
	return events
}

func (e *Engine) call(fn *lua.LFunction, args ...lua.LValue) {
	if fn == nil || e.L == nil {
		return
	}
	err := e.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
	if err != nil {
		e.log.Warn().Err(err).Msg("lua hook failed")
	}
}

func (e *Engine) callEnemy(fn *lua.LFunction, m *gba.PartyMember) {
	e.call(fn, lua.LString(m.Nickname), lua.LNumber(m.Level),
		lua.LNumber(m.CurrentHP), lua.LNumber(m.MaxHP))
}

func enemyData(m *gba.PartyMember) map[string]any {
	return map[string]any{
		"pokemon": m.Nickname,
		"level":   int(m.Level),
		"hp":      int(m.CurrentHP),
		"maxHp":   int(m.MaxHP),
	}
}

func inBattleBoth(a, b *gba.Telemetry) bool {
	return a.InBattle != nil && b.InBattle != nil && *a.InBattle && *b.InBattle
}

func findByPID(party []gba.PartyMember, pid uint32) (gba.PartyMember, bool) {
	for _, m := range party {
		if m.PID == pid {
			return m, true
		}
	}
	return gba.PartyMember{}, false
}
