// Package sink publishes telemetry and derived events to the kiosk's web
// backend as JSON over HTTP.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"StateScope/gba"
	"StateScope/processing"
)

// PartyPokemon mirrors the party entry shape the backend expects.
type PartyPokemon struct {
	Nickname  string `json:"nickname"`
	Level     int    `json:"level"`
	CurrentHP int    `json:"currentHp"`
	MaxHP     int    `json:"maxHp"`
}

// CurrentState is the point-in-time game state section of the payload.
// Optional fields stay null when the extractor couldn't read them.
type CurrentState struct {
	Location *string        `json:"location"`
	InBattle bool           `json:"inBattle"`
	Money    *uint32        `json:"money"`
	Badges   *uint8         `json:"badges"`
	Playtime int            `json:"playtime"`
	Party    []PartyPokemon `json:"party"`
}

type Payload struct {
	Timestamp    time.Time          `json:"timestamp"`
	Events       []processing.Event `json:"events"`
	CurrentState CurrentState       `json:"currentState"`
}

// BuildPayload flattens telemetry into the wire shape. Playtime is total
// seconds; a missing playtime reads as zero.
func BuildPayload(ts time.Time, t gba.Telemetry, events []processing.Event) Payload {
	state := CurrentState{
		Location: t.Location,
		Money:    t.Money,
		Badges:   t.BadgeCount,
		Party:    make([]PartyPokemon, 0, len(t.Party)),
	}
	if t.InBattle != nil {
		state.InBattle = *t.InBattle
	}
	if t.Playtime != nil {
		state.Playtime = int(t.Playtime.Hours)*3600 + int(t.Playtime.Minutes)*60 + int(t.Playtime.Seconds)
	}
	for _, m := range t.Party {
		state.Party = append(state.Party, PartyPokemon{
			Nickname:  m.Nickname,
			Level:     int(m.Level),
			CurrentHP: int(m.CurrentHP),
			MaxHP:     int(m.MaxHP),
		})
	}
	if events == nil {
		events = []processing.Event{}
	}
	return Payload{Timestamp: ts, Events: events, CurrentState: state}
}

type HTTPSink struct {
	log    zerolog.Logger
	url    string
	client *http.Client
}

func New(logger zerolog.Logger, url string) *HTTPSink {
	return &HTTPSink{
		log:    logger.With().Str("component", "sink").Logger(),
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish POSTs one payload. Failures are reported, not retried; the next
// tick carries fresher state anyway.
func (s *HTTPSink) Publish(ctx context.Context, t gba.Telemetry, events []processing.Event) error {
	body, err := json.Marshal(BuildPayload(time.Now().UTC(), t, events))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink responded %s", resp.Status)
	}
	return nil
}
