// Package statesock captures whole serialized save-state blobs from an
// emulator-side script over a websocket. The protocol is a single request
// word; the reply is one binary frame containing the snapshot, or an empty
// frame when no game is loaded.
package statesock

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StateScope/emulator"
)

const captureCommand = "capture"

// A save-state blob carries at least the serializer header plus both
// work-RAM banks; anything smaller is a refusal, not a snapshot.
const minSnapshotSize = 0x48000

// MessageReaderWriter is the transport under the client. Split out so the
// protocol logic can be tested against a fake.
type MessageReaderWriter interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	Connect() error
	Connected() bool
}

type Client struct {
	log zerolog.Logger
	rw  MessageReaderWriter
	seq uint64
}

func NewClient(logger zerolog.Logger, rw MessageReaderWriter) *Client {
	return &Client{
		log: logger.With().Str("component", "statesock").Logger(),
		rw:  rw,
	}
}

func (c *Client) Connect() emulator.ConnectionStatus {
	if err := c.rw.Connect(); err != nil {
		c.log.Warn().Err(err).Msg("connect failed")
		return emulator.Disconnected
	}
	return emulator.Connected
}

func (c *Client) Status() emulator.ConnectionStatus {
	if c.rw.Connected() {
		return emulator.Connected
	}
	return emulator.Disconnected
}

// CaptureSnapshot requests one save-state blob. Each blob is a fresh
// serialization, so every capture gets a new sequence number.
func (c *Client) CaptureSnapshot(ctx context.Context) (emulator.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return emulator.Snapshot{}, err
	}

	if err := c.rw.WriteMessage([]byte(captureCommand)); err != nil {
		return emulator.Snapshot{}, fmt.Errorf("request snapshot: %w", err)
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := c.rw.ReadMessage()
		ch <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return emulator.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return emulator.Snapshot{}, fmt.Errorf("read snapshot: %w", res.err)
		}
		if len(res.data) < minSnapshotSize {
			return emulator.Snapshot{}, emulator.ErrGameNotLoaded
		}
		c.seq++
		return emulator.Snapshot{Seq: c.seq, Data: res.data}, nil
	}
}

// RetryConnect keeps dialing until the transport comes up or ctx ends.
func (c *Client) RetryConnect(ctx context.Context, interval time.Duration) error {
	for {
		if c.Connect() == emulator.Connected {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
