// Package emulator defines the snapshot provider contract and its shared
// types. Concrete providers live in subpackages, one per transport.
package emulator

import (
	"context"
	"errors"
)

type ConnectionStatus byte

const (
	Disconnected   ConnectionStatus = 0
	Connected      ConnectionStatus = 1
	Reconnecting   ConnectionStatus = 2
	WaitingForGame ConnectionStatus = 3
)

// ErrGameNotLoaded means the emulator is reachable but has no game running,
// so there is no memory to snapshot. Callers should wait and retry.
var ErrGameNotLoaded = errors.New("game not loaded")

// Snapshot is one immutable point-in-time capture of the emulator's memory.
// Seq identifies the capture: providers bump it whenever the underlying
// state may have changed, so downstream caching can key off it.
type Snapshot struct {
	Seq  uint64
	Data []byte
}

// SnapshotProvider hands out memory snapshots on demand. Capturing may
// block on the emulator, hence the context; everything downstream of a
// returned Snapshot is pure computation.
type SnapshotProvider interface {
	Connect() ConnectionStatus
	Status() ConnectionStatus
	CaptureSnapshot(ctx context.Context) (Snapshot, error)
}
