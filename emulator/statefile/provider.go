// Package statefile serves snapshots from save-state files the kiosk
// backend drops into a directory. The newest regular file wins; the
// sequence number only advances when that file changes, so downstream
// layout caching holds across polls of an unchanged state.
package statefile

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"StateScope/emulator"
)

type Provider struct {
	log zerolog.Logger
	fs  afero.Fs
	dir string

	seq      uint64
	lastName string
	lastMod  int64
}

// NewProvider watches dir on the real filesystem.
func NewProvider(logger zerolog.Logger, dir string) *Provider {
	return NewProviderFs(logger, afero.NewOsFs(), dir)
}

// NewProviderFs is NewProvider with an explicit filesystem, for tests.
func NewProviderFs(logger zerolog.Logger, fsys afero.Fs, dir string) *Provider {
	return &Provider{
		log: logger.With().Str("component", "statefile").Logger(),
		fs:  fsys,
		dir: dir,
	}
}

func (p *Provider) Connect() emulator.ConnectionStatus {
	info, err := p.fs.Stat(p.dir)
	if err != nil || !info.IsDir() {
		p.log.Warn().Err(err).Str("dir", p.dir).Msg("state directory unavailable")
		return emulator.Disconnected
	}
	return emulator.Connected
}

func (p *Provider) Status() emulator.ConnectionStatus {
	if _, err := p.fs.Stat(p.dir); err != nil {
		return emulator.Disconnected
	}
	return emulator.Connected
}

func (p *Provider) CaptureSnapshot(ctx context.Context) (emulator.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return emulator.Snapshot{}, err
	}

	newest, err := p.newestState()
	if err != nil {
		return emulator.Snapshot{}, err
	}
	if newest == nil {
		return emulator.Snapshot{}, emulator.ErrGameNotLoaded
	}

	data, err := afero.ReadFile(p.fs, filepath.Join(p.dir, newest.Name()))
	if err != nil {
		return emulator.Snapshot{}, err
	}

	if newest.Name() != p.lastName || newest.ModTime().UnixNano() != p.lastMod {
		p.seq++
		p.lastName = newest.Name()
		p.lastMod = newest.ModTime().UnixNano()
	}
	return emulator.Snapshot{Seq: p.seq, Data: data}, nil
}

func (p *Provider) newestState() (fs.FileInfo, error) {
	infos, err := afero.ReadDir(p.fs, p.dir)
	if err != nil {
		return nil, err
	}
	regular := infos[:0]
	for _, info := range infos {
		if info.Mode().IsRegular() {
			regular = append(regular, info)
		}
	}
	if len(regular) == 0 {
		return nil, nil
	}
	sort.Slice(regular, func(i, j int) bool {
		return regular[i].ModTime().After(regular[j].ModTime())
	})
	return regular[0], nil
}
