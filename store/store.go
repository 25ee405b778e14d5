// SPDX-License-Identifier: EPL-2.0

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lzkill/ir-tester/audio"
)

// Asset is a decoded audio file held in memory: an IR or a DI depending
// on which store owns it. The ID is stable for the asset's lifetime; the
// Revision increments every time the underlying file is re-decoded, so
// ID@Revision identifies immutable content (the convolution cache keys
// on it).
type Asset struct {
	ID       uint64
	Revision uint64
	Name     string
	Path     string
	Buffer   *audio.Buffer
}

// Key returns the content-identity string used for caching.
func (a *Asset) Key() string {
	return fmt.Sprintf("%d@%d", a.ID, a.Revision)
}

// Store owns one session list of assets (the IR list or the DI list).
// Files are decoded through the registry, picked by extension, and
// peak-normalized to full scale on load so every asset auditions at a
// comparable level.
type Store struct {
	registry *audio.Registry

	mtx    sync.Mutex
	assets map[uint64]*Asset
	order  []uint64
	nextID uint64
}

func New(registry *audio.Registry) *Store {
	return &Store{
		registry: registry,
		assets:   make(map[uint64]*Asset),
	}
}

// Add decodes path into a new asset, peak-normalized to full scale so
// every asset auditions at a comparable level. Failures are reported as
// *DecodeError and leave the store unchanged.
func (s *Store) Add(path string) (*Asset, error) {
	buf, err := s.Decode(path)
	if err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextID++
	asset := &Asset{
		ID:       s.nextID,
		Revision: 1,
		Name:     filepath.Base(path),
		Path:     path,
		Buffer:   buf.Normalized(1.0),
	}
	s.assets[asset.ID] = asset
	s.order = append(s.order, asset.ID)

	return asset, nil
}

// Replace re-decodes an existing asset from a (possibly different) path,
// bumping its revision. Cached results keyed on the old revision become
// unreachable, which is the invalidation rule.
func (s *Store) Replace(id uint64, path string) (*Asset, error) {
	buf, err := s.Decode(path)
	if err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	old, ok := s.assets[id]
	if !ok {
		return nil, ErrAssetNotFound
	}

	asset := &Asset{
		ID:       old.ID,
		Revision: old.Revision + 1,
		Name:     filepath.Base(path),
		Path:     path,
		Buffer:   buf.Normalized(1.0),
	}
	s.assets[id] = asset

	return asset, nil
}

// Remove drops an asset from the session list.
func (s *Store) Remove(id uint64) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.assets[id]; !ok {
		return false
	}

	delete(s.assets, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true
}

// Get returns the asset with the given id.
func (s *Store) Get(id uint64) (*Asset, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	a, ok := s.assets[id]
	return a, ok
}

// List returns the assets in insertion order.
func (s *Store) List() []*Asset {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	out := make([]*Asset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.assets[id])
	}

	return out
}

// Len returns the number of assets.
func (s *Store) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.assets)
}

// Decode reads and decodes path without adding it to the store, keeping
// the file's original levels. Export uses this so normalization gain is
// computed against the source material, not the leveled session copy.
func (s *Store) Decode(path string) (*audio.Buffer, error) {
	dec, ok := s.registry.Get(filepath.Ext(path))
	if !ok {
		return nil, &DecodeError{
			Path: path,
			Kind: UnsupportedFormat,
			Err:  fmt.Errorf("no decoder for %q", filepath.Ext(path)),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Kind: Unreadable, Err: err}
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Kind: Corrupt, Err: err}
	}
	defer src.Close()

	buf, err := audio.Collect(src)
	if err != nil {
		return nil, &DecodeError{Path: path, Kind: Corrupt, Err: err}
	}
	if len(buf.Data) == 0 {
		return nil, &DecodeError{Path: path, Kind: Corrupt, Err: errors.New("no samples")}
	}

	return buf, nil
}
