// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/dsp/eq"
	"github.com/lzkill/ir-tester/dsp/spectrum"
	"github.com/lzkill/ir-tester/player"
	"github.com/lzkill/ir-tester/store"
)

// SeekStep is the relative-seek increment used by the skip commands.
const SeekStep = 5 * time.Second

// DefaultSpectrumWindow is the analysis window for IR spectra.
const DefaultSpectrumWindow = 2048

// PairResult reports the outcome of an asynchronous pair selection.
// Stale results (the selection moved on before the convolution finished)
// are discarded and never reported.
type PairResult struct {
	IR  *store.Asset
	DI  *store.Asset
	Err error
}

// Engine wires the session stores, the convolution cache and the
// playback engine behind the command set a front end drives. All methods
// are safe to call from the control thread; none of them run on the
// audio callback.
type Engine struct {
	irs   *store.Store
	dis   *store.Store
	pl    *player.Player
	cache *convCache
	log   *slog.Logger

	onPair func(PairResult)
	gen    atomic.Uint64
	wg     sync.WaitGroup

	mtx        sync.Mutex
	irID, diID uint64
	selected   bool
	lastWetMix float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPairReady registers a callback invoked when an asynchronous pair
// selection finishes (successfully or not). Invoked from a worker
// goroutine.
func WithPairReady(fn func(PairResult)) Option {
	return func(e *Engine) { e.onPair = fn }
}

// New creates an engine rendering to the given output device.
func New(out player.Output, opts ...Option) *Engine {
	e := &Engine{
		irs:        store.New(store.IRRegistry()),
		dis:        store.New(store.DIRegistry()),
		pl:         player.New(out),
		cache:      newConvCache(),
		log:        slog.Default(),
		lastWetMix: 1.0,
	}
	for _, o := range opts {
		o(e)
	}

	return e
}

// IRs returns the impulse response session store.
func (e *Engine) IRs() *store.Store { return e.irs }

// DIs returns the DI recording session store.
func (e *Engine) DIs() *store.Store { return e.dis }

// AddIR decodes a new impulse response into the session.
func (e *Engine) AddIR(path string) (*store.Asset, error) { return e.irs.Add(path) }

// AddDI decodes a new DI recording into the session.
func (e *Engine) AddDI(path string) (*store.Asset, error) { return e.dis.Add(path) }

// RemoveIR drops an impulse response. Cached convolutions involving it
// are evicted; if it was the selected IR, playback stops and the
// selection clears.
func (e *Engine) RemoveIR(id uint64) bool {
	asset, ok := e.irs.Get(id)
	if !ok {
		return false
	}

	e.irs.Remove(id)
	e.cache.evict(asset.Key())
	e.dropSelectionIf(id, 0)

	return true
}

// RemoveDI drops a DI recording, with the same eviction rules as
// RemoveIR.
func (e *Engine) RemoveDI(id uint64) bool {
	asset, ok := e.dis.Get(id)
	if !ok {
		return false
	}

	e.dis.Remove(id)
	e.cache.evict(asset.Key())
	e.dropSelectionIf(0, id)

	return true
}

// ReplaceIR re-decodes an impulse response in place. The revision bump
// invalidates cached convolutions; if the asset is currently selected
// the pair is rebuilt and handed to the player when ready.
func (e *Engine) ReplaceIR(id uint64, path string) (*store.Asset, error) {
	old, ok := e.irs.Get(id)
	if !ok {
		return nil, store.ErrAssetNotFound
	}

	asset, err := e.irs.Replace(id, path)
	if err != nil {
		return nil, err
	}
	e.cache.evict(old.Key())

	e.mtx.Lock()
	reselect := e.selected && e.irID == id
	diID := e.diID
	e.mtx.Unlock()

	if reselect {
		if err := e.SelectPair(id, diID); err != nil {
			return asset, err
		}
	}

	return asset, nil
}

// ReplaceDI re-decodes a DI recording in place, mirroring ReplaceIR.
func (e *Engine) ReplaceDI(id uint64, path string) (*store.Asset, error) {
	old, ok := e.dis.Get(id)
	if !ok {
		return nil, store.ErrAssetNotFound
	}

	asset, err := e.dis.Replace(id, path)
	if err != nil {
		return nil, err
	}
	e.cache.evict(old.Key())

	e.mtx.Lock()
	reselect := e.selected && e.diID == id
	irID := e.irID
	e.mtx.Unlock()

	if reselect {
		if err := e.SelectPair(irID, id); err != nil {
			return asset, err
		}
	}

	return asset, nil
}

func (e *Engine) dropSelectionIf(irID, diID uint64) {
	e.mtx.Lock()
	hit := e.selected && ((irID != 0 && e.irID == irID) || (diID != 0 && e.diID == diID))
	if hit {
		e.selected = false
	}
	e.mtx.Unlock()

	if hit {
		e.gen.Add(1) // orphan any in-flight convolution
		_ = e.pl.SetProgram(nil)
	}
}

// SelectPair makes (ir, di) the active audition pair. Validation is
// synchronous; the convolution itself runs on a worker goroutine and the
// result is handed to the player when ready, preserving transport state.
// Selecting again before the previous convolution finishes orphans it.
func (e *Engine) SelectPair(irID, diID uint64) error {
	ir, ok := e.irs.Get(irID)
	if !ok {
		return fmt.Errorf("impulse response %d: %w", irID, store.ErrAssetNotFound)
	}
	di, ok := e.dis.Get(diID)
	if !ok {
		return fmt.Errorf("di recording %d: %w", diID, store.ErrAssetNotFound)
	}

	e.mtx.Lock()
	e.irID, e.diID = irID, diID
	e.selected = true
	e.mtx.Unlock()

	gen := e.gen.Add(1)

	e.wg.Add(1)
	go e.prepare(gen, ir, di)

	return nil
}

func (e *Engine) prepare(gen uint64, ir, di *store.Asset) {
	defer e.wg.Done()

	key := pairKey(ir.Key(), di.Key())
	start := time.Now()

	wet, cached, err := e.cache.fetch(key, func() (*audio.Buffer, error) {
		return convolvePair(di.Buffer, ir.Buffer)
	})
	if err != nil {
		e.log.Error("convolution failed", "ir", ir.Name, "di", di.Name, "err", err)
		e.report(PairResult{IR: ir, DI: di, Err: err})
		return
	}

	if gen != e.gen.Load() {
		// The selection moved on while we were convolving. The result
		// stays cached for a later reselect but is not applied.
		e.log.Debug("discarding stale convolution", "ir", ir.Name, "di", di.Name)
		return
	}

	e.log.Info("pair ready",
		"ir", ir.Name, "di", di.Name,
		"cached", cached, "elapsed", time.Since(start))

	if err := e.pl.SetProgram(buildProgram(di.Buffer, wet)); err != nil {
		e.report(PairResult{IR: ir, DI: di, Err: err})
		return
	}

	e.report(PairResult{IR: ir, DI: di})
}

func (e *Engine) report(r PairResult) {
	if e.onPair != nil {
		e.onPair(r)
	}
}

// SetMix sets the dry/wet ratio in [0,1]. Non-zero values are remembered
// as the A/B toggle's wet side.
func (e *Engine) SetMix(ratio float64) {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	e.mtx.Lock()
	if ratio > 0 {
		e.lastWetMix = ratio
	}
	e.mtx.Unlock()

	e.pl.SetMix(ratio)
}

// SetVolume sets the output gain.
func (e *Engine) SetVolume(v float64) { e.pl.SetVolume(v) }

// ToggleQuickDryWet swaps between fully dry and the last committed wet
// ratio, through the usual ramp. Returns the new target ratio; toggling
// twice restores the original value.
func (e *Engine) ToggleQuickDryWet() float64 {
	e.mtx.Lock()
	last := e.lastWetMix
	e.mtx.Unlock()

	target := 0.0
	if e.pl.Mix() == 0 {
		target = last
	}

	e.SetMix(target)

	return target
}

// SetEqBand sets one equalizer band's gain in dB.
func (e *Engine) SetEqBand(band int, gainDB float64) error {
	return e.pl.SetEQGain(band, gainDB)
}

// ToggleEq enables or bypasses the equalizer.
func (e *Engine) ToggleEq(enabled bool) { e.pl.SetEQEnabled(enabled) }

// ResetEq returns all bands to 0 dB.
func (e *Engine) ResetEq() {
	var flat [eq.NumBands]float64
	e.pl.SetEQGains(flat)
}

// Play starts or resumes playback.
func (e *Engine) Play() error { return e.pl.Play() }

// Pause suspends playback, keeping the cursor.
func (e *Engine) Pause() { e.pl.Pause() }

// Stop halts playback and rewinds.
func (e *Engine) Stop() { e.pl.Stop() }

// Seek moves the cursor, clamped to the program's bounds.
func (e *Engine) Seek(offset time.Duration) error { return e.pl.Seek(offset) }

// SeekForward skips ahead by SeekStep.
func (e *Engine) SeekForward() error { return e.pl.SeekRelative(SeekStep) }

// SeekBackward skips back by SeekStep.
func (e *Engine) SeekBackward() error { return e.pl.SeekRelative(-SeekStep) }

// SetLoop toggles wrap-around at end of stream.
func (e *Engine) SetLoop(loop bool) { e.pl.SetLoop(loop) }

// State returns the transport state.
func (e *Engine) State() player.State { return e.pl.State() }

// Position returns the playback cursor.
func (e *Engine) Position() time.Duration { return e.pl.Position() }

// Duration returns the active program's length.
func (e *Engine) Duration() time.Duration { return e.pl.Duration() }

// IRSpectrum computes the display spectrum of an impulse response:
// Hann-windowed magnitudes in dB, normalized so the strongest bin sits
// at 0 dB. Recomputed fresh on every call.
func (e *Engine) IRSpectrum(id uint64, windowSize int) ([]float64, error) {
	asset, ok := e.irs.Get(id)
	if !ok {
		return nil, store.ErrAssetNotFound
	}
	if windowSize <= 0 {
		windowSize = DefaultSpectrumWindow
	}

	return spectrum.MagnitudesDB(asset.Buffer, windowSize)
}

// Close waits for in-flight workers and releases the audio device.
func (e *Engine) Close() error {
	e.gen.Add(1)
	e.wg.Wait()

	return e.pl.Close()
}
