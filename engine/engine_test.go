// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/formats/wav"
	"github.com/lzkill/ir-tester/player"
	"github.com/lzkill/ir-tester/store"
)

// nullOutput satisfies player.Output without touching real hardware.
type nullOutput struct{}

func (nullOutput) Open(int, int, int, player.BlockFunc) error { return nil }
func (nullOutput) Start() error                               { return nil }
func (nullOutput) Stop() error                                { return nil }
func (nullOutput) Close() error                               { return nil }

// writeFixtureWAV writes a short sine at the given peak and rate.
func writeFixtureWAV(t *testing.T, dir, name string, rate int, peak float64) string {
	t.Helper()

	data := make([]float64, rate/10)
	for i := range data {
		data[i] = peak * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	buf, err := audio.NewBuffer(data, rate, 1)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	if err := wav.WriteBuffer(f, buf, 24); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}

	return path
}

// newTestEngine returns an engine over a null device plus the channel its
// pair-ready callback reports on.
func newTestEngine(t *testing.T) (*Engine, chan PairResult) {
	t.Helper()

	ready := make(chan PairResult, 8)
	e := New(nullOutput{}, WithPairReady(func(r PairResult) { ready <- r }))
	t.Cleanup(func() { e.Close() })

	return e, ready
}

func waitPair(t *testing.T, ready chan PairResult) PairResult {
	t.Helper()

	select {
	case r := <-ready:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pair result")
		return PairResult{}
	}
}

func TestEngine_SelectPair(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, ready := newTestEngine(t)

	ir, err := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))
	if err != nil {
		t.Fatalf("AddIR() error = %v", err)
	}
	di, err := e.AddDI(writeFixtureWAV(t, dir, "riff.wav", 44100, 0.5))
	if err != nil {
		t.Fatalf("AddDI() error = %v", err)
	}

	if err := e.SelectPair(ir.ID, di.ID); err != nil {
		t.Fatalf("SelectPair() error = %v", err)
	}

	r := waitPair(t, ready)
	if r.Err != nil {
		t.Fatalf("pair result error = %v", r.Err)
	}
	if r.IR.ID != ir.ID || r.DI.ID != di.ID {
		t.Errorf("pair result ids = (%d,%d), want (%d,%d)", r.IR.ID, r.DI.ID, ir.ID, di.ID)
	}

	// Wet length is DI + IR - 1 frames at the DI's rate: two 100ms clips
	// convolve to just under 200ms.
	if d := e.Duration(); d <= 150*time.Millisecond || d > 250*time.Millisecond {
		t.Errorf("Duration() = %v, want ~200ms", d)
	}

	if err := e.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if e.State() != player.Playing {
		t.Errorf("State() = %v, want Playing", e.State())
	}
}

func TestEngine_SelectPairUnknownAsset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, _ := newTestEngine(t)

	ir, err := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))
	if err != nil {
		t.Fatalf("AddIR() error = %v", err)
	}

	if err := e.SelectPair(99, 1); !errors.Is(err, store.ErrAssetNotFound) {
		t.Errorf("unknown IR error = %v, want ErrAssetNotFound", err)
	}
	if err := e.SelectPair(ir.ID, 99); !errors.Is(err, store.ErrAssetNotFound) {
		t.Errorf("unknown DI error = %v, want ErrAssetNotFound", err)
	}
}

func TestEngine_ReselectUsesCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, ready := newTestEngine(t)

	ir, _ := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))
	di, _ := e.AddDI(writeFixtureWAV(t, dir, "riff.wav", 48000, 0.5))

	if err := e.SelectPair(ir.ID, di.ID); err != nil {
		t.Fatalf("SelectPair() error = %v", err)
	}
	waitPair(t, ready)

	if e.cache.len() != 1 {
		t.Fatalf("cache len = %d, want 1", e.cache.len())
	}

	if err := e.SelectPair(ir.ID, di.ID); err != nil {
		t.Fatalf("reselect error = %v", err)
	}
	if r := waitPair(t, ready); r.Err != nil {
		t.Fatalf("reselect result error = %v", r.Err)
	}
	if e.cache.len() != 1 {
		t.Errorf("cache len = %d after reselect, want 1", e.cache.len())
	}
}

func TestEngine_RemoveSelectedIRStopsPlayback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, ready := newTestEngine(t)

	ir, _ := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))
	di, _ := e.AddDI(writeFixtureWAV(t, dir, "riff.wav", 48000, 0.5))

	if err := e.SelectPair(ir.ID, di.ID); err != nil {
		t.Fatalf("SelectPair() error = %v", err)
	}
	waitPair(t, ready)

	if err := e.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if !e.RemoveIR(ir.ID) {
		t.Fatal("RemoveIR() = false")
	}
	if e.State() != player.Stopped {
		t.Errorf("State() = %v, want Stopped after removing selected IR", e.State())
	}
	if e.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0 after selection cleared", e.Duration())
	}
	if e.cache.len() != 0 {
		t.Errorf("cache len = %d, want 0 after eviction", e.cache.len())
	}
}

func TestEngine_ReplaceSelectedIRRebuilds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, ready := newTestEngine(t)

	ir, _ := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))
	di, _ := e.AddDI(writeFixtureWAV(t, dir, "riff.wav", 48000, 0.5))

	if err := e.SelectPair(ir.ID, di.ID); err != nil {
		t.Fatalf("SelectPair() error = %v", err)
	}
	waitPair(t, ready)

	replaced, err := e.ReplaceIR(ir.ID, writeFixtureWAV(t, dir, "cab_v2.wav", 48000, 0.5))
	if err != nil {
		t.Fatalf("ReplaceIR() error = %v", err)
	}
	if replaced.Revision != ir.Revision+1 {
		t.Errorf("Revision = %d, want %d", replaced.Revision, ir.Revision+1)
	}

	if r := waitPair(t, ready); r.Err != nil {
		t.Fatalf("rebuild result error = %v", r.Err)
	}
	if r := e.Duration(); r == 0 {
		t.Error("Duration() = 0, want rebuilt program")
	}
}

func TestEngine_ToggleQuickDryWet(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)

	e.SetMix(0.7)

	if got := e.ToggleQuickDryWet(); got != 0 {
		t.Errorf("first toggle = %v, want 0 (fully dry)", got)
	}
	if got := e.ToggleQuickDryWet(); got != 0.7 {
		t.Errorf("second toggle = %v, want 0.7 restored", got)
	}
	if got := e.ToggleQuickDryWet(); got != 0 {
		t.Errorf("third toggle = %v, want 0", got)
	}
}

func TestEngine_SetMixClamps(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)

	e.SetMix(1.5)
	if got := e.pl.Mix(); got != 1 {
		t.Errorf("Mix() = %v, want clamp to 1", got)
	}

	e.SetMix(-0.5)
	if got := e.pl.Mix(); got != 0 {
		t.Errorf("Mix() = %v, want clamp to 0", got)
	}

	// The zero above must not have clobbered the remembered wet ratio.
	if got := e.ToggleQuickDryWet(); got != 1 {
		t.Errorf("toggle from dry = %v, want 1", got)
	}
}

func TestEngine_EQCommands(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)

	if err := e.SetEqBand(4, -6); err != nil {
		t.Fatalf("SetEqBand() error = %v", err)
	}
	if err := e.SetEqBand(10, 3); err == nil {
		t.Error("SetEqBand(10) succeeded, want band range error")
	}

	e.ToggleEq(false)
	if e.pl.EQEnabled() {
		t.Error("EQEnabled() = true after ToggleEq(false)")
	}

	e.ResetEq()
	for band, g := range e.pl.EQGains() {
		if g != 0 {
			t.Errorf("band %d gain = %v after ResetEq, want 0", band, g)
		}
	}
}

func TestEngine_IRSpectrum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, _ := newTestEngine(t)

	ir, _ := e.AddIR(writeFixtureWAV(t, dir, "cab.wav", 48000, 0.5))

	mags, err := e.IRSpectrum(ir.ID, 1024)
	if err != nil {
		t.Fatalf("IRSpectrum() error = %v", err)
	}
	if len(mags) != 512 {
		t.Fatalf("len = %d, want 512 bins", len(mags))
	}

	maxDB := math.Inf(-1)
	for _, m := range mags {
		if m > 0 {
			t.Fatalf("bin above 0 dB: %v", m)
		}
		if m > maxDB {
			maxDB = m
		}
	}
	if maxDB != 0 {
		t.Errorf("max bin = %v dB, want exactly 0", maxDB)
	}

	if _, err := e.IRSpectrum(999, 1024); !errors.Is(err, store.ErrAssetNotFound) {
		t.Errorf("unknown id error = %v, want ErrAssetNotFound", err)
	}
}
