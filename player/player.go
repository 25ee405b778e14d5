// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lzkill/ir-tester/dsp/eq"
	"github.com/lzkill/ir-tester/dsp/mix"
)

var (
	ErrDeviceUnavailable = errors.New("player: audio device unavailable")
	ErrNoProgram         = errors.New("player: nothing loaded")
)

// State is the transport state.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// DefaultBlockFrames is the render period handed to the output device.
const DefaultBlockFrames = 1024

// Program is the material the player renders: the wet (convolved) signal
// and the dry DI it came from, both interleaved at the same rate and
// channel count. Dry may be shorter; the tail plays wet-only. Programs
// are immutable once handed to the player.
type Program struct {
	Dry        []float64
	Wet        []float64
	SampleRate int
	Channels   int
}

// Frames returns the program length in frames (the wet length).
func (p *Program) Frames() int {
	if p.Channels == 0 {
		return 0
	}

	return len(p.Wet) / p.Channels
}

// Duration returns the program's playback length.
func (p *Program) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}

	return time.Duration(float64(p.Frames()) / float64(p.SampleRate) * float64(time.Second))
}

// params is the control-plane snapshot the render callback reads. A new
// immutable instance is published on every change; the callback detects
// changes by pointer identity.
type params struct {
	mixRatio  float64
	volume    float64
	eqEnabled bool
	eqGains   [eq.NumBands]float64
}

// Player owns the real-time render path: transport state machine,
// playback cursor and the per-block Equalizer -> Mixer pipeline. Control
// commands run on ordinary goroutines and communicate with the render
// callback exclusively through atomic snapshots; the callback never
// takes a lock and falls back to silence whenever its data is missing.
type Player struct {
	out         Output
	blockFrames int

	state   atomic.Int32
	loop    atomic.Bool
	cursor  atomic.Int64 // frame index into the active program
	program atomic.Pointer[Program]
	ctrl    atomic.Pointer[params]

	// Control-plane bookkeeping, guarded by mtx.
	mtx        sync.Mutex
	opened     bool
	openedRate int
	openedCh   int
	started    bool

	// Render-thread state. Touched only inside renderBlock.
	rt struct {
		program   *Program
		ctrl      *params
		rate, ch  int
		mixer     *mix.Mixer
		equalizer *eq.Graphic
		dry, wet  []float64
	}
}

// Option configures a Player.
type Option func(*Player)

// WithBlockFrames overrides the render period size.
func WithBlockFrames(frames int) Option {
	return func(p *Player) { p.blockFrames = frames }
}

// New creates a player over the given output device.
func New(out Output, opts ...Option) *Player {
	p := &Player{
		out:         out,
		blockFrames: DefaultBlockFrames,
	}
	for _, o := range opts {
		o(p)
	}

	p.state.Store(int32(Stopped))
	p.ctrl.Store(&params{mixRatio: 1, volume: 0.8, eqEnabled: true})

	return p
}

// State returns the current transport state.
func (p *Player) State() State { return State(p.state.Load()) }

// SetLoop toggles wrap-around at end of stream.
func (p *Player) SetLoop(loop bool) { p.loop.Store(loop) }

// Loop reports the loop flag.
func (p *Player) Loop() bool { return p.loop.Load() }

// SetProgram swaps the active material. Transport state is preserved: a
// playing player keeps playing into the new program (the render thread
// resets equalizer state and continues the mixer ramp from its current
// values, so the swap is click-free). A nil program stops playback.
func (p *Player) SetProgram(prog *Program) error {
	if prog == nil {
		p.Stop()
		p.program.Store(nil)
		return nil
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	wasPlaying := p.State() == Playing

	// A format change needs the device reopened; do it with the stream
	// stopped so the callback never sees a half-configured device.
	if p.opened && (p.openedRate != prog.SampleRate || p.openedCh != prog.Channels) {
		if p.started {
			_ = p.out.Stop()
			p.started = false
		}
		p.opened = false
	}

	if pos := p.cursor.Load(); pos > int64(prog.Frames()) {
		p.cursor.Store(0)
	}

	p.program.Store(prog)

	if wasPlaying {
		return p.startLocked(prog)
	}

	return nil
}

// Play starts or resumes playback.
func (p *Player) Play() error {
	prog := p.program.Load()
	if prog == nil {
		return ErrNoProgram
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.startLocked(prog)
}

func (p *Player) startLocked(prog *Program) error {
	if !p.opened {
		if err := p.out.Open(prog.SampleRate, prog.Channels, p.blockFrames, p.renderBlock); err != nil {
			p.state.Store(int32(Stopped))
			return err
		}
		p.opened = true
		p.openedRate = prog.SampleRate
		p.openedCh = prog.Channels
	}

	if !p.started {
		if err := p.out.Start(); err != nil {
			p.state.Store(int32(Stopped))
			return err
		}
		p.started = true
	}

	p.state.Store(int32(Playing))

	return nil
}

// Pause suspends playback, keeping the cursor. The device keeps running
// and renders silence, so resume is instant.
func (p *Player) Pause() {
	p.state.CompareAndSwap(int32(Playing), int32(Paused))
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.state.Store(int32(Stopped))
	p.cursor.Store(0)

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.started {
		_ = p.out.Stop()
		p.started = false
	}
}

// Seek moves the cursor to the given offset, clamped to [0, duration].
// Seeking to or beyond the end parks the cursor at the end; the next
// rendered block runs the usual end-of-stream handling (wrap when
// looping, stop otherwise).
func (p *Player) Seek(offset time.Duration) error {
	prog := p.program.Load()
	if prog == nil {
		return ErrNoProgram
	}

	frame := int64(math.Round(offset.Seconds() * float64(prog.SampleRate)))
	if frame < 0 {
		frame = 0
	}
	if total := int64(prog.Frames()); frame > total {
		frame = total
	}

	p.cursor.Store(frame)

	return nil
}

// SeekRelative moves the cursor by delta (e.g. +/- 5s), with the same
// clamping as Seek.
func (p *Player) SeekRelative(delta time.Duration) error {
	return p.Seek(p.Position() + delta)
}

// Position returns the cursor as a time offset.
func (p *Player) Position() time.Duration {
	prog := p.program.Load()
	if prog == nil || prog.SampleRate == 0 {
		return 0
	}

	return time.Duration(float64(p.cursor.Load()) / float64(prog.SampleRate) * float64(time.Second))
}

// Duration returns the active program's length.
func (p *Player) Duration() time.Duration {
	prog := p.program.Load()
	if prog == nil {
		return 0
	}

	return prog.Duration()
}

// SetMix sets the dry/wet target ratio in [0,1].
func (p *Player) SetMix(ratio float64) {
	p.updateParams(func(c *params) { c.mixRatio = ratio })
}

// SetVolume sets the target output gain.
func (p *Player) SetVolume(v float64) {
	p.updateParams(func(c *params) { c.volume = v })
}

// Mix returns the target mix ratio.
func (p *Player) Mix() float64 { return p.ctrl.Load().mixRatio }

// Volume returns the target volume.
func (p *Player) Volume() float64 { return p.ctrl.Load().volume }

// SetEQGain sets one equalizer band's gain in dB.
func (p *Player) SetEQGain(band int, gainDB float64) error {
	if band < 0 || band >= eq.NumBands {
		return eq.ErrInvalidBand
	}

	p.updateParams(func(c *params) { c.eqGains[band] = gainDB })

	return nil
}

// SetEQGains replaces all equalizer band gains.
func (p *Player) SetEQGains(gains [eq.NumBands]float64) {
	p.updateParams(func(c *params) { c.eqGains = gains })
}

// SetEQEnabled toggles the equalizer bypass.
func (p *Player) SetEQEnabled(enabled bool) {
	p.updateParams(func(c *params) { c.eqEnabled = enabled })
}

// EQGains returns the current band gains.
func (p *Player) EQGains() [eq.NumBands]float64 { return p.ctrl.Load().eqGains }

// EQEnabled reports whether the equalizer is active.
func (p *Player) EQEnabled() bool { return p.ctrl.Load().eqEnabled }

// Close releases the output device.
func (p *Player) Close() error {
	p.Stop()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.opened = false

	return p.out.Close()
}

// updateParams publishes a new immutable snapshot derived from the
// current one. Single writer (commands are serialized by callers or
// inherently racy in a last-write-wins sense, which is fine for knobs).
func (p *Player) updateParams(mutate func(*params)) {
	cur := p.ctrl.Load()
	next := *cur
	mutate(&next)
	p.ctrl.Store(&next)
}

// renderBlock is the real-time callback. It reads the program, cursor
// and parameter snapshots, renders one block through Equalizer -> Mixer
// and advances the cursor. Any missing data renders silence for the
// block instead of blocking.
func (p *Player) renderBlock(out []float32) {
	for i := range out {
		out[i] = 0
	}

	if State(p.state.Load()) != Playing {
		return
	}

	prog := p.program.Load()
	if prog == nil {
		return
	}

	p.syncRenderState(prog)

	ch := prog.Channels
	frames := len(out) / ch
	pos := p.cursor.Load()
	total := int64(prog.Frames())

	if total == 0 {
		p.state.CompareAndSwap(int32(Playing), int32(Stopped))
		p.cursor.Store(0)
		return
	}

	// Fill the block in segments: when the program end falls mid-block
	// with loop enabled, rendering continues from frame 0 in the same
	// block, so the wrap is seamless. Without loop the remainder stays
	// silent and the transport stops.
	filled := 0
	for filled < frames {
		if pos >= total {
			if !p.loop.Load() {
				p.state.CompareAndSwap(int32(Playing), int32(Stopped))
				pos = 0
				break
			}
			pos = 0
		}

		n := int64(frames - filled)
		if remaining := total - pos; n > remaining {
			n = remaining
		}
		samples := int(n) * ch
		start := int(pos) * ch

		wet := p.rt.wet[:samples]
		dry := p.rt.dry[:samples]
		copy(wet, prog.Wet[start:start+samples])

		for i := range dry {
			if start+i < len(prog.Dry) {
				dry[i] = prog.Dry[start+i]
			} else {
				dry[i] = 0
			}
		}

		p.rt.equalizer.Process(wet)
		_ = p.rt.mixer.Process(wet, dry, wet) // in place: dst aliases wet

		outOff := filled * ch
		for i := range samples {
			out[outOff+i] = float32(wet[i])
		}

		pos += n
		filled += int(n)
	}

	if pos >= total {
		if p.loop.Load() {
			pos = 0
		} else {
			p.state.CompareAndSwap(int32(Playing), int32(Stopped))
			pos = 0
		}
	}
	p.cursor.Store(pos)
}

// syncRenderState folds control-plane changes into the render-thread
// pipeline: new parameter snapshots move mixer targets and EQ gains; a
// program swap resets equalizer state while the mixer ramps on from its
// current values, keeping the transition click-free.
func (p *Player) syncRenderState(prog *Program) {
	blockSamples := p.blockFrames * prog.Channels

	if p.rt.program != prog {
		if p.rt.mixer == nil || p.rt.rate != prog.SampleRate || p.rt.ch != prog.Channels {
			// Format change: rebuild the pipeline. Allocation here is
			// confined to the swap boundary, never the steady state.
			p.rt.mixer = mix.New(prog.SampleRate, prog.Channels)
			p.rt.equalizer = eq.New(float64(prog.SampleRate), prog.Channels)
			p.rt.dry = make([]float64, blockSamples*2)
			p.rt.wet = make([]float64, blockSamples*2)
			p.rt.rate = prog.SampleRate
			p.rt.ch = prog.Channels
			p.rt.ctrl = nil
		} else {
			p.rt.equalizer.Reset()
		}
		p.rt.program = prog
	}

	if c := p.ctrl.Load(); c != p.rt.ctrl {
		first := p.rt.ctrl == nil
		p.rt.mixer.SetMix(c.mixRatio)
		p.rt.mixer.SetVolume(c.volume)
		if first {
			p.rt.mixer.Snap()
		}
		p.rt.equalizer.SetGains(c.eqGains)
		p.rt.equalizer.SetEnabled(c.eqEnabled)
		p.rt.ctrl = c
	}
}
