// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"errors"
	"time"
)

// DefaultRampDuration is the window over which mix and volume changes
// are interpolated. Short enough to feel immediate, long enough that a
// full-scale jump never clicks.
const DefaultRampDuration = 30 * time.Millisecond

var ErrBlockMismatch = errors.New("mix: dry block longer than wet block")

// Mixer blends a dry and a wet signal per frame:
//
//	out = volume * (dry*(1-mix) + wet*mix)
//
// Parameter changes are never applied as jumps. SetMix and SetVolume
// move targets; Process walks the current values toward them linearly
// over the ramp window, per frame, so a change mid-block is inaudible as
// a discontinuity.
//
// Mixer is not safe for concurrent use. The playback engine owns one
// instance on the audio thread and forwards target changes to it from
// an atomic snapshot.
type Mixer struct {
	channels   int
	rampFrames int

	curMix, targetMix float64
	mixStep           float64
	mixRemaining      int

	curVol, targetVol float64
	volStep           float64
	volRemaining      int
}

// Option configures a Mixer.
type Option func(*config)

type config struct {
	ramp time.Duration
}

// WithRamp overrides the parameter ramp window.
func WithRamp(d time.Duration) Option {
	return func(c *config) { c.ramp = d }
}

// New creates a mixer at full wet and unity volume.
func New(sampleRate, channels int, opts ...Option) *Mixer {
	cfg := config{ramp: DefaultRampDuration}
	for _, o := range opts {
		o(&cfg)
	}

	rampFrames := int(float64(sampleRate) * cfg.ramp.Seconds())
	if rampFrames < 1 {
		rampFrames = 1
	}

	return &Mixer{
		channels:   channels,
		rampFrames: rampFrames,
		curMix:     1,
		targetMix:  1,
		curVol:     1,
		targetVol:  1,
	}
}

// SetMix sets the dry/wet target ratio, clamped to [0,1].
func (m *Mixer) SetMix(ratio float64) {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	if ratio == m.targetMix {
		return
	}

	m.targetMix = ratio
	m.mixStep = (ratio - m.curMix) / float64(m.rampFrames)
	m.mixRemaining = m.rampFrames
}

// SetVolume sets the target output gain (>= 0).
func (m *Mixer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}

	if v == m.targetVol {
		return
	}

	m.targetVol = v
	m.volStep = (v - m.curVol) / float64(m.rampFrames)
	m.volRemaining = m.rampFrames
}

// Mix returns the target mix ratio.
func (m *Mixer) Mix() float64 { return m.targetMix }

// Volume returns the target volume.
func (m *Mixer) Volume() float64 { return m.targetVol }

// Ramping reports whether a parameter transition is still in progress.
func (m *Mixer) Ramping() bool { return m.mixRemaining > 0 || m.volRemaining > 0 }

// Snap finishes any ramp immediately. Used when a new program is loaded
// while stopped; never during playback.
func (m *Mixer) Snap() {
	m.curMix = m.targetMix
	m.curVol = m.targetVol
	m.mixRemaining = 0
	m.volRemaining = 0
}

// Process blends dry and wet into dst. wet and dst must be the same
// length; dry may be shorter (it is taken as silence past its end, which
// lets the convolution tail decay naturally after the DI stops). All
// slices are interleaved with the mixer's channel count.
func (m *Mixer) Process(dst, dry, wet []float64) error {
	if len(dry) > len(wet) || len(dst) != len(wet) {
		return ErrBlockMismatch
	}

	ch := m.channels

	for i := 0; i < len(wet); i += ch {
		m.advance()

		wetGain := m.curVol * m.curMix
		dryGain := m.curVol * (1 - m.curMix)

		for c := 0; c < ch && i+c < len(wet); c++ {
			var d float64
			if i+c < len(dry) {
				d = dry[i+c]
			}
			dst[i+c] = dryGain*d + wetGain*wet[i+c]
		}
	}

	return nil
}

// advance moves current values one frame along their ramps.
func (m *Mixer) advance() {
	if m.mixRemaining > 0 {
		m.mixRemaining--
		if m.mixRemaining == 0 {
			m.curMix = m.targetMix
		} else {
			m.curMix += m.mixStep
		}
	}

	if m.volRemaining > 0 {
		m.volRemaining--
		if m.volRemaining == 0 {
			m.curVol = m.targetVol
		} else {
			m.curVol += m.volStep
		}
	}
}
