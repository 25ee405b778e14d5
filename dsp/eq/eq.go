// SPDX-License-Identifier: EPL-2.0

package eq

import (
	"errors"

	"github.com/lzkill/ir-tester/audio"
)

// NumBands is the number of graphic EQ bands.
const NumBands = 10

// Bands holds the ISO center frequencies of the 10-band layout, in Hz.
var Bands = [NumBands]float64{31, 62, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

const (
	// GainMinDB and GainMaxDB bound each band's gain.
	GainMinDB = -12.0
	GainMaxDB = 12.0

	// bandQ gives roughly one-octave bandwidth per band.
	bandQ = 1.41
)

var ErrInvalidBand = errors.New("eq: band index out of range")

// Graphic is a 10-band graphic equalizer: one RBJ peaking biquad per
// band, cascaded in series, with independent delay-line state per
// channel. The state is carried across Process calls, so feeding a
// signal block-by-block produces exactly the same output as filtering it
// in one call.
//
// Graphic is not safe for concurrent use; the playback engine owns one
// instance on the audio thread and applies gain changes through
// SetGain, which preserves state to avoid discontinuities.
type Graphic struct {
	sampleRate float64
	channels   int
	gains      [NumBands]float64
	enabled    bool

	// sections[band][channel]
	sections [NumBands][]section
}

// New creates a flat (0 dB everywhere), enabled equalizer.
func New(sampleRate float64, channels int) *Graphic {
	g := &Graphic{
		sampleRate: sampleRate,
		channels:   channels,
		enabled:    true,
	}

	for b := range NumBands {
		g.sections[b] = make([]section, channels)
	}
	g.designAll()

	return g
}

// SetGain updates one band's gain in dB, clamped to [GainMinDB,
// GainMaxDB]. Delay-line state is preserved so the change is free of
// structural discontinuities; the playback engine's ramp handles the
// audible transition.
func (g *Graphic) SetGain(band int, gainDB float64) error {
	if band < 0 || band >= NumBands {
		return ErrInvalidBand
	}

	g.gains[band] = clampGain(gainDB)
	g.design(band)

	// A zero-gain band is skipped by Process; clear its state so a later
	// boost does not replay a stale tail.
	if g.gains[band] == 0 {
		for c := range g.sections[band] {
			g.sections[band][c].reset()
		}
	}

	return nil
}

// SetGains replaces all band gains at once.
func (g *Graphic) SetGains(gains [NumBands]float64) {
	for b, gain := range gains {
		g.gains[b] = clampGain(gain)
	}
	g.designAll()
}

// Gains returns the current band gains in dB.
func (g *Graphic) Gains() [NumBands]float64 { return g.gains }

// SetEnabled toggles the equalizer. Disabled means bypass; since a
// zero-gain peaking section is an exact identity, enabling a flat EQ and
// bypassing it are indistinguishable in both gain and phase.
func (g *Graphic) SetEnabled(enabled bool) { g.enabled = enabled }

// Enabled reports whether the equalizer is active.
func (g *Graphic) Enabled() bool { return g.enabled }

// Channels returns the channel count the equalizer was built for.
func (g *Graphic) Channels() int { return g.channels }

// Reset zeroes all delay lines. Used when the active source switches.
func (g *Graphic) Reset() {
	for b := range g.sections {
		for c := range g.sections[b] {
			g.sections[b][c].reset()
		}
	}
}

// Process filters an interleaved block in place. Bypassed when disabled.
func (g *Graphic) Process(block []float64) {
	if !g.enabled {
		return
	}

	for b := range g.sections {
		// Skip exact-identity bands; they contribute nothing and their
		// state stays zero once reset.
		if g.gains[b] == 0 {
			continue
		}
		for c := range g.channels {
			g.sections[b][c].processStrided(block, c, g.channels)
		}
	}
}

func (g *Graphic) design(band int) {
	c := peaking(Bands[band], g.gains[band], bandQ, g.sampleRate)
	for ch := range g.sections[band] {
		g.sections[band][ch].coefficients = c
	}
}

func (g *Graphic) designAll() {
	for b := range NumBands {
		g.design(b)
	}
}

func clampGain(gainDB float64) float64 {
	if gainDB < GainMinDB {
		return GainMinDB
	}
	if gainDB > GainMaxDB {
		return GainMaxDB
	}

	return gainDB
}

// Apply equalizes a whole buffer offline and returns the result as a new
// buffer, leaving the input untouched. Used for non-real-time paths.
func Apply(buf *audio.Buffer, gains [NumBands]float64) *audio.Buffer {
	out := buf.Clone()

	g := New(float64(buf.SampleRate), buf.Channels)
	g.SetGains(gains)
	g.Process(out.Data)

	return out
}
