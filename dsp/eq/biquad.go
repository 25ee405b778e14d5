// SPDX-License-Identifier: EPL-2.0

package eq

import "math"

// coefficients of a single second-order section, a0 normalized to 1.
type coefficients struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// peaking designs an RBJ cookbook peaking filter. At gainDB == 0 the
// numerator equals the denominator, so the section is an exact identity
// regardless of its delay-line contents.
func peaking(freq, gainDB, q, sampleRate float64) coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	a := math.Pow(10, gainDB/40)
	alpha := math.Sin(w0) / (2 * q)
	cw := math.Cos(w0)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return coefficients{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// section is one biquad with Direct Form II Transposed state.
type section struct {
	coefficients

	d0, d1 float64
}

// processStrided filters every channels-th sample of buf starting at
// offset, so interleaved multichannel blocks can be filtered with one
// state per channel.
func (s *section) processStrided(buf []float64, offset, stride int) {
	b0, b1, b2 := s.b0, s.b1, s.b2
	a1, a2 := s.a1, s.a2
	d0, d1 := s.d0, s.d1

	for i := offset; i < len(buf); i += stride {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

func (s *section) reset() {
	s.d0 = 0
	s.d1 = 0
}
