// SPDX-License-Identifier: EPL-2.0

package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/lzkill/ir-tester/audio"
)

var (
	ErrEmptyInput        = errors.New("spectrum: empty input")
	ErrInvalidWindowSize = errors.New("spectrum: window size must be a power of two >= 16")
)

// Magnitudes computes a Hann-windowed magnitude spectrum of buf for
// visualization. Multichannel buffers are downmixed to mono first. The
// signal is cut into half-overlapping windows of windowSize samples and
// the per-bin magnitudes are averaged, giving windowSize/2 bins from DC
// to Nyquist.
//
// Each call computes a fresh snapshot; nothing is cached or updated
// incrementally. There are no real-time constraints here.
func Magnitudes(buf *audio.Buffer, windowSize int) ([]float64, error) {
	if len(buf.Data) == 0 {
		return nil, ErrEmptyInput
	}
	if windowSize < 16 || windowSize&(windowSize-1) != 0 {
		return nil, ErrInvalidWindowSize
	}

	mono := buf.Downmixed().Data

	plan, err := algofft.NewPlan64(windowSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: creating FFT plan: %w", err)
	}

	window := hann(windowSize)
	bins := windowSize / 2
	acc := make([]float64, bins)
	frame := make([]complex128, windowSize)

	hop := windowSize / 2
	frames := 0

	for start := 0; start == 0 || start+windowSize <= len(mono); start += hop {
		for i := range windowSize {
			var v float64
			if start+i < len(mono) {
				v = mono[start+i]
			}
			frame[i] = complex(v*window[i], 0)
		}

		if err := plan.Forward(frame, frame); err != nil {
			return nil, fmt.Errorf("spectrum: forward FFT: %w", err)
		}

		for i := range bins {
			acc[i] += cmplx.Abs(frame[i])
		}
		frames++
	}

	for i := range acc {
		acc[i] /= float64(frames)
	}

	return acc, nil
}

// MagnitudesDB converts Magnitudes output to decibels normalized so the
// strongest bin sits at 0 dB, the shape the spectrum display plots.
func MagnitudesDB(buf *audio.Buffer, windowSize int) ([]float64, error) {
	mags, err := Magnitudes(buf, windowSize)
	if err != nil {
		return nil, err
	}

	var maxMag float64
	for _, m := range mags {
		if m > maxMag {
			maxMag = m
		}
	}
	if maxMag == 0 {
		maxMag = 1
	}

	const floor = 1e-10

	out := make([]float64, len(mags))
	for i, m := range mags {
		if m < floor {
			m = floor
		}
		out[i] = 20 * math.Log10(m/maxMag)
	}

	return out, nil
}

// BinFrequency returns the center frequency in Hz of bin i for the given
// window size and sample rate.
func BinFrequency(i, windowSize, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(windowSize)
}

func hann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return w
}
