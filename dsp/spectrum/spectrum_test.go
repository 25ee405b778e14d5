// SPDX-License-Identifier: EPL-2.0

package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/lzkill/ir-tester/audio"
)

func sineBuffer(t *testing.T, rate int, freq float64, frames int) *audio.Buffer {
	t.Helper()

	data := make([]float64, frames)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}

	buf, err := audio.NewBuffer(data, rate, 1)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	return buf
}

func TestMagnitudes_SinePeakBin(t *testing.T) {
	t.Parallel()

	const rate = 8192
	const windowSize = 1024

	// Put the sine exactly on a bin center: bin 64 = 64 * 8192/1024 Hz.
	freq := BinFrequency(64, windowSize, rate)
	buf := sineBuffer(t, rate, freq, rate)

	mags, err := Magnitudes(buf, windowSize)
	if err != nil {
		t.Fatalf("Magnitudes() error = %v", err)
	}

	if len(mags) != windowSize/2 {
		t.Fatalf("len(mags) = %d, want %d", len(mags), windowSize/2)
	}

	peakBin := 0
	for i, m := range mags {
		if m > mags[peakBin] {
			peakBin = i
		}
	}
	if peakBin != 64 {
		t.Errorf("peak bin = %d, want 64", peakBin)
	}
}

func TestMagnitudesDB_PeakAtZero(t *testing.T) {
	t.Parallel()

	buf := sineBuffer(t, 8192, 1000, 8192)

	dbs, err := MagnitudesDB(buf, 512)
	if err != nil {
		t.Fatalf("MagnitudesDB() error = %v", err)
	}

	var maxDB float64 = math.Inf(-1)
	for _, v := range dbs {
		if v > maxDB {
			maxDB = v
		}
		if v > 0 {
			t.Fatalf("bin above 0 dB: %v", v)
		}
	}
	if maxDB != 0 {
		t.Errorf("max = %v dB, want exactly 0", maxDB)
	}
}

func TestMagnitudes_ShortBufferPadded(t *testing.T) {
	t.Parallel()

	// Shorter than one window: zero-padded, still one full frame of bins.
	buf := sineBuffer(t, 44100, 440, 100)

	mags, err := Magnitudes(buf, 256)
	if err != nil {
		t.Fatalf("Magnitudes() error = %v", err)
	}
	if len(mags) != 128 {
		t.Errorf("len(mags) = %d, want 128", len(mags))
	}
}

func TestMagnitudes_Errors(t *testing.T) {
	t.Parallel()

	empty := &audio.Buffer{SampleRate: 44100, Channels: 1}
	if _, err := Magnitudes(empty, 256); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty error = %v, want ErrEmptyInput", err)
	}

	buf := sineBuffer(t, 44100, 440, 512)
	for _, size := range []int{0, 8, 100, -256} {
		if _, err := Magnitudes(buf, size); !errors.Is(err, ErrInvalidWindowSize) {
			t.Errorf("windowSize %d error = %v, want ErrInvalidWindowSize", size, err)
		}
	}
}

func TestBinFrequency(t *testing.T) {
	t.Parallel()

	if got := BinFrequency(0, 1024, 44100); got != 0 {
		t.Errorf("bin 0 = %v Hz, want 0", got)
	}
	if got := BinFrequency(512, 1024, 44100); got != 22050 {
		t.Errorf("Nyquist bin = %v Hz, want 22050", got)
	}
}

func TestMagnitudes_StereoDownmix(t *testing.T) {
	t.Parallel()

	// Identical sine on both channels; downmix must not cancel it.
	const rate = 8192
	frames := rate
	data := make([]float64, frames*2)
	for f := range frames {
		v := math.Sin(2 * math.Pi * 500 * float64(f) / rate)
		data[f*2] = v
		data[f*2+1] = v
	}

	buf, err := audio.NewBuffer(data, rate, 2)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	mags, err := Magnitudes(buf, 512)
	if err != nil {
		t.Fatalf("Magnitudes() error = %v", err)
	}

	var total float64
	for _, m := range mags {
		total += m
	}
	if total == 0 {
		t.Error("downmixed stereo spectrum is all zero")
	}
}
