// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds shared test doubles: synthetic audio sources
// and an in-memory seekable buffer for container writers.
package audiotest

import (
	"io"
	"math"
)

// MockSource generates interleaved samples from a waveform function. It
// satisfies the audio.Source interface without importing it, so every
// package can use it without cycles.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	pos         int
	waveform    func(frame, channel int) float32
}

// NewMockSource creates a source producing totalFrames frames of the
// given waveform.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource generates all-zero frames.
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 { return 0 })
}

// NewSineSource generates a sine wave at the given frequency, identical
// on every channel.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource generates the same value in every sample.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 { return value })
}

// NewDecaySource generates a unit impulse followed by an exponential
// decay, a stand-in for a short impulse response.
func NewDecaySource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame, _ int) float32 {
		return float32(math.Exp(-float64(frame) / float64(totalFrames) * 6))
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds the source for re-reading.
func (m *MockSource) Reset() { m.pos = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.totalFrames {
		return 0, io.EOF
	}

	frames := len(dst) / m.channels
	if remaining := m.totalFrames - m.pos; frames > remaining {
		frames = remaining
	}

	for f := range frames {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.pos+f, c)
		}
	}
	m.pos += frames

	n := frames * m.channels
	if m.pos >= m.totalFrames {
		return n, io.EOF
	}

	return n, nil
}
