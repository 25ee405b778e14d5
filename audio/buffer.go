// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"time"
)

// Buffer is a fully decoded chunk of audio: interleaved float64 samples
// tagged with sample rate and channel count. Buffers are treated as
// read-only once handed to another component; stages that change gain or
// layout return a new Buffer instead of mutating the one they were given.
type Buffer struct {
	Data       []float64
	SampleRate int
	Channels   int
}

// NewBuffer wraps data in a Buffer after validating the layout.
func NewBuffer(data []float64, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}
	if channels <= 0 || len(data)%channels != 0 {
		return nil, ErrInvalidLayout
	}

	return &Buffer{Data: data, SampleRate: sampleRate, Channels: channels}, nil
}

// Frames returns the per-channel sample count.
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}

	return len(b.Data) / b.Channels
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}

	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	data := make([]float64, len(b.Data))
	copy(data, b.Data)

	return &Buffer{Data: data, SampleRate: b.SampleRate, Channels: b.Channels}
}

// Channel extracts channel c as a newly allocated planar slice.
func (b *Buffer) Channel(c int) []float64 {
	frames := b.Frames()
	out := make([]float64, frames)

	for f := range frames {
		out[f] = b.Data[f*b.Channels+c]
	}

	return out
}

// FromChannels builds an interleaved Buffer from planar channel slices.
// All channels must have the same length.
func FromChannels(sampleRate int, chans ...[]float64) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}
	if len(chans) == 0 {
		return nil, ErrInvalidLayout
	}

	frames := len(chans[0])
	for _, ch := range chans[1:] {
		if len(ch) != frames {
			return nil, ErrInvalidLayout
		}
	}

	data := make([]float64, frames*len(chans))
	for c, ch := range chans {
		for f, v := range ch {
			data[f*len(chans)+c] = v
		}
	}

	return &Buffer{Data: data, SampleRate: sampleRate, Channels: len(chans)}, nil
}

// Peak returns the maximum absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, v := range b.Data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return peak
}

// Scaled returns a copy with every sample multiplied by gain.
func (b *Buffer) Scaled(gain float64) *Buffer {
	out := b.Clone()
	for i := range out.Data {
		out.Data[i] *= gain
	}

	return out
}

// Normalized returns a copy scaled so the peak reaches target. A silent
// buffer is returned unchanged rather than divided by zero.
func (b *Buffer) Normalized(target float64) *Buffer {
	peak := b.Peak()
	if peak == 0 {
		return b.Clone()
	}

	return b.Scaled(target / peak)
}

// Downmixed returns a mono copy, averaging channels per frame. A mono
// buffer is cloned as-is.
func (b *Buffer) Downmixed() *Buffer {
	if b.Channels == 1 {
		return b.Clone()
	}

	frames := b.Frames()
	data := make([]float64, frames)
	inv := 1.0 / float64(b.Channels)

	for f := range frames {
		var sum float64
		base := f * b.Channels
		for c := range b.Channels {
			sum += b.Data[base+c]
		}
		data[f] = sum * inv
	}

	return &Buffer{Data: data, SampleRate: b.SampleRate, Channels: 1}
}

// Collect drains a Source into a Buffer, converting to float64.
func Collect(src Source) (*Buffer, error) {
	samples, err := Drain(src)
	if err != nil {
		return nil, err
	}

	data := make([]float64, len(samples))
	for i, v := range samples {
		data[i] = float64(v)
	}

	channels := src.Channels()
	// A decoder may report more channels than a truncated stream carries;
	// drop the ragged tail frame rather than fail the whole file.
	if channels > 0 && len(data)%channels != 0 {
		data = data[:len(data)-len(data)%channels]
	}

	return NewBuffer(data, src.SampleRate(), channels)
}
