// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/lzkill/ir-tester/utils"
)

// Resampler streams from src to a target sample rate using cubic
// (Catmull-Rom) interpolation over a sliding 4-frame window. It works on
// interleaved samples and preserves the channel count. A simple one-pole
// low-pass is applied when downsampling to tame aliasing.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	step     float64 // source frames consumed per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2;
	// interpolation happens between window[1] and window[2].
	window    [4][]float32
	hasWindow [4]bool

	// Fractional position between window[1] and window[2].
	pos float64

	frameBuf []float32
	eof      bool

	// One-pole low-pass state, one value per channel.
	lowpass     []float32
	useLowpass  bool
	lowpassCoef float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:        src,
		srcRate:    float64(src.SampleRate()),
		dstRate:    float64(dstRate),
		step:       step,
		channels:   channels,
		frameBuf:   make([]float32, channels),
		useLowpass: step > 1.0,
		lowpass:    make([]float32, channels),
	}

	if r.useLowpass {
		// Crude single-pole smoothing; the short IRs and DIs handled here
		// never move far from the canonical rates, so a full polyphase
		// design is not warranted.
		r.lowpassCoef = 0.5
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// shiftWindow reads one source frame into the tail of the window.
func (r *Resampler) shiftWindow() error {
	if r.eof {
		return io.EOF
	}

	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.hasWindow[0] = r.hasWindow[1]
	r.hasWindow[1] = r.hasWindow[2]
	r.hasWindow[2] = r.hasWindow[3]

	n, err := r.src.ReadSamples(r.frameBuf)
	if n > 0 {
		copy(r.window[3], r.frameBuf[:n])
		r.hasWindow[3] = true

		if r.useLowpass {
			for c := range r.channels {
				r.window[3][c] = r.lowpassCoef*r.window[3][c] + (1-r.lowpassCoef)*r.lowpass[c]
				r.lowpass[c] = r.window[3][c]
			}
		}
	} else {
		r.hasWindow[3] = false
	}

	if err == io.EOF {
		r.eof = true
		if !r.hasWindow[3] {
			return io.EOF
		}
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// prime fills the interpolation window with the first source frames.
func (r *Resampler) prime() error {
	for i := range 4 {
		n, err := r.src.ReadSamples(r.frameBuf)
		if n > 0 {
			copy(r.window[i], r.frameBuf[:n])
			r.hasWindow[i] = true

			if i == 0 && r.useLowpass {
				copy(r.lowpass, r.frameBuf[:n])
			}
		}

		if err == io.EOF {
			r.eof = true
			if i == 0 {
				return io.EOF
			}
			// Pad the window with the last valid frame.
			for j := i; j < 4; j++ {
				copy(r.window[j], r.window[i-1])
				r.hasWindow[j] = true
			}

			return nil
		} else if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// ReadSamples produces interleaved samples at the target rate. dst length
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.hasWindow[1] {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesWanted := len(dst) / r.channels

	for written < framesWanted {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shiftWindow(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}

					return written * r.channels, io.EOF
				}

				return written * r.channels, err
			}
		}

		if !r.hasWindow[1] || !r.hasWindow[2] {
			if written == 0 {
				return 0, io.EOF
			}

			return written * r.channels, io.EOF
		}

		frac := float32(r.pos)

		for c := range r.channels {
			y1 := r.window[1][c]
			y2 := r.window[2][c]

			y0 := y1
			if r.hasWindow[0] {
				y0 = r.window[0][c]
			}

			y3 := y2
			if r.hasWindow[3] {
				y3 = r.window[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, frac)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
