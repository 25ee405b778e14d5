// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/dsp/conv"
	"github.com/lzkill/ir-tester/player"
)

// headroom keeps the peak-normalized wet signal below full scale so the
// mixer and equalizer have room to work without clipping.
const headroom = 0.9

// convolvePair produces the wet buffer for a DI/IR pair: the IR is
// resampled to the DI's rate, convolved channel-wise, then leveled to
// peak 1.0 and scaled back by the headroom factor.
func convolvePair(di, ir *audio.Buffer) (*audio.Buffer, error) {
	ir, err := audio.ResampleBuffer(ir, di.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("resampling impulse response: %w", err)
	}

	wet, err := conv.ConvolveBuffers(di, ir)
	if err != nil {
		return nil, err
	}

	return wet.Normalized(1.0).Scaled(headroom), nil
}

// buildProgram assembles playback material from the dry DI and the
// precomputed wet buffer. The dry signal is laid out to the wet buffer's
// channel count so the mixer blends frame-aligned blocks; the wet tail
// beyond the DI's end plays against silence.
func buildProgram(di, wet *audio.Buffer) *player.Program {
	return &player.Program{
		Dry:        matchChannels(di, wet.Channels),
		Wet:        wet.Data,
		SampleRate: wet.SampleRate,
		Channels:   wet.Channels,
	}
}

// matchChannels returns buf's samples interleaved at the given channel
// count: duplicated when upmixing from mono, averaged when downmixing.
func matchChannels(buf *audio.Buffer, channels int) []float64 {
	if buf.Channels == channels {
		return buf.Data
	}

	if buf.Channels == 1 {
		out := make([]float64, buf.Frames()*channels)
		for f, v := range buf.Data {
			base := f * channels
			for c := range channels {
				out[base+c] = v
			}
		}

		return out
	}

	mono := buf.Downmixed()
	if channels == 1 {
		return mono.Data
	}

	return matchChannels(mono, channels)
}
