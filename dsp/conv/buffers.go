// SPDX-License-Identifier: EPL-2.0

package conv

import (
	"github.com/lzkill/ir-tester/audio"
)

// ConvolveBuffers convolves a DI buffer with an IR buffer channel-wise.
// Both buffers must share a sample rate (the resampler runs first in the
// pipeline). Channel reconciliation:
//
//   - equal channel counts: convolved channel by channel
//   - mono IR, multichannel DI: the IR is applied to every DI channel
//   - mono DI, multichannel IR: the DI feeds every IR channel
//   - anything else (e.g. a 3-channel IR against stereo DI) is rejected
//
// The result has len(di) + len(ir) - 1 frames and the wider of the two
// channel counts. No normalization is applied here; gain staging belongs
// to the mixer and normalizer.
func ConvolveBuffers(di, ir *audio.Buffer) (*audio.Buffer, error) {
	if len(di.Data) == 0 {
		return nil, ErrEmptyInput
	}
	if len(ir.Data) == 0 {
		return nil, ErrEmptyKernel
	}
	if di.SampleRate != ir.SampleRate {
		return nil, ErrRateMismatch
	}

	outChannels := max(di.Channels, ir.Channels)
	if di.Channels != ir.Channels && di.Channels != 1 && ir.Channels != 1 {
		return nil, ErrChannelMismatch
	}

	outs := make([][]float64, outChannels)

	for c := range outChannels {
		diChan := channelOrBroadcast(di, c)
		irChan := channelOrBroadcast(ir, c)

		out, err := Convolve(diChan, irChan)
		if err != nil {
			return nil, err
		}
		outs[c] = out
	}

	return audio.FromChannels(di.SampleRate, outs...)
}

func channelOrBroadcast(buf *audio.Buffer, c int) []float64 {
	if buf.Channels == 1 {
		return buf.Channel(0)
	}

	return buf.Channel(c)
}
