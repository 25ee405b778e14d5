// SPDX-License-Identifier: EPL-2.0

package irtester

import (
	"fmt"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/dsp/conv"
	"github.com/lzkill/ir-tester/dsp/mix"
	"github.com/lzkill/ir-tester/store"
)

// Audition is a high-level convenience function: it decodes a DI
// recording and a cabinet impulse response, convolves them and blends
// dry against wet at the given ratio, returning the rendered buffer.
//
// The pipeline matches what the playback engine does live:
//  1. Decode both files (format picked by extension) and peak-normalize
//     them to full scale
//  2. Resample the IR to the DI's sample rate
//  3. Convolve channel-wise, then level the wet result to 0.9 peak
//  4. Blend: out = dry*(1-mixRatio) + wet*mixRatio, with the dry signal
//     taken as silence past its end so the reverberant tail rings out
//
// mixRatio 0 is fully dry, 1 fully wet. For interactive use with
// transport, EQ and ramped parameter changes, use the engine package
// instead.
func Audition(diPath, irPath string, mixRatio float64) (*audio.Buffer, error) {
	di, err := store.New(store.DIRegistry()).Decode(diPath)
	if err != nil {
		return nil, err
	}
	ir, err := store.New(store.IRRegistry()).Decode(irPath)
	if err != nil {
		return nil, err
	}

	di = di.Normalized(1.0)
	ir, err = audio.ResampleBuffer(ir.Normalized(1.0), di.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("resampling impulse response: %w", err)
	}

	wet, err := conv.ConvolveBuffers(di, ir)
	if err != nil {
		return nil, err
	}
	wet = wet.Normalized(1.0).Scaled(0.9)

	dry := layoutDry(di, wet.Channels)

	out := make([]float64, len(wet.Data))
	m := mix.New(wet.SampleRate, wet.Channels)
	m.SetMix(mixRatio)
	m.Snap()
	if err := m.Process(out, dry, wet.Data); err != nil {
		return nil, err
	}

	return audio.NewBuffer(out, wet.SampleRate, wet.Channels)
}

// layoutDry returns the DI's samples interleaved at the wet signal's
// channel count.
func layoutDry(di *audio.Buffer, channels int) []float64 {
	if di.Channels == channels {
		return di.Data
	}

	if di.Channels != 1 {
		di = di.Downmixed()
	}
	if channels == 1 {
		return di.Data
	}

	out := make([]float64, di.Frames()*channels)
	for f, v := range di.Data {
		for c := range channels {
			out[f*channels+c] = v
		}
	}

	return out
}
