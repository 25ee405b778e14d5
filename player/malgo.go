// SPDX-License-Identifier: EPL-2.0

package player

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

// MalgoOutput plays through the system's default output device via
// miniaudio.
type MalgoOutput struct {
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	scratch  []float32
	channels int
}

// NewMalgoOutput initializes the audio backend. Errors here mean no
// usable audio subsystem; the player surfaces them as
// ErrDeviceUnavailable on the first transport command.
func NewMalgoOutput() (*MalgoOutput, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	return &MalgoOutput{ctx: ctx}, nil
}

func (o *MalgoOutput) Open(sampleRate, channels, blockFrames int, fn BlockFunc) error {
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatF32
	config.Playback.Channels = uint32(channels)
	config.SampleRate = uint32(sampleRate)
	config.PeriodSizeInFrames = uint32(blockFrames)
	config.PerformanceProfile = malgo.LowLatency

	o.channels = channels
	o.scratch = make([]float32, blockFrames*channels*2)

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frames uint32) {
			samples := int(frames) * o.channels
			if samples > len(o.scratch) {
				// Device asked for more than a period; render what fits
				// rather than allocate on the audio thread.
				samples = len(o.scratch)
			}

			block := o.scratch[:samples]
			fn(block)

			for i, v := range block {
				binary.NativeEndian.PutUint32(out[i*4:], math.Float32bits(v))
			}
			for i := samples * 4; i < len(out); i += 4 {
				binary.NativeEndian.PutUint32(out[i:], 0)
			}
		},
	}

	device, err := malgo.InitDevice(o.ctx.Context, config, callbacks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	o.device = device

	return nil
}

func (o *MalgoOutput) Start() error {
	if o.device == nil {
		return ErrDeviceUnavailable
	}

	if err := o.device.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	return nil
}

func (o *MalgoOutput) Stop() error {
	if o.device == nil {
		return nil
	}

	if err := o.device.Stop(); err != nil {
		return fmt.Errorf("stopping device: %w", err)
	}

	return nil
}

func (o *MalgoOutput) Close() error {
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}

	if o.ctx != nil {
		err := o.ctx.Uninit()
		o.ctx.Free()
		o.ctx = nil
		if err != nil {
			return fmt.Errorf("closing audio context: %w", err)
		}
	}

	return nil
}
