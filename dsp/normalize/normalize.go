// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"errors"
	"math"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/utils"
)

// Mode selects the normalization strategy.
type Mode int

const (
	// ModeNone applies no gain (pure copy).
	ModeNone Mode = iota
	// ModePeak scales the maximum absolute sample to the target peak.
	ModePeak
	// ModeRMS scales the signal energy to a target RMS level in dB.
	ModeRMS
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePeak:
		return "peak"
	case ModeRMS:
		return "rms"
	default:
		return "unknown"
	}
}

// Spec describes a normalization request.
type Spec struct {
	Mode Mode
	// TargetPeak is the linear peak target for ModePeak. Zero means full
	// scale (1.0).
	TargetPeak float64
	// TargetDB is the RMS target in dBFS for ModeRMS (e.g. -20).
	TargetDB float64
}

var (
	ErrEmptyInput  = errors.New("normalize: empty input")
	ErrInvalidMode = errors.New("normalize: invalid mode")
)

// ComputeGain returns the scalar gain that brings buf to the level the
// spec asks for. A silent buffer yields gain 1.0 in every mode; the
// result is always finite.
func ComputeGain(buf *audio.Buffer, spec Spec) (float64, error) {
	if len(buf.Data) == 0 {
		return 0, ErrEmptyInput
	}

	switch spec.Mode {
	case ModeNone:
		return 1.0, nil

	case ModePeak:
		peak := buf.Peak()
		if peak == 0 {
			return 1.0, nil
		}

		target := spec.TargetPeak
		if target == 0 {
			target = 1.0
		}

		return target / peak, nil

	case ModeRMS:
		rms := rmsLevel(buf.Data)
		if rms == 0 {
			return 1.0, nil
		}

		return utils.DBToLinear(spec.TargetDB - utils.LinearToDB(rms)), nil

	default:
		return 0, ErrInvalidMode
	}
}

// Apply returns a copy of buf with the gain applied. A single scalar
// multiply: relative spectral content is untouched.
func Apply(buf *audio.Buffer, gain float64) *audio.Buffer {
	return buf.Scaled(gain)
}

// Normalize computes and applies the gain in one step.
func Normalize(buf *audio.Buffer, spec Spec) (*audio.Buffer, float64, error) {
	gain, err := ComputeGain(buf, spec)
	if err != nil {
		return nil, 0, err
	}

	return Apply(buf, gain), gain, nil
}

// rmsLevel returns sqrt(mean(x^2)) over all samples and channels.
func rmsLevel(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(data)))
}
