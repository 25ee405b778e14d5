// SPDX-License-Identifier: EPL-2.0

package conv

import "errors"

var (
	ErrEmptyInput      = errors.New("conv: empty input")
	ErrEmptyKernel     = errors.New("conv: empty kernel")
	ErrLengthMismatch  = errors.New("conv: buffer length mismatch")
	ErrChannelMismatch = errors.New("conv: channel counts cannot be reconciled")
	ErrRateMismatch    = errors.New("conv: sample rates differ; resample first")
)

// directCostThreshold is the multiply-add budget below which direct
// convolution wins over the FFT path. Above it, overlap-add is used.
// Both paths produce the same result within float tolerance; this is a
// speed knob, not a semantic one.
const directCostThreshold = 4 << 20

// Direct performs time-domain linear convolution of signal and kernel.
// The result has length len(signal) + len(kernel) - 1, time-aligned so
// result[0] is signal[0] convolved with kernel[0].
func Direct(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(signal)+len(kernel)-1)
	DirectTo(result, signal, kernel)

	return result, nil
}

// DirectTo performs direct convolution into a pre-allocated destination
// of length len(signal) + len(kernel) - 1.
func DirectTo(dst, signal, kernel []float64) {
	for i := range dst {
		dst[i] = 0
	}

	for i, s := range signal {
		if s == 0 {
			continue
		}
		for j, k := range kernel {
			dst[i+j] += s * k
		}
	}
}

// Convolve performs linear convolution, selecting direct or FFT
// overlap-add from the multiply-add cost of the pair.
func Convolve(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	// Keep the longer operand as the signal; convolution commutes.
	if len(kernel) > len(signal) {
		signal, kernel = kernel, signal
	}

	if len(signal)*len(kernel) <= directCostThreshold {
		return Direct(signal, kernel)
	}

	return OverlapAddConvolve(signal, kernel)
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}

	return p
}
