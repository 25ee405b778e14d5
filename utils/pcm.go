// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a [-1,1] sample to 16-bit PCM with clamping.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 on the positive side to avoid overflow.
	return int16(x * 32767.0)
}

// FloatToPCM converts a [-1,1] float64 sample to a signed integer sample
// of the given bit depth (8, 16, 24 or 32), with clamping.
func FloatToPCM(x float64, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	max := float64(int64(1)<<(bitDepth-1)) - 1

	return int(x * max)
}

// PCMToFloat converts a signed integer sample of the given bit depth to
// a float64 in [-1,1].
func PCMToFloat(v int, bitDepth int) float64 {
	scale := float64(int64(1) << (bitDepth - 1))

	return float64(v) / scale
}
