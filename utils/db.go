// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DBToLinear converts a decibel value to a linear amplitude ratio.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude ratio to decibels.
// Returns -Inf for zero or negative input.
func LinearToDB(lin float64) float64 {
	if lin <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(lin)
}
