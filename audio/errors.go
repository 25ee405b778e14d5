// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrEmptyBuffer    = errors.New("buffer has no samples")
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrInvalidLayout  = errors.New("data length must be a multiple of channels")
)
