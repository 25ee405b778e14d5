// SPDX-License-Identifier: EPL-2.0

// Package eq implements the 10-band graphic equalizer: RBJ peaking
// biquads at the ISO center frequencies 31 Hz to 16 kHz, Q 1.41, gains
// bounded to plus/minus 12 dB, cascaded in series with per-channel
// delay-line state threaded across blocks.
package eq
