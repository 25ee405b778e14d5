// SPDX-License-Identifier: EPL-2.0

// Package player renders prepared dry/wet program material to an audio
// output in real time. Control commands (transport, mix, volume, EQ)
// communicate with the device callback only through atomic snapshots,
// so the render path never blocks on the control plane.
package player
