// SPDX-License-Identifier: EPL-2.0

// Package spectrum computes Hann-windowed magnitude spectra of decoded
// buffers for the frequency-response display. Offline only; recomputed
// from scratch whenever the selected IR changes.
package spectrum
