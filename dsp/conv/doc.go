// SPDX-License-Identifier: EPL-2.0

// Package conv implements linear convolution of DI signals against
// impulse responses.
//
// Two strategies are available: direct time-domain convolution for small
// workloads and FFT-based overlap-add for everything else. Convolve
// selects between them from the multiply-add cost of the pair; both
// produce the full result of length len(signal)+len(kernel)-1 with no
// implicit latency.
//
// ConvolveBuffers lifts the sample-level routines to audio.Buffer,
// handling mono/stereo channel broadcast.
package conv
