// SPDX-License-Identifier: EPL-2.0

// Package audio provides the shared audio primitives of ir-tester: the
// streaming Source interface implemented by every container decoder, the
// decoder Registry the sample store selects from by file extension, the
// in-memory Buffer type that all DSP stages operate on, and rate/layout
// conversion (cubic Resampler, MonoMixer).
//
// The convention throughout is float audio in [-1, 1]: float32 while
// streaming out of a decoder, float64 once collected into a Buffer for
// processing. Buffers are read-only after production; transformations
// return new buffers.
package audio
