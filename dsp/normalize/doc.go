// SPDX-License-Identifier: EPL-2.0

// Package normalize computes export gains: peak normalization to a
// linear target, RMS normalization to a dBFS target, or none. Silent
// input always yields unity gain, never NaN or Inf.
package normalize
