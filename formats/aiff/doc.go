// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes and writes AIFF PCM audio via go-audio/aiff,
// exposing decoded streams as audio.Source.
package aiff
