// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC audio via mewkiz/flac, exposing decoded
// streams as audio.Source. Decode only; FLAC-sourced IRs are exported
// as WAV.
package flac
