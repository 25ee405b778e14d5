// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE PCM audio. Decoding accepts
// 8/16/24/32-bit PCM at any channel count and exposes it as an
// audio.Source; writing produces 16- or 24-bit PCM, which is what IR
// export uses.
package wav
