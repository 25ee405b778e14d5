// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III audio via hajimehoshi/go-mp3.
// MP3 is accepted for DI recordings only; IRs come from lossless
// containers.
package mp3
