// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/utils"
)

// WriteBuffer writes buf as a PCM AIFF file at the given bit depth
// (16 or 24). Samples outside [-1,1] are clamped.
func WriteBuffer(w io.WriteSeeker, buf *audio.Buffer, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return ErrInvalidBitDepth
	}
	if len(buf.Data) == 0 {
		return audio.ErrEmptyBuffer
	}

	enc := goaiff.NewEncoder(w, buf.SampleRate, bitDepth, buf.Channels)

	data := make([]int, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = utils.FloatToPCM(v, bitDepth)
	}

	chunk := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		SourceBitDepth: bitDepth,
		Data:           data,
	}

	if err := enc.Write(chunk); err != nil {
		return fmt.Errorf("writing aiff samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing aiff: %w", err)
	}

	return nil
}
