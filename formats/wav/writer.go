// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/utils"
)

// WriteBuffer writes buf as a PCM WAV file at the given bit depth
// (16 or 24). Samples outside [-1,1] are clamped.
func WriteBuffer(w io.WriteSeeker, buf *audio.Buffer, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return ErrInvalidBitDepth
	}
	if len(buf.Data) == 0 {
		return audio.ErrEmptyBuffer
	}

	enc := gowav.NewEncoder(w, buf.SampleRate, bitDepth, buf.Channels, 1)

	// Convert in chunks to keep peak memory flat on long buffers.
	const chunkFrames = 8192
	chunk := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		SourceBitDepth: bitDepth,
	}

	samplesPerChunk := chunkFrames * buf.Channels
	data := make([]int, 0, samplesPerChunk)

	for start := 0; start < len(buf.Data); start += samplesPerChunk {
		end := min(start+samplesPerChunk, len(buf.Data))

		data = data[:0]
		for _, v := range buf.Data[start:end] {
			data = append(data, utils.FloatToPCM(v, bitDepth))
		}

		chunk.Data = data
		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
