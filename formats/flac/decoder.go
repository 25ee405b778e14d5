// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/lzkill/ir-tester/audio"
)

// flacReader is the subset of flac.Stream used here, split out so tests
// can substitute a fake.
type flacReader interface {
	ParseNext() (*flacFrame, error)
}

// flacFrame carries one parsed frame as planar integer channels.
type flacFrame struct {
	channels [][]int32
}

// streamReader adapts *flac.Stream to flacReader.
type streamReader struct {
	stream *flac.Stream
}

func (r *streamReader) ParseNext() (*flacFrame, error) {
	frame, err := r.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	channels := make([][]int32, len(frame.Subframes))
	for i, sf := range frame.Subframes {
		channels[i] = sf.Samples
	}

	return &flacFrame{channels: channels}, nil
}

type source struct {
	dec        flacReader
	sampleRate int
	channels   int
	bitDepth   int

	// Interleaved samples from the last parsed frame not yet handed out.
	pending []float32
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	written := 0
	scale := float32(int64(1) << (s.bitDepth - 1))

	for written < len(dst) {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}

			frame, err := s.dec.ParseNext()
			if err != nil {
				if errors.Is(err, io.EOF) {
					s.eof = true
					break
				}

				return written, fmt.Errorf("parsing flac frame: %w", err)
			}

			s.interleave(frame, scale)
		}

		n := copy(dst[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 {
		return 0, io.EOF
	}
	if s.eof && len(s.pending) == 0 {
		return written, io.EOF
	}

	return written, nil
}

func (s *source) interleave(frame *flacFrame, scale float32) {
	if len(frame.channels) == 0 {
		return
	}

	blockSize := len(frame.channels[0])
	if cap(s.pending) < blockSize*s.channels {
		s.pending = make([]float32, 0, blockSize*s.channels)
	}
	s.pending = s.pending[:0]

	for f := range blockSize {
		for c := range s.channels {
			s.pending = append(s.pending, float32(frame.channels[c][f])/scale)
		}
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := stream.Info
	if info.NChannels == 0 {
		return nil, ErrUnsupportedFlacLayout
	}

	return &source{
		dec:        &streamReader{stream: stream},
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
	}, nil
}
