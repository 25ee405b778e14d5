// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// BufferSource replays an in-memory Buffer as a streaming Source. It is
// what lets decoded assets flow back through the streaming resampler.
type BufferSource struct {
	buf *Buffer
	pos int // in samples, not frames
}

func NewBufferSource(buf *Buffer) *BufferSource {
	return &BufferSource{buf: buf}
}

func (s *BufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *BufferSource) Channels() int   { return s.buf.Channels }
func (s *BufferSource) BufSize() int    { return 4096 }
func (s *BufferSource) Close() error    { return nil }

// Rewind resets the read position to the start.
func (s *BufferSource) Rewind() { s.pos = 0 }

func (s *BufferSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.buf.Channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if s.pos >= len(s.buf.Data) {
		return 0, io.EOF
	}

	n := len(dst)
	if remaining := len(s.buf.Data) - s.pos; n > remaining {
		n = remaining
	}

	for i := range n {
		dst[i] = float32(s.buf.Data[s.pos+i])
	}
	s.pos += n

	if s.pos >= len(s.buf.Data) {
		return n, io.EOF
	}

	return n, nil
}
