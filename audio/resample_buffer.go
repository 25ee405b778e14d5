// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ResampleBuffer returns buf converted to the given sample rate. The
// channel layout is preserved. A buffer already at the target rate is
// returned as-is (no copy); callers treat buffers as read-only, so
// sharing is safe.
func ResampleBuffer(buf *Buffer, dstRate int) (*Buffer, error) {
	if dstRate <= 0 {
		return nil, ErrInvalidRate
	}
	if len(buf.Data) == 0 {
		return nil, ErrEmptyBuffer
	}
	if buf.SampleRate == dstRate {
		return buf, nil
	}

	r := NewResampler(NewBufferSource(buf), dstRate)

	// Pre-size from the rate ratio; the cubic window can add or drop a
	// frame at the edges.
	estimated := int(float64(len(buf.Data))*float64(dstRate)/float64(buf.SampleRate)) + 4*buf.Channels
	data := make([]float64, 0, estimated)
	tmp := make([]float32, 4096-(4096%buf.Channels))

	for {
		n, err := r.ReadSamples(tmp)
		for _, v := range tmp[:n] {
			data = append(data, float64(v))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resample: %w", err)
		}
	}

	return NewBuffer(data, dstRate, buf.Channels)
}
