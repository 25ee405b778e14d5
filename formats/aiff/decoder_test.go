// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/internal/audiotest"
)

// encodeAIFF round-trips through the writer to produce test input.
func encodeAIFF(t *testing.T, buf *audio.Buffer, depth int) []byte {
	t.Helper()

	out := &audiotest.SeekBuffer{}
	if err := WriteBuffer(out, buf, depth); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}

	return out.Bytes()
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	data := make([]float64, 1000)
	for i := range data {
		data[i] = 0.4 * math.Sin(2*math.Pi*220*float64(i)/22050)
	}
	buf, err := audio.NewBuffer(data, 22050, 1)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	src, err := Decoder{}.Decode(bytes.NewReader(encodeAIFF(t, buf, 16)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 22050 || src.Channels() != 1 {
		t.Fatalf("format = %d Hz / %d ch, want 22050/1", src.SampleRate(), src.Channels())
	}

	got, err := audio.Drain(src)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("len = %d, want %d", len(got), len(data))
	}
	for i := range data {
		if math.Abs(float64(got[i])-data[i]) > 1e-4 {
			t.Fatalf("sample %d = %v, want ~%v", i, got[i], data[i])
		}
	}
}

func TestDecoder_Stereo24Bit(t *testing.T) {
	t.Parallel()

	buf, _ := audio.NewBuffer([]float64{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}, 48000, 2)

	src, err := Decoder{}.Decode(bytes.NewReader(encodeAIFF(t, buf, 24)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.Channels() != 2 || src.SampleRate() != 48000 {
		t.Errorf("format = %d Hz / %d ch, want 48000/2", src.SampleRate(), src.Channels())
	}
}

func TestDecoder_NotAIFF(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("RIFFnope, wrong container")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("error = %v, want ErrNotAiffFile", err)
	}
}

func TestWriteBuffer_InvalidDepth(t *testing.T) {
	t.Parallel()

	buf, _ := audio.NewBuffer([]float64{0}, 44100, 1)
	if err := WriteBuffer(&audiotest.SeekBuffer{}, buf, 12); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("error = %v, want ErrInvalidBitDepth", err)
	}
}
