// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/lzkill/ir-tester/audio"
)

// fakeMP3Reader emits canned 16-bit PCM through the mp3Reader seam.
type fakeMP3Reader struct {
	sampleRate int
	samples    []int16
	offset     int
}

func (f *fakeMP3Reader) SampleRate() int { return f.sampleRate }

func (f *fakeMP3Reader) Read(buf []byte) (int, error) {
	if f.offset >= len(f.samples) {
		return 0, io.EOF
	}

	samplesToRead := len(buf) / 2
	if remaining := len(f.samples) - f.offset; samplesToRead > remaining {
		samplesToRead = remaining
	}

	for i := range samplesToRead {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(f.samples[f.offset+i]))
	}
	f.offset += samplesToRead

	if f.offset >= len(f.samples) {
		return samplesToRead * 2, io.EOF
	}

	return samplesToRead * 2, nil
}

func newTestSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   2,
		buf:        make([]byte, 8192),
	}
}

func TestSource_ConvertsPCM16(t *testing.T) {
	t.Parallel()

	fake := &fakeMP3Reader{
		sampleRate: 44100,
		samples:    []int16{0, 16384, -16384, 32767},
	}
	src := newTestSource(fake)

	got, err := audio.Drain(src)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i := range want {
		if math.Abs(float64(got[i])-want[i]) > 1e-4 {
			t.Errorf("sample %d = %v, want ~%v", i, got[i], want[i])
		}
	}
}

func TestSource_AlwaysStereo(t *testing.T) {
	t.Parallel()

	src := newTestSource(&fakeMP3Reader{sampleRate: 48000})
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", src.SampleRate())
	}
}

func TestSource_PartialReads(t *testing.T) {
	t.Parallel()

	fake := &fakeMP3Reader{sampleRate: 44100, samples: make([]int16, 10)}
	src := newTestSource(fake)

	dst := make([]float32, 6)
	n, err := src.ReadSamples(dst)
	if n != 6 || err != nil {
		t.Fatalf("first read: n=%d err=%v, want 6, nil", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 4 || err != io.EOF {
		t.Fatalf("second read: n=%d err=%v, want 4, io.EOF", n, err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("this is not mpeg audio"))); err == nil {
		t.Fatal("Decode() succeeded on garbage input")
	}
}
