// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/lzkill/ir-tester/audio"
)

// fakeStream feeds canned frames through the flacReader seam.
type fakeStream struct {
	frames []*flacFrame
	pos    int
	err    error
}

func (f *fakeStream) ParseNext() (*flacFrame, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pos >= len(f.frames) {
		return nil, io.EOF
	}

	frame := f.frames[f.pos]
	f.pos++

	return frame, nil
}

func newTestSource(dec flacReader, channels, bitDepth int) *source {
	return &source{
		dec:        dec,
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
	}
}

func TestSource_InterleavesPlanarFrames(t *testing.T) {
	t.Parallel()

	// Planar stereo: L=[100,200], R=[300,400] -> interleaved L R L R.
	stream := &fakeStream{frames: []*flacFrame{
		{channels: [][]int32{{100, 200}, {300, 400}}},
	}}
	src := newTestSource(stream, 2, 16)

	got, err := audio.Drain(src)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	want := []int32{100, 300, 200, 400}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		expect := float64(w) / 32768.0
		if math.Abs(float64(got[i])-expect) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], expect)
		}
	}
}

func TestSource_SpansMultipleFrames(t *testing.T) {
	t.Parallel()

	stream := &fakeStream{frames: []*flacFrame{
		{channels: [][]int32{{1, 2, 3}}},
		{channels: [][]int32{{4, 5}}},
	}}
	src := newTestSource(stream, 1, 16)

	got, err := audio.Drain(src)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
}

func TestSource_SmallDestinationBuffers(t *testing.T) {
	t.Parallel()

	// Frame larger than dst: the remainder stays pending for later reads.
	stream := &fakeStream{frames: []*flacFrame{
		{channels: [][]int32{{10, 20, 30, 40}}},
	}}
	src := newTestSource(stream, 1, 16)

	dst := make([]float32, 3)
	n, err := src.ReadSamples(dst)
	if n != 3 || err != nil {
		t.Fatalf("first read: n=%d err=%v, want 3, nil", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 1 || err != io.EOF {
		t.Fatalf("second read: n=%d err=%v, want 1, io.EOF", n, err)
	}
}

func TestSource_ScalesByBitDepth(t *testing.T) {
	t.Parallel()

	// 24-bit full scale.
	stream := &fakeStream{frames: []*flacFrame{
		{channels: [][]int32{{1 << 22}}},
	}}
	src := newTestSource(stream, 1, 24)

	got, err := audio.Drain(src)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if math.Abs(float64(got[0])-0.5) > 1e-6 {
		t.Errorf("sample = %v, want 0.5", got[0])
	}
}

func TestDecoder_NotFLAC(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("not a flac stream at all")))
	if !errors.Is(err, ErrNotFlacFile) {
		t.Errorf("error = %v, want ErrNotFlacFile", err)
	}
}
