// SPDX-License-Identifier: EPL-2.0

package store

import (
	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/formats/aiff"
	"github.com/lzkill/ir-tester/formats/flac"
	"github.com/lzkill/ir-tester/formats/mp3"
	"github.com/lzkill/ir-tester/formats/vorbis"
	"github.com/lzkill/ir-tester/formats/wav"
)

// IRRegistry returns the decoder set accepted for impulse responses:
// lossless containers only.
func IRRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("flac", flac.Decoder{})

	return r
}

// DIRegistry returns the decoder set accepted for DI recordings: the IR
// formats plus lossy ones.
func DIRegistry() *audio.Registry {
	r := IRRegistry()
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})

	return r
}
