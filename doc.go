// SPDX-License-Identifier: EPL-2.0

// Package irtester auditions guitar-cabinet impulse responses against
// dry DI recordings: streaming convolution, a 10-band graphic EQ,
// click-free dry/wet mixing, real-time playback and export-time
// normalization.
//
// # Layout
//
// The root package offers Audition, a one-call offline render. The real
// functionality lives in the subpackages:
//
//   - audio: Source/Decoder interfaces, in-memory Buffer, resampling
//   - formats/{wav,aiff,flac,mp3,vorbis}: one decoder per container,
//     WAV and AIFF writers
//   - store: session asset lists with typed decode errors
//   - dsp/conv: direct and FFT overlap-add convolution
//   - dsp/eq: 10-band graphic equalizer (RBJ peaking biquads)
//   - dsp/mix: dry/wet blend with ramped parameter changes
//   - dsp/normalize: peak/RMS export gain
//   - dsp/spectrum: magnitude spectrum for display
//   - player: real-time playback engine over miniaudio
//   - engine: the command facade a front end drives
//
// # Quick start
//
//	buf, err := irtester.Audition("riff.wav", "cab412.wav", 1.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, _ := os.Create("rendered.wav")
//	defer out.Close()
//	wav.WriteBuffer(out, buf, 24)
//
// For interactive auditioning (transport, live EQ, A/B toggling, batch
// export) construct an engine.Engine over a player.Output device.
package irtester
