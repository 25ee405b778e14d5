// SPDX-License-Identifier: EPL-2.0

package player

// BlockFunc fills out with interleaved float32 samples. It is invoked on
// the device's real-time thread and must not block.
type BlockFunc func(out []float32)

// Output is the audio device boundary. The player opens it for a
// concrete format, hands it the render callback, and drives start/stop
// around transport commands. Implementations: MalgoOutput for a real
// device, test doubles elsewhere.
type Output interface {
	// Open prepares the device for the given stream format. The callback
	// is retained and invoked once per period after Start.
	Open(sampleRate, channels, blockFrames int, fn BlockFunc) error
	Start() error
	Stop() error
	Close() error
}
