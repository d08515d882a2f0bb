// Package decode defines the decode-stream collaborator the mixer core
// consumes, an optional producer-thread buffering wrapper for
// non-realtime-safe decoders, and two concrete decode streams: an in-memory
// WAV reader and an adapter over github.com/gopxl/beep streamers.
package decode

// Stream is the interface the mixer's source pipeline consumes. Concrete
// codecs (MP3/OGG/WAV/FLAC/XM/MOD) are out of the mixer core's scope; the
// core only ever talks to this interface.
type Stream interface {
	// NumChannels returns 1 or 2; any other value is invalid.
	NumChannels() int
	// SampleRate returns the stream's native sample rate in Hz.
	SampleRate() float32
	// LengthInFrames returns the stream's total length, or (0, false) if
	// unknown (e.g. a live or unbounded stream).
	LengthInFrames() (int64, bool)
	// RealtimeSafe reports whether ReadSamplesFloat never blocks on I/O or
	// allocates; false means BufferedStream should wrap it in a producer
	// thread.
	RealtimeSafe() bool
	// ReadSamplesFloat reads up to frames interleaved frames into out
	// (which must be at least frames*NumChannels() long) and returns the
	// number of frames actually read. Fewer frames than requested signals
	// end of stream.
	ReadSamplesFloat(out []float32, frames int) (int, error)
}
