package mixer

// PullFunc is the function a Sink calls whenever its backend needs more
// audio. minFrames/maxFrames bound how many frames the sink is willing to
// accept this call (maxFrames is always <= maxInternalBuffering); out is an
// interleaved stereo float32 buffer of at least maxFrames*2 capacity for
// the callback to fill. It returns how many frames it actually produced.
type PullFunc func(minFrames, maxFrames int, out []float32) int

// Sink is the device abstraction the Mixer pushes audio through. Concrete
// device backends (oto, ALSA, headless/null) live outside the core and
// are consumed only through this interface; Loopback mode bypasses Sink
// entirely.
type Sink interface {
	// Open opens the backend at sampleRate and installs pull as the
	// function the backend's own audio thread calls for data.
	Open(sampleRate float32, pull PullFunc) error
	// Start begins the backend's audio thread, if it has one.
	Start() error
	// Close tears the backend down. Infallible by contract: callers ignore
	// the returned error except to log it.
	Close() error
}
