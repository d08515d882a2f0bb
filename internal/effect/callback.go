package effect

// Callback wraps a plain function as an Effect, the Go-native equivalent of
// a "function pointer + opaque user data" pair: a closure already carries
// whatever data it needs, so there is no separate user-data field.
type Callback struct {
	fn func(block StereoBlock, info ProcessInfo)
}

// NewCallback wraps fn as an Effect.
func NewCallback(fn func(block StereoBlock, info ProcessInfo)) *Callback {
	return &Callback{fn: fn}
}

// PrepareToPlay implements Effect; Callback has no setup of its own.
func (c *Callback) PrepareToPlay(sampleRate float32, maxFrames int, numChannels int) {}

// ProcessAudio implements Effect by invoking the wrapped function.
func (c *Callback) ProcessAudio(block StereoBlock, info ProcessInfo) {
	if c.fn != nil {
		c.fn(block, info)
	}
}

// Parameters implements Effect; Callback exposes none.
func (c *Callback) Parameters() []Parameter { return nil }
