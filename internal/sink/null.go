// Package sink provides concrete mixer.Sink backends: a real device sink
// over github.com/ebitengine/oto/v3, and a headless no-op sink for tests
// and CI.
package sink

import "gomixer/internal/mixer"

// NullSink discards audio. It is always available (no build tag) and is
// useful for tests or for running the mixer with no output device at all.
type NullSink struct {
	pull mixer.PullFunc
	buf  []float32
}

// Open implements mixer.Sink.
func (n *NullSink) Open(sampleRate float32, pull mixer.PullFunc) error {
	n.pull = pull
	return nil
}

// Start implements mixer.Sink; NullSink has no background thread, so
// callers wanting to exercise pull must call Pump themselves (useful in
// tests).
func (n *NullSink) Start() error { return nil }

// Close implements mixer.Sink.
func (n *NullSink) Close() error { return nil }

// Pump drives one pull cycle manually, discarding the result. It exists so
// tests can exercise the Sink-facing side of the Mixer without a real
// backend thread.
func (n *NullSink) Pump(frames int) int {
	if cap(n.buf) < frames*2 {
		n.buf = make([]float32, frames*2)
	}
	return n.pull(frames, frames, n.buf[:frames*2])
}
