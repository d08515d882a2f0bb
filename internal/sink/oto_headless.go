//go:build headless

package sink

import "gomixer/internal/mixer"

// OtoSink is a no-op stand-in used in headless builds (CI, containers with
// no audio device).
type OtoSink struct {
	pull mixer.PullFunc
}

// NewOtoSink creates an unopened headless OtoSink.
func NewOtoSink() *OtoSink { return &OtoSink{} }

// Open implements mixer.Sink without touching any real device.
func (s *OtoSink) Open(sampleRate float32, pull mixer.PullFunc) error {
	s.pull = pull
	return nil
}

// Start implements mixer.Sink.
func (s *OtoSink) Start() error { return nil }

// Close implements mixer.Sink.
func (s *OtoSink) Close() error { return nil }
