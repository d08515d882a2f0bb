//go:build !headless

package sink

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"gomixer/internal/mixer"
	"gomixer/internal/mixererr"
)

// OtoSink is the real device backend. oto's player model is pull-based (it
// calls Read on whatever io.Reader you give it), so a begin/end write pair
// collapses into a single Read that asks the Mixer's PullFunc for a block
// and converts the result to bytes.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	pull   mixer.PullFunc

	mu      sync.Mutex
	started bool

	scratch []float32
}

// NewOtoSink creates an unopened OtoSink.
func NewOtoSink() *OtoSink { return &OtoSink{} }

// Open implements mixer.Sink.
func (s *OtoSink) Open(sampleRate float32, pull mixer.PullFunc) error {
	opts := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // let oto choose a sensible default
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return mixererr.Wrap(mixererr.DeviceOpenFailed, err, "oto.NewContext")
	}
	<-ready

	s.mu.Lock()
	s.ctx = ctx
	s.pull = pull
	s.player = ctx.NewPlayer(s)
	s.mu.Unlock()
	return nil
}

// Start implements mixer.Sink.
func (s *OtoSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return mixererr.New(mixererr.NoOutputDevice)
	}
	if !s.started {
		s.player.Play()
		s.started = true
	}
	return nil
}

// Close implements mixer.Sink.
func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	s.started = false
	return nil
}

// Read implements io.Reader for oto.Player. maxInternalBuffering caps how
// many frames a single call requests.
func (s *OtoSink) Read(p []byte) (int, error) {
	const bytesPerFrame = 8           // stereo float32
	const maxInternalBuffering = 1024 // the mixer's per-pull frame limit
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if frames > maxInternalBuffering {
		frames = maxInternalBuffering
	}

	if cap(s.scratch) < frames*2 {
		s.scratch = make([]float32, frames*2)
	}
	buf := s.scratch[:frames*2]

	got := s.pull(frames, frames, buf)
	if got < frames {
		for i := got * 2; i < frames*2; i++ {
			buf[i] = 0
		}
	}

	floatBytesLE(buf, p[:frames*bytesPerFrame])
	return frames * bytesPerFrame, nil
}

func floatBytesLE(src []float32, dst []byte) {
	for i, v := range src {
		bits := math.Float32bits(v)
		dst[i*4+0] = byte(bits)
		dst[i*4+1] = byte(bits >> 8)
		dst[i*4+2] = byte(bits >> 16)
		dst[i*4+3] = byte(bits >> 24)
	}
}
