// Package mixer implements the real-time mixing engine: a fixed pool of
// Channels feeding a master effect chain, driven either by a pushed Sink
// or pulled directly in loopback mode.
package mixer

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gomixer/internal/decode"
	"gomixer/internal/effect"
	"gomixer/internal/metrics"
	"gomixer/internal/mixererr"
	"gomixer/internal/source"
)

// Mode is the mixer's output mode.
type Mode int

const (
	// ModeDevice pushes audio to a Sink backend.
	ModeDevice Mode = iota
	// ModeLoopback lets the host pull audio via LoopbackGenerate/LoopbackMix.
	ModeLoopback
)

// Mixer is the top-level engine: one per process instance.
type Mixer struct {
	sampleRate  float32
	numChannels int
	mode        Mode
	sink        Sink

	channelsMutex sync.Mutex
	channels      []*Channel

	masterEffectsMutex sync.Mutex
	masterEffects      []effect.Effect
	terminalGain       *effect.Gain

	sources   []*source.AudioSource // owned; released on teardown
	sourcesMu sync.Mutex

	framesElapsed           uint64 // atomic
	timeSincePlaybackBegan  int64  // atomic, frames
	underrunCount           uint64 // atomic
	softwareLatencyFrames   float32

	scratchL, scratchR []float32 // audio-thread scratch, sized at construction

	erroredFlag int32 // atomic bool
	errMu       sync.Mutex
	lastErr     string
}

// New constructs a Mixer. Construction failures (device open, unsupported
// format/layout) latch the mixer into an errored state rather than
// returning an error: all further commands become no-ops and queries
// report the stored message.
func New(opts Options, sink Sink) *Mixer {
	mode := ModeDevice
	if opts.IsLoopback {
		mode = ModeLoopback
		sink = nil
	}

	m := &Mixer{
		sampleRate:  opts.SampleRate,
		numChannels: opts.NumChannels,
		mode:        mode,
		sink:        sink,
	}

	m.channels = make([]*Channel, opts.NumChannels)
	for i := range m.channels {
		m.channels[i] = &Channel{}
	}

	m.terminalGain = effect.NewGain()
	m.terminalGain.PrepareToPlay(opts.SampleRate, maxFramesForEffects, 2)

	m.ensureScratch(maxInternalBuffering)

	if mode == ModeDevice {
		if sink == nil {
			m.latchError(mixererr.New(mixererr.NoOutputDevice), "no sink supplied for device mode")
			return m
		}
		if err := sink.Open(opts.SampleRate, m.pull); err != nil {
			m.latchError(err, "opening sink")
			return m
		}
		if err := sink.Start(); err != nil {
			m.latchError(err, "starting sink")
			return m
		}
	}

	return m
}

func (m *Mixer) ensureScratch(frames int) {
	if len(m.scratchL) >= frames {
		return
	}
	m.scratchL = make([]float32, frames)
	m.scratchR = make([]float32, frames)
}

func (m *Mixer) latchError(err error, context string) {
	atomic.StoreInt32(&m.erroredFlag, 1)
	m.errMu.Lock()
	m.lastErr = context + ": " + err.Error()
	m.errMu.Unlock()
	log.Printf("[mixer] %s", m.lastErr)
}

// IsErrored reports whether the mixer has latched a construction or
// runtime error and stopped accepting commands.
func (m *Mixer) IsErrored() bool { return atomic.LoadInt32(&m.erroredFlag) != 0 }

// LastErrorString returns the message from the most recently latched error.
func (m *Mixer) LastErrorString() string {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}

// SampleRate implements source.SampleRateProvider: sources look the mixer
// rate up through this capability interface rather than owning it.
func (m *Mixer) SampleRate() float32 { return m.sampleRate }

// NumChannels returns the fixed channel pool size.
func (m *Mixer) NumChannels() int { return m.numChannels }

// NewSource creates and registers an AudioSource owned by this mixer.
// Sources are released together at Close.
func (m *Mixer) NewSource(stream decode.Stream) (*source.AudioSource, error) {
	src, err := source.NewAudioSource(stream)
	if err != nil {
		return nil, err
	}
	m.sourcesMu.Lock()
	m.sources = append(m.sources, src)
	m.sourcesMu.Unlock()
	return src, nil
}

// Play resolves a channel, computes equal-power pan gains and the initial
// frame offset, then swaps channel state under channelsMutex.
func (m *Mixer) Play(src *source.AudioSource, opts PlayOptions) {
	if m.IsErrored() {
		metrics.IncPlayRejected("errored")
		return
	}
	if opts.DelayBeforePlay != 0 && opts.StartTimeSecs != 0 {
		log.Printf("[mixer] play: delayBeforePlay and startTimeSecs are mutually exclusive; ignoring startTimeSecs")
		opts.StartTimeSecs = 0
	}

	volL, volR := equalPowerPan(opts.Volume, opts.Pan)
	frameOffset := initialFrameOffset(opts, m.sampleRate)

	src.PrepareToPlay(m)

	m.channelsMutex.Lock()
	defer m.channelsMutex.Unlock()

	ch := m.resolveChannelLocked(opts.Channel)
	if ch == nil {
		reason := "no_free_channel"
		if opts.Channel != AnyMixerChannel {
			reason = "channel_out_of_range"
		}
		metrics.IncPlayRejected(reason)
		return // no free channel; command dropped silently
	}

	ch.StartPlaying(startPlayingOptions{
		src:              src,
		volL:             volL,
		volR:             volR,
		frameOffset:      frameOffset,
		loopCount:        opts.LoopCount,
		crossFadeInSecs:  opts.CrossFadeInSecs,
		crossFadeOutSecs: opts.CrossFadeOutSecs,
		fadeInSecs:       opts.FadeInSecs,
	})
	metrics.IncPlay()
}

// PlaySimultaneously starts every (source, options) pair under a single
// channelsMutex acquisition, so all of them begin at the same
// audio-callback block.
func (m *Mixer) PlaySimultaneously(sources []*source.AudioSource, opts []PlayOptions) {
	if m.IsErrored() || len(sources) != len(opts) {
		return
	}

	type resolved struct {
		volL, volR  float32
		frameOffset int32
	}
	prepared := make([]resolved, len(sources))
	for i, o := range opts {
		volL, volR := equalPowerPan(o.Volume, o.Pan)
		prepared[i] = resolved{volL: volL, volR: volR, frameOffset: initialFrameOffset(o, m.sampleRate)}
		sources[i].PrepareToPlay(m)
	}

	m.channelsMutex.Lock()
	defer m.channelsMutex.Unlock()

	for i, o := range opts {
		ch := m.resolveChannelLocked(o.Channel)
		if ch == nil {
			continue
		}
		ch.StartPlaying(startPlayingOptions{
			src:              sources[i],
			volL:             prepared[i].volL,
			volR:             prepared[i].volR,
			frameOffset:      prepared[i].frameOffset,
			loopCount:        o.LoopCount,
			crossFadeInSecs:  o.CrossFadeInSecs,
			crossFadeOutSecs: o.CrossFadeOutSecs,
			fadeInSecs:       o.FadeInSecs,
		})
	}
}

// resolveChannelLocked must be called with channelsMutex held.
func (m *Mixer) resolveChannelLocked(channel int) *Channel {
	if channel == AnyMixerChannel {
		for _, ch := range m.channels {
			if ch.Slot0Idle() {
				return ch
			}
		}
		return nil
	}
	if channel < 0 || channel >= len(m.channels) {
		log.Printf("[mixer] play: channel %d out of range [0,%d)", channel, len(m.channels))
		return nil
	}
	return m.channels[channel]
}

// Stop stops channel ch over fadeOutSecs (0 = immediate). Out-of-range
// channels are rejected silently (logged).
func (m *Mixer) Stop(channel int, fadeOutSecs float32) {
	if m.IsErrored() {
		return
	}
	m.channelsMutex.Lock()
	defer m.channelsMutex.Unlock()
	if channel < 0 || channel >= len(m.channels) {
		log.Printf("[mixer] stop: channel %d out of range", channel)
		return
	}
	m.channels[channel].Stop(fadeOutSecs)
}

// equalPowerPan converts a volume/pan pair into constant-power left/right gains.
func equalPowerPan(volume, pan float32) (volL, volR float32) {
	const sqrt2 = 1.4142135623730951
	angle := (pan + 1) * piOver4
	volL = volume * cos32(angle) * sqrt2
	volR = volume * sin32(angle) * sqrt2
	return
}

// initialFrameOffset converts a delay or absolute start time into a signed
// frame offset: negative means playback hasn't audibly started yet.
func initialFrameOffset(opts PlayOptions, sampleRate float32) int32 {
	if opts.DelayBeforePlay != 0 {
		return -round32(opts.DelayBeforePlay * sampleRate)
	}
	return round32(opts.StartTimeSecs * sampleRate)
}

// SetMasterVolume forwards to the terminal gain effect's Gain parameter.
func (m *Mixer) SetMasterVolume(volume float32) {
	m.terminalGain.SetGain(volume)
	metrics.SetMasterVolume(volume)
}

// AddMasterEffect appends e to the master effect chain, applied in list
// order before the terminal gain stage.
func (m *Mixer) AddMasterEffect(e effect.Effect) {
	e.PrepareToPlay(m.sampleRate, maxFramesForEffects, 2)
	m.masterEffectsMutex.Lock()
	m.masterEffects = append(m.masterEffects, e)
	m.masterEffectsMutex.Unlock()
}

// pull is the audio-thread entry point a Sink calls: it mixes a block into
// deinterleaved scratch, interleaves the result into out and returns the
// frame count. The actual device write is the Sink's own job.
func (m *Mixer) pull(minFrames, maxFrames int, out []float32) int {
	start := time.Now()
	defer func() { metrics.ObservePull(time.Since(start)) }()

	frames := maxFrames
	if frames > maxInternalBuffering {
		frames = maxInternalBuffering
	}
	if frames < minFrames {
		frames = minFrames
	}
	if maxFrames < minFrames {
		atomic.AddUint64(&m.underrunCount, 1)
		metrics.IncUnderrun()
	}

	m.ensureScratch(frames)
	left := m.scratchL[:frames]
	right := m.scratchR[:frames]
	for i := range left {
		left[i] = 0
		right[i] = 0
	}

	m.channelsMutex.Lock()
	for _, ch := range m.channels {
		ch.ProduceSound([2][]float32{left, right}, frames, m.sampleRate)
	}
	m.channelsMutex.Unlock()

	m.applyMasterEffects(left, right, frames)

	atomic.AddUint64(&m.framesElapsed, uint64(frames))
	atomic.StoreInt64(&m.timeSincePlaybackBegan, int64(atomic.LoadUint64(&m.framesElapsed)))

	for i := 0; i < frames; i++ {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return frames
}

// applyMasterEffects runs the master chain then the terminal gain stage in
// sub-blocks of at most maxFramesForEffects.
func (m *Mixer) applyMasterEffects(left, right []float32, frames int) {
	m.masterEffectsMutex.Lock()
	defer m.masterEffectsMutex.Unlock()

	for start := 0; start < frames; start += maxFramesForEffects {
		end := start + maxFramesForEffects
		if end > frames {
			end = frames
		}
		block := effect.StereoBlock{Left: left[start:end], Right: right[start:end]}
		info := effect.ProcessInfo{
			SampleRate:                       m.sampleRate,
			TimeInFramesSincePlaybackStarted: atomic.LoadUint64(&m.framesElapsed) + uint64(start),
		}
		for _, e := range m.masterEffects {
			e.ProcessAudio(block, info)
		}
		m.terminalGain.ProcessAudio(block, info)
	}
}

// LoopbackGenerate runs the same mixing steps as the audio callback (steps
// 1-6) and copies the result into the caller's deinterleaved buffers
// instead of writing to a Sink.
func (m *Mixer) LoopbackGenerate(left, right []float32, frames int) {
	m.loopbackRun(left, right, frames, false)
}

// LoopbackMix is LoopbackGenerate but adds into the caller's buffers
// instead of overwriting them.
func (m *Mixer) LoopbackMix(left, right []float32, frames int) {
	m.loopbackRun(left, right, frames, true)
}

func (m *Mixer) loopbackRun(left, right []float32, frames int, add bool) {
	m.ensureScratch(frames)
	sl := m.scratchL[:frames]
	sr := m.scratchR[:frames]
	for i := range sl {
		sl[i] = 0
		sr[i] = 0
	}

	m.channelsMutex.Lock()
	for _, ch := range m.channels {
		ch.ProduceSound([2][]float32{sl, sr}, frames, m.sampleRate)
	}
	m.channelsMutex.Unlock()

	m.applyMasterEffects(sl, sr, frames)

	atomic.AddUint64(&m.framesElapsed, uint64(frames))
	atomic.StoreInt64(&m.timeSincePlaybackBegan, int64(atomic.LoadUint64(&m.framesElapsed)))

	if add {
		for i := 0; i < frames; i++ {
			left[i] += sl[i]
			right[i] += sr[i]
		}
	} else {
		copy(left, sl)
		copy(right, sr)
	}
}

// PlaybackTimeInSeconds returns elapsed playback time, latency-compensated.
func (m *Mixer) PlaybackTimeInSeconds() float32 {
	frames := atomic.LoadInt64(&m.timeSincePlaybackBegan)
	return float32(frames)/m.sampleRate - m.softwareLatencyFrames/m.sampleRate
}

// Stats is a point-in-time snapshot of mixer activity.
type Stats struct {
	ActiveChannels int
	FramesElapsed  uint64
	UnderrunCount  uint64
	Errored        bool
	LastError      string
}

// Stats reports a snapshot of mixer activity.
func (m *Mixer) Stats() Stats {
	m.channelsMutex.Lock()
	active := 0
	for _, ch := range m.channels {
		if !ch.Slot0Idle() {
			active++
		}
	}
	m.channelsMutex.Unlock()

	metrics.SetActiveChannels(active)
	return Stats{
		ActiveChannels: active,
		FramesElapsed:  atomic.LoadUint64(&m.framesElapsed),
		UnderrunCount:  atomic.LoadUint64(&m.underrunCount),
		Errored:        m.IsErrored(),
		LastError:      m.LastErrorString(),
	}
}

// Close drives the master volume to zero, gives the audio thread time to
// settle, then tears down the sink. Infallible by contract.
func (m *Mixer) Close() {
	m.SetMasterVolume(0)
	time.Sleep(200 * time.Millisecond)
	if m.sink != nil {
		if err := m.sink.Close(); err != nil {
			log.Printf("[mixer] close: sink close error (ignored): %v", err)
		}
	}
}
