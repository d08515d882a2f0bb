package source

import "gomixer/internal/decode"

// SampleRateProvider is the capability interface a source needs back from
// its owning mixer: just enough to learn the mixer's rate, never full
// ownership.
type SampleRateProvider interface {
	SampleRate() float32
}

// AudioSource owns a DecodedStream and is the unit the mixer plays. It is
// created once, owned by the Mixer, and may be referenced by many
// channels/slots concurrently for re-triggering.
type AudioSource struct {
	decoded *DecodedStream

	mixerRate          float32
	prepared           bool
	disallowFullDecode bool
}

// NewAudioSource wraps a decode.Stream, rejecting unsupported channel
// layouts at load time.
func NewAudioSource(stream decode.Stream) (*AudioSource, error) {
	if n := stream.NumChannels(); n != 1 && n != 2 {
		return nil, errUnsupportedChannels(n)
	}
	return &AudioSource{decoded: NewDecodedStream(stream)}, nil
}

// PrepareToPlay latches the mixer's sample rate and forbids FullDecode from
// this point on, because the audio thread may now mutate the
// DecodedStream concurrently.
func (s *AudioSource) PrepareToPlay(mixer SampleRateProvider) {
	if s.prepared {
		return
	}
	s.mixerRate = mixer.SampleRate()
	s.decoded.InitResamplers(s.mixerRate)
	s.prepared = true
	s.disallowFullDecode = true
}

// MixIntoBuffer forwards to the underlying DecodedStream.
func (s *AudioSource) MixIntoBuffer(dst [2][]float32, frames int, frameOffset *int32, loopCount *uint32, volumeRamp []float32, volume [2]float32) {
	s.decoded.MixIntoBuffer(dst, frames, frameOffset, loopCount, volumeRamp, volume)
}

// FullDecode refuses with an error once PrepareToPlay has run, since the
// audio thread may be touching the DecodedStream by then. Before
// PrepareToPlay it returns nil without decoding anything, because the
// resamplers need the mixer rate that PrepareToPlay supplies. It therefore
// never preloads audio.
func (s *AudioSource) FullDecode() error {
	if s.disallowFullDecode {
		return errFullDecodeAfterPrepare
	}
	if !s.prepared {
		// FullDecode is allowed pre-prepare only if the caller already
		// knows the target rate; without a mixer rate there is nothing
		// meaningful to resample to, so this is a no-op until prepared.
		return nil
	}

	var l, r [32]float32
	ramp := [32]float32{}
	for i := range ramp {
		ramp[i] = 1
	}
	for !s.FullyDecoded() {
		var frameOffset int32
		loopCount := uint32(1)
		buf := [2][]float32{l[:], r[:]}
		s.MixIntoBuffer(buf, 32, &frameOffset, &loopCount, ramp[:], [2]float32{0, 0})
		if frameOffset == 0 {
			break // made no progress; avoid spinning forever
		}
	}
	return nil
}

// FullyDecoded reports whether the source has been fully decoded and
// resampled (only meaningful once the source's length is known).
func (s *AudioSource) FullyDecoded() bool {
	return s.decoded.LengthIsKnown() && s.decoded.FramesAvailable() >= s.decoded.SourceLengthInFrames()
}

// LengthInFrames returns the mixer-rate length in frames, or (0, false) if
// not yet known. Before PrepareToPlay, a length reported by the stream is
// returned at the stream's own rate.
func (s *AudioSource) LengthInFrames() (uint32, bool) {
	if !s.decoded.LengthIsKnown() {
		return 0, false
	}
	return s.decoded.SourceLengthInFrames(), true
}

// LengthInSeconds returns the length in seconds, computed in mixer-rate
// frames since mixing operates in mixer-rate rather than the source's
// original rate.
func (s *AudioSource) LengthInSeconds() (float32, bool) {
	frames, ok := s.LengthInFrames()
	if !ok || s.mixerRate == 0 {
		return 0, false
	}
	return float32(frames) / s.mixerRate, true
}

// OriginalLengthInFrames returns the length in the source's own sample
// rate, if known.
func (s *AudioSource) OriginalLengthInFrames() (uint32, bool) {
	frames, ok := s.LengthInFrames()
	if !ok {
		return 0, false
	}
	if s.mixerRate == 0 {
		return frames, true
	}
	return uint32(float64(frames) * float64(s.decoded.origRate) / float64(s.mixerRate)), true
}

// SampleRate returns the source's original sample rate.
func (s *AudioSource) SampleRate() float32 { return s.decoded.origRate }

// SetChannelVolume is intentionally unimplemented: no defined interface
// pins down its semantics (per-source-channel gain before downmix?), so
// this leaves it unspecified rather than guessing.
//
// TODO: define SetChannelVolume's semantics once a concrete use case
// clarifies what it should control.
func (s *AudioSource) SetChannelVolume(channel int, volume float32) {
	_ = channel
	_ = volume
}
