package mixer

import "gomixer/internal/source"

// maxSoundPerChannel bounds how many sound slots a channel keeps at once.
const maxSoundPerChannel = 2

type fadeState int

const (
	fadeIdle fadeState = iota
	fadeIn
	fadeConstant
	fadeOut
)

// soundSlot tracks one in-flight playback of a borrowed AudioSource: its
// position plus fade state. The mixer owns the AudioSource; a slot only
// ever borrows it.
type soundSlot struct {
	src *source.AudioSource

	loopCount   uint32 // 0 = idle, ^uint32(0) = infinite
	frameOffset int32  // may be negative: a pending delayed start

	volume [2]float32

	fade         fadeState
	fadeGain     float32
	fadeInSecs   float32
	fadeOutSecs  float32
}

func (s *soundSlot) isPlayingOrPending() bool { return s.loopCount != 0 }
func (s *soundSlot) isPlaying() bool          { return s.isPlayingOrPending() && s.frameOffset >= 0 }

func (s *soundSlot) reset() {
	*s = soundSlot{}
}

// Channel is one of the mixer's fixed pool of logical voices, holding up to
// maxSoundPerChannel sound slots so a second Play call can cross-fade out
// the previous sound while fading in the new one.
type Channel struct {
	slots [maxSoundPerChannel]soundSlot

	// rampScratch is reused across slots and callbacks so ProduceSound
	// never allocates on the audio thread. Sized to maxInternalBuffering,
	// the largest block the sink can ever request.
	rampScratch [maxInternalBuffering]float32
}

// startPlayingOptions bundles the parameters for the slot rotation and
// fade transition StartPlaying performs.
type startPlayingOptions struct {
	src              *source.AudioSource
	volL, volR       float32
	frameOffset      int32
	loopCount        uint32
	crossFadeInSecs  float32
	crossFadeOutSecs float32
	fadeInSecs       float32
}

// StartPlaying rotates the new sound into slot0, cross-fading or cutting
// whatever was already playing there depending on its state.
func (c *Channel) StartPlaying(opts startPlayingOptions) {
	// 1. Rotate: slot1 <- slot0.
	prevSlot0 := c.slots[0]
	c.slots[1] = prevSlot0

	// 2. slot0 <- new sound.
	c.slots[0] = soundSlot{
		src:         opts.src,
		loopCount:   opts.loopCount,
		frameOffset: opts.frameOffset,
		volume:      [2]float32{opts.volL, opts.volR},
	}

	switch {
	case c.slots[1].isPlaying():
		// 3. Cross-fade out the old sound, cross-fade in the new one.
		c.stopSlotFadeOut(1, opts.crossFadeOutSecs)
		c.startSlotFadeIn(0, opts.crossFadeInSecs)
	case c.slots[1].isPlayingOrPending():
		// 4. Old sound hadn't started audibly yet; cut it, use the plain fade-in.
		c.slots[1].reset()
		c.startSlotFadeIn(0, opts.fadeInSecs)
	default:
		// 5. Nothing to supersede.
		c.startSlotFadeIn(0, opts.fadeInSecs)
	}
}

func (c *Channel) startSlotFadeIn(idx int, fadeInSecs float32) {
	s := &c.slots[idx]
	if fadeInSecs <= 0 {
		s.fade = fadeConstant
		s.fadeGain = 1
		return
	}
	s.fade = fadeIn
	s.fadeGain = 0
	s.fadeInSecs = fadeInSecs
}

func (c *Channel) stopSlotFadeOut(idx int, fadeOutSecs float32) {
	s := &c.slots[idx]
	if fadeOutSecs <= 0 {
		s.reset()
		return
	}
	s.fade = fadeOut
	s.fadeOutSecs = fadeOutSecs
}

// Stop sets every non-idle slot to fading out over fadeOutSecs (or idle
// immediately if fadeOutSecs is zero).
func (c *Channel) Stop(fadeOutSecs float32) {
	for i := range c.slots {
		if c.slots[i].loopCount == 0 {
			continue
		}
		if fadeOutSecs <= 0 {
			c.slots[i].reset()
			continue
		}
		c.slots[i].fade = fadeOut
		c.slots[i].fadeOutSecs = fadeOutSecs
	}
}

// Slot0Idle reports whether the channel's primary slot is free, used by
// the mixer to pick "any" channel.
func (c *Channel) Slot0Idle() bool { return c.slots[0].loopCount == 0 }

// ProduceSound mixes every active slot's contribution into dst for frames
// samples at the given sample rate.
func (c *Channel) ProduceSound(dst [2][]float32, frames int, sampleRate float32) {
	for i := range c.slots {
		s := &c.slots[i]
		if s.loopCount == 0 {
			continue
		}
		c.produceSlot(s, dst, frames, sampleRate)
	}
}

func (c *Channel) produceSlot(s *soundSlot, dst [2][]float32, frames int, sampleRate float32) {
	// Delayed-start handling.
	if int64(s.frameOffset)+int64(frames) <= 0 {
		s.frameOffset += int32(frames)
		return
	}
	left, right := dst[0], dst[1]
	activeFrames := frames
	if s.frameOffset < 0 {
		skip := int(-s.frameOffset)
		left = left[skip:]
		right = right[skip:]
		activeFrames = frames - skip
		s.frameOffset = 0
	}

	ramp := c.rampScratch[:activeFrames]
	finished := c.buildVolumeRamp(s, ramp, sampleRate)

	buf := [2][]float32{left[:activeFrames], right[:activeFrames]}
	s.src.MixIntoBuffer(buf, activeFrames, &s.frameOffset, &s.loopCount, ramp, s.volume)

	if finished || s.loopCount == 0 {
		s.reset()
	}
}

// buildVolumeRamp fills ramp with one gain value per sample, stepping the
// fade state machine, and reports whether a fade-out just completed.
func (c *Channel) buildVolumeRamp(s *soundSlot, ramp []float32, sampleRate float32) bool {
	finished := false
	for i := range ramp {
		switch s.fade {
		case fadeIn:
			increment := float32(1)
			if s.fadeInSecs > 0 {
				increment = 1 / (sampleRate * s.fadeInSecs)
			}
			s.fadeGain += increment
			if s.fadeGain >= 1 {
				s.fadeGain = 1
				s.fade = fadeConstant
			}
		case fadeOut:
			increment := float32(1)
			if s.fadeOutSecs > 0 {
				increment = 1 / (sampleRate * s.fadeOutSecs)
			}
			s.fadeGain -= increment
			if s.fadeGain <= 0 {
				s.fadeGain = 0
				finished = true
			}
		case fadeConstant:
			s.fadeGain = 1
		case fadeIdle:
			s.fadeGain = 0
		}
		if s.fadeGain < 0 {
			s.fadeGain = 0
		} else if s.fadeGain > 1 {
			s.fadeGain = 1
		}
		ramp[i] = s.fadeGain
	}
	return finished
}
