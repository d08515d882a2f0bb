// Package source implements the bridge between a decode.Stream and the
// mixer's in-memory, already-resampled corpus, plus the AudioSource
// lifecycle wrapper the mixer plays.
package source

import (
	"log"
	"math"

	"gomixer/internal/chunked"
	"gomixer/internal/decode"
	"gomixer/internal/resample"
)

const chunkFramesDecoder = 128

// decodeState is the decode/flush/terminated state machine a stream steps
// through as it is consumed.
type decodeState int

const (
	stateDecoding decodeState = iota
	stateFlushingTail
	stateTerminated
)

// DecodedStream drives decode+resample and stores the decoded-then-resampled
// per-source-channel audio, tracking known length.
type DecodedStream struct {
	stream decode.Stream

	srcChannels int
	origRate    float32
	mixerRate   float32

	resamplers [2]*resample.Resampler
	bufs       [2]*chunked.FloatVec

	framesDecodedAndResampled uint32
	sourceLengthInFrames      uint32
	lengthIsKnown             bool

	state decodeState

	// scratch for one decode-increment's worth of interleaved decoded
	// frames and its deinterleaved mirror, sized once and reused so the
	// decode-ahead path never allocates per call.
	interleavedScratch []float32
	deinterleaved      [2][]float32
}

// NewDecodedStream wraps stream. The mixer rate is not known until
// InitResamplers is called (from AudioSource.PrepareToPlay).
func NewDecodedStream(stream decode.Stream) *DecodedStream {
	channels := stream.NumChannels()
	d := &DecodedStream{
		stream:      stream,
		srcChannels: channels,
		origRate:    stream.SampleRate(),
	}
	if n, ok := stream.LengthInFrames(); ok {
		d.sourceLengthInFrames = uint32(n)
		d.lengthIsKnown = true
	}

	d.interleavedScratch = make([]float32, chunkFramesDecoder*channels)
	for c := 0; c < channels; c++ {
		d.deinterleaved[c] = make([]float32, chunkFramesDecoder)
	}
	return d
}

// InitResamplers initializes one resampler per source channel, quality
// cubic, on its first call (AudioSource.PrepareToPlay makes it); later
// calls are no-ops. A length reported by the stream is converted here from
// the stream's own rate to mixer-rate frames.
func (d *DecodedStream) InitResamplers(mixerRate float32) {
	if d.resamplers[0] != nil {
		return
	}
	d.mixerRate = mixerRate
	if d.lengthIsKnown && d.origRate > 0 {
		d.sourceLengthInFrames = uint32(math.Round(float64(d.sourceLengthInFrames) * float64(mixerRate) / float64(d.origRate)))
	}
	for c := 0; c < d.srcChannels; c++ {
		d.resamplers[c] = resample.New(float64(d.origRate), float64(mixerRate), resample.Cubic)
		d.bufs[c] = chunked.NewFloat(4096)
	}
}

// FramesAvailable returns how many resampled frames are currently stored.
func (d *DecodedStream) FramesAvailable() uint32 { return d.framesDecodedAndResampled }

// LengthIsKnown reports whether SourceLengthInFrames is valid.
func (d *DecodedStream) LengthIsKnown() bool { return d.lengthIsKnown }

// SourceLengthInFrames returns the known resampled length, or 0 if unknown.
func (d *DecodedStream) SourceLengthInFrames() uint32 { return d.sourceLengthInFrames }

// MixIntoBuffer mixes frames resampled frames starting at *frameOffset
// into dst (two channels), decoding ahead as needed, wrapping on loop and
// decrementing *loopCount, and leaves *frameOffset positioned for the next
// call.
func (d *DecodedStream) MixIntoBuffer(dst [2][]float32, frames int, frameOffset *int32, loopCount *uint32, volumeRamp []float32, volume [2]float32) {
	rampOff := 0
	for frames > 0 {
		framesEnd := uint32(int64(*frameOffset) + int64(frames))

		if d.framesDecodedAndResampled < framesEnd {
			d.decodeMoreSamples(framesEnd - d.framesDecodedAndResampled)
		}

		if d.lengthIsKnown && framesEnd > d.sourceLengthInFrames {
			framesEnd = d.sourceLengthInFrames
		}
		if int64(framesEnd) < int64(*frameOffset) {
			framesEnd = uint32(*frameOffset)
		}

		framesToCopy := int(framesEnd) - int(*frameOffset)
		if framesToCopy < 0 {
			framesToCopy = 0
		}
		if framesToCopy > frames {
			framesToCopy = frames
		}

		if framesToCopy > 0 {
			ramp := volumeRamp[rampOff : rampOff+framesToCopy]
			for c := 0; c < 2; c++ {
				sc := c
				if sc >= d.srcChannels {
					sc = d.srcChannels - 1
				}
				d.bufs[sc].MixInto(dst[c][:framesToCopy], uint32(*frameOffset), ramp, volume[c])
			}
		}

		frames -= framesToCopy
		rampOff += framesToCopy
		*frameOffset += int32(framesToCopy)

		if frames != 0 {
			if !d.lengthIsKnown {
				log.Printf("[source] mix_into_buffer: ran dry on a stream of unknown length; zero-filling")
				return
			}
			*frameOffset -= int32(d.sourceLengthInFrames)
			*loopCount--
			if *loopCount == 0 {
				return
			}
		}
	}
}

// decodeMoreSamples pumps readFromStreamAndResample until at least
// wantFrames new resampled frames are appended or the resampling output is
// terminated, in which case the length is latched and the caller's
// remaining request is satisfied by zero-padding (handled by MixIntoBuffer
// clamping framesEnd to the now-known length).
func (d *DecodedStream) decodeMoreSamples(wantFrames uint32) {
	produced := uint32(0)
	for produced < wantFrames {
		n, terminated := d.readFromStreamAndResample()
		produced += uint32(n)
		if terminated {
			d.sourceLengthInFrames = d.framesDecodedAndResampled
			d.lengthIsKnown = true
			return
		}
		if n == 0 && !terminated {
			// Producer has nothing new yet (e.g. a BufferedStream still
			// catching up); avoid spinning forever on a single call.
			return
		}
	}
}

// readFromStreamAndResample advances the 3-state machine one step and
// returns how many new resampled frames it appended plus whether the
// stream is now fully terminated.
func (d *DecodedStream) readFromStreamAndResample() (produced int, terminated bool) {
	switch d.state {
	case stateTerminated:
		return 0, true

	case stateFlushingTail:
		for c := 0; c < d.srcChannels; c++ {
			var tail []float32
			tail = d.resamplers[c].Flush(tail)
			for _, s := range tail {
				d.bufs[c].PushBack(s)
			}
			if c == 0 {
				produced = len(tail)
			}
		}
		d.state = stateTerminated
		d.framesDecodedAndResampled += uint32(produced)
		return produced, true

	default: // stateDecoding
		n, err := d.stream.ReadSamplesFloat(d.interleavedScratch, chunkFramesDecoder)
		if err != nil {
			log.Printf("[source] decode error, terminating stream: %v", err)
		}

		for c := 0; c < d.srcChannels; c++ {
			buf := d.deinterleaved[c][:n]
			for i := 0; i < n; i++ {
				buf[i] = d.interleavedScratch[i*d.srcChannels+c]
			}
			d.resamplers[c].Push(buf)
		}

		newlyProduced := 0
		for c := 0; c < d.srcChannels; c++ {
			var out []float32
			out = d.resamplers[c].Pull(out)
			for _, s := range out {
				d.bufs[c].PushBack(s)
			}
			if c == 0 {
				newlyProduced = len(out)
			}
		}
		d.framesDecodedAndResampled += uint32(newlyProduced)

		if n < chunkFramesDecoder {
			d.state = stateFlushingTail
		}
		return newlyProduced, false
	}
}
