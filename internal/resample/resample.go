// Package resample implements per-channel sample-rate conversion for the
// mixer's source pipeline: zero-order hold, linear, cubic, windowed-sinc and
// bandlimited-step/ramp (blep/blam) qualities, all behind a push/pull API so
// a producer can feed decoded samples as they arrive and a consumer can pull
// resampled output whenever it needs more.
package resample

// Resampler converts a stream at srcRate to dstRate using the selected
// Quality. It is single-channel; DecodedStream keeps one per source
// channel.
type Resampler struct {
	srcRate, dstRate float64
	quality          Quality
	ratio            float64 // input samples consumed per output sample produced

	history []float32 // most recent `support` input samples, oldest first
	pending []float32 // input samples pushed but not yet consumed
	frac    float64   // phase of the next output sample; Pull returns with it >= 1 while waiting for input

	skipRemaining int  // outputDelay() samples still to discard
	primed        bool // true once inputDelay() silence has been pre-fed

	downsampleScale float64 // min(1, dstRate/srcRate), widens the sinc kernel when downsampling

	// blep/blam state
	accum      float64
	lastInput  float32
	aheadBuf   []float32 // write-ahead region, length 2*sincHalfWidth-1
	aheadBase  int       // logical index of aheadBuf[0] in the output stream
	aheadReady int       // number of samples at the front of aheadBuf ready to emit
}

// New creates a Resampler converting srcRate to dstRate at the given
// quality. srcRate and dstRate must be > 0.
func New(srcRate, dstRate float64, quality Quality) *Resampler {
	ensureTablesBuilt()

	scale := 1.0
	if dstRate < srcRate {
		scale = dstRate / srcRate
	}

	r := &Resampler{
		srcRate:         srcRate,
		dstRate:         dstRate,
		quality:         quality,
		ratio:           srcRate / dstRate,
		history:         make([]float32, quality.support()),
		skipRemaining:   quality.outputDelay(),
		downsampleScale: scale,
	}

	if quality == Blep || quality == Blam {
		r.aheadBuf = make([]float32, 2*sincHalfWidth-1)
	}

	for i := 0; i < quality.inputDelay(); i++ {
		r.seedSilence()
	}
	r.primed = true

	return r
}

// Quality returns the resampler's configured quality.
func (r *Resampler) Quality() Quality { return r.quality }

func (r *Resampler) seedSilence() {
	if len(r.history) > 0 {
		copy(r.history, r.history[1:])
		r.history[len(r.history)-1] = 0
	}
}

// Push queues input samples for conversion. Call Pull afterwards to collect
// whatever output that input made available.
func (r *Resampler) Push(input []float32) {
	r.pending = append(r.pending, input...)
}

// Pull appends newly produced output samples to out and returns the grown
// slice. It consumes as much of the queued input as the current phase
// allows; remaining input stays queued for the next Push/Pull cycle.
func (r *Resampler) Pull(out []float32) []float32 {
	if r.quality == Blep || r.quality == Blam {
		return r.pullImpulse(out)
	}
	return r.pullInterpolated(out)
}

// Flush feeds support()+1 samples of silence through the filter to emit its
// tail, as if the stream had ended. Call this once, after the last Push.
func (r *Resampler) Flush(out []float32) []float32 {
	tail := make([]float32, len(r.history)+1)
	r.Push(tail)
	out = r.Pull(out)
	return out
}

func (r *Resampler) pullInterpolated(out []float32) []float32 {
	for {
		for r.frac >= 1.0 {
			if len(r.pending) == 0 {
				return out
			}
			copy(r.history, r.history[1:])
			r.history[len(r.history)-1] = r.pending[0]
			r.pending = r.pending[1:]
			r.frac -= 1.0
		}

		sample := r.interpolate(r.frac)
		r.frac += r.ratio

		if r.skipRemaining > 0 {
			r.skipRemaining--
			continue
		}
		out = append(out, sample)
	}
}

// interpolate produces one output sample given the current history window
// and fractional phase frac in [0,1) measured from history's second-to-last
// real sample toward the last one (the exact reference point depends on
// quality, matching each algorithm's natural tap layout).
func (r *Resampler) interpolate(frac float64) float32 {
	n := len(r.history)
	switch r.quality {
	case ZeroOrderHold:
		return r.history[n-1]
	case Linear:
		a, b := r.history[n-2], r.history[n-1]
		return a + float32(frac)*(b-a)
	case Cubic:
		phase := int(frac * sincResolution)
		if phase >= sincResolution {
			phase = sincResolution - 1
		}
		base := phase * 4
		p0, p1, p2, p3 := r.history[n-4], r.history[n-3], r.history[n-2], r.history[n-1]
		return p0*cubicLut[base] + p1*cubicLut[base+1] + p2*cubicLut[base+2] + p3*cubicLut[base+3]
	case Sinc:
		return r.sincInterpolate(frac)
	default:
		return r.history[n-1]
	}
}

func (r *Resampler) sincInterpolate(frac float64) float32 {
	n := len(r.history)
	center := n - sincHalfWidth // index of the sample just before frac
	var acc, wsum float32
	for tap := -sincHalfWidth; tap < sincHalfWidth; tap++ {
		idx := center + tap
		if idx < 0 || idx >= n {
			continue
		}
		w := sincWeight(tap, frac, r.downsampleScale)
		acc += r.history[idx] * w
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return acc / wsum
}
