package resample

import "math"

// Global, read-only, process-wide lookup tables shared by every Resampler
// instance. Construction is idempotent (every entry is a pure function of
// its index) so it is deliberately left unsynchronized: two goroutines
// racing to build the tables would write identical values, so no mutex or
// sync.Once guards tablesBuilt. Built lazily on first Resampler to avoid
// the cost when no resampler is ever constructed.
var (
	tablesBuilt bool
	sincLut     [2 * sincHalfWidth * sincResolution]float32
	windowLut   [sincHalfWidth * sincResolution]float32
	cubicLut    [4 * sincResolution]float32
)

func ensureTablesBuilt() {
	if tablesBuilt {
		return
	}
	buildWindowLut()
	buildSincLut()
	buildCubicLut()
	tablesBuilt = true
}

// buildWindowLut fills windowLut[i] = 0.40897 + 0.5*cos(pi*y) + 0.09103*cos(2*pi*y)
// with y = i / (W*Resolution), a Blackman-style window tapering the sinc
// kernel to zero at its edges.
func buildWindowLut() {
	n := sincHalfWidth * sincResolution
	for i := 0; i < n; i++ {
		y := float64(i) / float64(n)
		windowLut[i] = float32(0.40897 + 0.5*math.Cos(math.Pi*y) + 0.09103*math.Cos(2*math.Pi*y))
	}
}

// buildSincLut fills sincLut with a windowed-sinc kernel sampled at
// sincResolution phase slots per input-sample interval, spanning
// [-W, W) taps. Index = (tap+W)*sincResolution + phase.
func buildSincLut() {
	for tap := -sincHalfWidth; tap < sincHalfWidth; tap++ {
		for phase := 0; phase < sincResolution; phase++ {
			x := float64(tap) + float64(phase)/float64(sincResolution)
			s := sincFunc(x)
			w := windowAt(math.Abs(x))
			idx := (tap+sincHalfWidth)*sincResolution + phase
			sincLut[idx] = float32(s) * w
		}
	}
}

func sincFunc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func windowAt(absX float64) float32 {
	idx := int(absX * float64(sincResolution))
	if idx >= sincHalfWidth*sincResolution {
		idx = sincHalfWidth*sincResolution - 1
	}
	if idx < 0 {
		idx = 0
	}
	return windowLut[idx]
}

// buildCubicLut fills a 4xResolution table of Catmull-Rom basis weights so
// that cubicLut[phase*4+k] is the weight for tap k (k=0..3, taps at
// t-1,t,t+1,t+2) at fractional phase phase/Resolution.
func buildCubicLut() {
	for phase := 0; phase < sincResolution; phase++ {
		t := float64(phase) / float64(sincResolution)
		w0 := -0.5*t*t*t + t*t - 0.5*t
		w1 := 1.5*t*t*t - 2.5*t*t + 1.0
		w2 := -1.5*t*t*t + 2.0*t*t + 0.5*t
		w3 := 0.5*t*t*t - 0.5*t*t
		base := phase * 4
		cubicLut[base+0] = float32(w0)
		cubicLut[base+1] = float32(w1)
		cubicLut[base+2] = float32(w2)
		cubicLut[base+3] = float32(w3)
	}
}

// sincWeight returns the sinc*window weight for the tap at offset `tap`
// (relative to the kernel center, range [-W, W)) at fractional phase
// frac in [0,1), optionally scaled for downsampling (kernel stretched by
// 1/scale and renormalised by the caller to preserve DC gain).
func sincWeight(tap int, frac float64, scale float64) float32 {
	x := (float64(tap) - frac) * scale
	if x < -sincHalfWidth || x >= sincHalfWidth {
		return 0
	}
	phase := int((x + sincHalfWidth) * sincResolution)
	if phase < 0 {
		phase = 0
	}
	if phase >= len(sincLut) {
		phase = len(sincLut) - 1
	}
	return sincLut[phase]
}
