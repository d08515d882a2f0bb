package resample

// Quality selects the rate-conversion algorithm. Higher qualities cost more
// CPU and more latency (see inputDelay/outputDelay below) in exchange for
// less aliasing and passband ripple.
type Quality int

const (
	// ZeroOrderHold repeats the most recent input sample for the whole
	// output phase — cheapest, worst aliasing.
	ZeroOrderHold Quality = iota
	// Linear interpolates between the two surrounding input samples.
	Linear
	// Cubic is a 4-tap Catmull-Rom-style interpolation.
	Cubic
	// Sinc is a windowed-sinc kernel, 2*sincHalfWidth taps wide.
	Sinc
	// Blep is a bandlimited-step kernel for synthetic step-like inputs.
	Blep
	// Blam is a bandlimited-ramp kernel for synthetic ramp-like inputs.
	Blam
)

func (q Quality) String() string {
	switch q {
	case ZeroOrderHold:
		return "zero-order-hold"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	case Sinc:
		return "sinc"
	case Blep:
		return "blep"
	case Blam:
		return "blam"
	default:
		return "unknown"
	}
}

// sincHalfWidth is the sinc kernel's half-width W: the kernel spans 2*W taps.
const sincHalfWidth = 16

// sincResolution is the number of phase slots per input-sample interval in
// the sinc/window/cubic lookup tables.
const sincResolution = 1024

// minFilled is the number of input samples each quality's kernel reads per
// output sample. The Resampler does not consult it: Pull emits output from
// the silence-seeded history even before any input has been pushed.
func (q Quality) minFilled() int {
	switch q {
	case ZeroOrderHold, Blep:
		return 1
	case Linear, Blam:
		return 2
	case Cubic:
		return 4
	case Sinc:
		return 2 * sincHalfWidth
	default:
		return 1
	}
}

// inputDelay is how many samples of silence are pre-fed before the first
// real input sample so that the filter's kernel support is fully populated
// by the time real samples start arriving (keeps emission causal).
func (q Quality) inputDelay() int {
	switch q {
	case ZeroOrderHold, Linear, Blep, Blam:
		return 0
	case Cubic:
		return 1
	case Sinc:
		return sincHalfWidth
	default:
		return 0
	}
}

// outputDelay is how many produced samples are discarded from the front of
// the output stream to compensate for inputDelay/kernel group delay, so the
// emitted stream lines up with the real input from the caller's point of
// view.
func (q Quality) outputDelay() int {
	switch q {
	case ZeroOrderHold, Linear:
		return 0
	case Cubic:
		return 1
	case Sinc:
		return sincHalfWidth
	case Blep, Blam:
		return sincHalfWidth - 1
	default:
		return 0
	}
}

// support is the number of input samples the interpolator looks at to
// produce one output sample (the ring buffer width).
func (q Quality) support() int {
	switch q {
	case ZeroOrderHold, Blep:
		return 1
	case Linear, Blam:
		return 2
	case Cubic:
		return 4
	case Sinc:
		return 2 * sincHalfWidth
	default:
		return 1
	}
}
