package effect

import "math"

// gainSmoothTimeConstant is the one-pole smoother's time constant (~15 ms).
const gainSmoothTimeConstant = 0.015

// Gain is the built-in gain-smoothing effect. It exposes a single "Gain"
// parameter in [0,1] (default 1) and multiplies both channels by a value
// that exponentially approaches the target, avoiding zipper noise on
// sudden volume changes (e.g. set_master_volume while sounds are playing).
type Gain struct {
	param      *floatParam
	current    float32
	expFactor  float32
	sampleRate float32
}

// NewGain creates a gain effect defaulting to unity gain.
func NewGain() *Gain {
	g := &Gain{
		param:   &floatParam{name: "Gain", min: 0, max: 1, value: 1},
		current: 1,
	}
	return g
}

// PrepareToPlay implements Effect.
func (g *Gain) PrepareToPlay(sampleRate float32, maxFrames int, numChannels int) {
	g.sampleRate = sampleRate
	g.expFactor = float32(1 - math.Exp(-1/(gainSmoothTimeConstant*float64(sampleRate))))
}

// ProcessAudio implements Effect: current ramps toward the Gain parameter
// one sample at a time, then scales both channels.
func (g *Gain) ProcessAudio(block StereoBlock, info ProcessInfo) {
	target := g.param.Get()
	for i := 0; i < block.Frames(); i++ {
		g.current += (target - g.current) * g.expFactor
		block.Left[i] *= g.current
		block.Right[i] *= g.current
	}
}

// Parameters implements Effect.
func (g *Gain) Parameters() []Parameter { return []Parameter{g.param} }

// SetGain sets the target gain directly (used by Mixer.SetMasterVolume for
// the terminal gain effect).
func (g *Gain) SetGain(value float32) { g.param.Set(value) }

// Value returns the effect's current (smoothed) output gain.
func (g *Gain) Value() float32 { return g.current }
