package effect

import "testing"

func TestGainDefaultIsUnity(t *testing.T) {
	g := NewGain()
	g.PrepareToPlay(48000, 512, 2)
	left := []float32{1, 1, 1, 1}
	right := []float32{1, 1, 1, 1}
	g.ProcessAudio(StereoBlock{Left: left, Right: right}, ProcessInfo{SampleRate: 48000})
	for i, v := range left {
		if v < 0.999 || v > 1.0 {
			t.Fatalf("left[%d] = %v, expected ~1.0 at unity gain", i, v)
		}
	}
}

func TestGainSmoothsTowardTarget(t *testing.T) {
	g := NewGain()
	g.PrepareToPlay(48000, 512, 2)
	g.SetGain(0)

	block := func() StereoBlock {
		n := 4096
		l := make([]float32, n)
		r := make([]float32, n)
		for i := range l {
			l[i], r[i] = 1, 1
		}
		return StereoBlock{Left: l, Right: r}
	}()
	g.ProcessAudio(block, ProcessInfo{SampleRate: 48000})

	// Check the end of the block, after the gain has ramped toward zero
	// for more than 3800 samples (over five 15 ms time constants).
	maxAbs := float32(0)
	for _, v := range block.Left[len(block.Left)-256:] {
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	if maxAbs > 0.01 {
		t.Fatalf("expected output near zero after ramping down over 4096 samples, got max %v", maxAbs)
	}
}

func TestParameterClamping(t *testing.T) {
	p := NewFloatParameter("Gain", 0, 1, 2.0)
	if p.Get() != 1.0 {
		t.Fatalf("expected default clamped to max 1.0, got %v", p.Get())
	}
	p.Set(-5)
	if p.Get() != 0 {
		t.Fatalf("expected Set(-5) clamped to 0, got %v", p.Get())
	}
}
