package resample

import "testing"

func constantInput(n int, value float32) []float32 {
	in := make([]float32, n)
	for i := range in {
		in[i] = value
	}
	return in
}

func TestDCPreservationAllQualities(t *testing.T) {
	qualities := []Quality{ZeroOrderHold, Linear, Cubic, Sinc}
	for _, q := range qualities {
		r := New(44100, 48000, q)
		var out []float32
		out = r.Pull(out)
		r.Push(constantInput(256, 0.5))
		out = r.Pull(out)
		steadyEnd := len(out)
		out = r.Flush(out)

		if len(out) < 20 {
			t.Fatalf("%v: too few output samples: %d", q, len(out))
		}
		// The last samples produced before Flush are past any filter
		// ramp-in and ahead of the flushed silence tail; check that this
		// steady state is within 1e-3 of the input amplitude.
		tail := out[steadyEnd-10 : steadyEnd]
		for _, v := range tail {
			if diff := v - 0.5; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("%v: steady-state sample %v not within 1e-3 of 0.5", q, v)
			}
		}
	}
}

func TestZeroOrderHoldUpsampleDoublesLength(t *testing.T) {
	r := New(24000, 48000, ZeroOrderHold)
	var out []float32
	out = r.Pull(out)
	r.Push(constantInput(100, 1.0))
	out = r.Pull(out)

	if len(out) < 190 || len(out) > 210 {
		t.Fatalf("expected roughly 2x output samples, got %d", len(out))
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	for _, q := range []Quality{ZeroOrderHold, Linear, Cubic, Sinc} {
		r := New(44100, 44100, q)
		var out []float32
		r.Push(constantInput(64, 0))
		out = r.Pull(out)
		for _, v := range out {
			if v != 0 {
				t.Fatalf("%v: expected bit-zero output for silent input, got %v", q, v)
			}
		}
	}
}
