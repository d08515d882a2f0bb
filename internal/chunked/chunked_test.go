package chunked

import "testing"

func TestPushBackAndIndexAcrossChunks(t *testing.T) {
	v := New[int](4)
	for i := 0; i < 37; i++ {
		v.PushBack(i)
	}
	if v.Len() != 37 {
		t.Fatalf("Len() = %d, want 37", v.Len())
	}
	for i := 0; i < 37; i++ {
		if got := v.Index(uint32(i)); got != i {
			t.Fatalf("Index(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non power-of-two chunk length")
		}
	}()
	New[int](3)
}

func TestMixIntoStraddlesChunkBoundary(t *testing.T) {
	v := NewFloat(4)
	for i := 0; i < 10; i++ {
		v.PushBack(1.0)
	}
	dst := make([]float32, 6)
	ramp := []float32{1, 1, 1, 1, 1, 1}
	v.MixInto(dst, 2, ramp, 2.0)
	for i, got := range dst {
		if got != 2.0 {
			t.Fatalf("dst[%d] = %v, want 2.0", i, got)
		}
	}
}

func TestMixIntoAccumulates(t *testing.T) {
	v := NewFloat(8)
	for i := 0; i < 4; i++ {
		v.PushBack(0.5)
	}
	dst := []float32{1, 1, 1, 1}
	ramp := []float32{1, 1, 1, 1}
	v.MixInto(dst, 0, ramp, 1.0)
	for i, got := range dst {
		if got != 1.5 {
			t.Fatalf("dst[%d] = %v, want 1.5", i, got)
		}
	}
}
