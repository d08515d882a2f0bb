package source

import (
	"encoding/binary"
	"testing"

	"gomixer/internal/decode"
)

// makeWAV builds a minimal 16-bit PCM mono WAV file in memory for tests.
func makeWAV(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(s))
	}
	return buf
}

type fakeMixerRate struct{ rate float32 }

func (f fakeMixerRate) SampleRate() float32 { return f.rate }

func TestSourceLoopCountOneTotalLength(t *testing.T) {
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 32767
	}
	wavBytes := makeWAV(t, 48000, samples)
	stream, err := decode.NewWAVStream(wavBytes)
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := NewAudioSource(stream)
	if err != nil {
		t.Fatalf("NewAudioSource: %v", err)
	}
	src.PrepareToPlay(fakeMixerRate{rate: 48000})

	left := make([]float32, 128)
	right := make([]float32, 128)
	ramp := make([]float32, 128)
	for i := range ramp {
		ramp[i] = 1
	}
	var frameOffset int32
	loopCount := uint32(1)
	src.MixIntoBuffer([2][]float32{left, right}, 128, &frameOffset, &loopCount, ramp, [2]float32{1, 1})

	nonZero := 0
	for _, v := range left {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero != 100 {
		t.Fatalf("expected exactly 100 non-zero samples for a 100-frame one-shot source, got %d", nonZero)
	}
	if loopCount != 0 {
		t.Fatalf("loopCount should reach 0 after the single loop finishes, got %d", loopCount)
	}
}

func TestUnsupportedChannelCountRejected(t *testing.T) {
	// A stream reporting 3 channels must be rejected at load time.
	s := &fixedChannelStream{channels: 3}
	if _, err := NewAudioSource(s); err == nil {
		t.Fatal("expected an error for a 3-channel source")
	}
}

type fixedChannelStream struct{ channels int }

func (f *fixedChannelStream) NumChannels() int                  { return f.channels }
func (f *fixedChannelStream) SampleRate() float32                { return 48000 }
func (f *fixedChannelStream) LengthInFrames() (int64, bool)      { return 0, false }
func (f *fixedChannelStream) RealtimeSafe() bool                 { return true }
func (f *fixedChannelStream) ReadSamplesFloat(out []float32, n int) (int, error) {
	return 0, nil
}
