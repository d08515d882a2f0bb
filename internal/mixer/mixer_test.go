package mixer

import (
	"encoding/binary"
	"testing"

	"gomixer/internal/decode"
	"gomixer/internal/sink"
)

func makeWAV(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
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

func oneShotWAV(t *testing.T, frames int) []byte {
	t.Helper()
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = 32767
	}
	return makeWAV(t, 48000, samples)
}

func newTestMixer(t *testing.T, numChannels int) (*Mixer, *sink.NullSink) {
	t.Helper()
	ns := &sink.NullSink{}
	opts := DefaultOptions()
	opts.NumChannels = numChannels
	m := New(opts, ns)
	if m.IsErrored() {
		t.Fatalf("mixer errored at construction: %s", m.LastErrorString())
	}
	return m, ns
}

func TestSilenceWhenEmpty(t *testing.T) {
	m, ns := newTestMixer(t, 4)
	got := ns.Pump(128)
	if got != 128 {
		t.Fatalf("expected 128 frames, got %d", got)
	}
	if m.Stats().ActiveChannels != 0 {
		t.Fatalf("expected no active channels on an empty mixer")
	}
}

func TestOneShotWAVPlaysAndFinishes(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 100))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	opts := DefaultPlayOptions()
	opts.CrossFadeOutSecs = 0
	m.Play(src, opts)

	if m.Stats().ActiveChannels != 1 {
		t.Fatalf("expected 1 active channel right after play")
	}

	for i := 0; i < 20; i++ {
		ns.Pump(64)
	}

	if m.Stats().ActiveChannels != 0 {
		t.Fatalf("expected the one-shot source to finish and free its channel")
	}
}

func TestLoopTwice(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 50))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	opts := DefaultPlayOptions()
	opts.LoopCount = 2
	opts.CrossFadeOutSecs = 0
	m.Play(src, opts)

	for i := 0; i < 5; i++ {
		ns.Pump(64)
		if m.Stats().ActiveChannels == 0 {
			break
		}
	}
	if m.Stats().ActiveChannels != 0 {
		t.Fatalf("expected channel to free itself after two loops of a 50-frame source")
	}
}

func TestDelayedStartWithholdsAudioThenPlays(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 4000))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	opts := DefaultPlayOptions()
	opts.DelayBeforePlay = 1.0 // 48000 frames at 48kHz
	opts.CrossFadeOutSecs = 0
	m.Play(src, opts)

	if m.Stats().ActiveChannels != 1 {
		t.Fatalf("a pending delayed start still occupies its channel")
	}

	ns.Pump(256)
	if m.Stats().ActiveChannels != 1 {
		t.Fatalf("channel should still be pending well before the 1s delay elapses")
	}
}

func TestCrossFadeOnSameChannel(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	streamA, err := decode.NewWAVStream(oneShotWAV(t, 10000))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	srcA, err := m.NewSource(streamA)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	streamB, err := decode.NewWAVStream(oneShotWAV(t, 10000))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	srcB, err := m.NewSource(streamB)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	optsA := DefaultPlayOptions()
	optsA.Channel = 0
	m.Play(srcA, optsA)
	ns.Pump(256)

	optsB := DefaultPlayOptions()
	optsB.Channel = 0
	optsB.CrossFadeInSecs = 0.02
	optsB.CrossFadeOutSecs = 0.02
	m.Play(srcB, optsB)

	// Both slots of channel 0 should be occupied mid-crossfade.
	if m.channels[0].Slot0Idle() {
		t.Fatalf("channel 0 slot 0 should hold the new sound")
	}
	if m.channels[0].slots[1].loopCount == 0 {
		t.Fatalf("channel 0 slot 1 should be fading out the superseded sound")
	}

	for i := 0; i < 4; i++ {
		ns.Pump(1024)
	}
	if m.channels[0].slots[1].loopCount != 0 {
		t.Fatalf("the superseded sound should have finished fading out")
	}
}

func TestMasterGainMuteThenUnmute(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 20000))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	m.Play(src, DefaultPlayOptions())

	// Play a few blocks at unity master gain before muting.
	for i := 0; i < 20; i++ {
		ns.Pump(64)
	}

	m.SetMasterVolume(0)
	for i := 0; i < 60; i++ {
		ns.Pump(64)
	}
	if g := m.terminalGain.Value(); g > 0.01 {
		t.Fatalf("expected terminal gain to settle near 0 after mute, got %v", g)
	}

	m.SetMasterVolume(1)
	for i := 0; i < 60; i++ {
		ns.Pump(64)
	}
	if g := m.terminalGain.Value(); g < 0.99 {
		t.Fatalf("expected terminal gain to settle near 1 after unmute, got %v", g)
	}
}

func TestStopFadesOutAndFreesChannel(t *testing.T) {
	m, ns := newTestMixer(t, 4)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 48000))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	opts := DefaultPlayOptions()
	opts.Channel = 0
	m.Play(src, opts)
	ns.Pump(256)

	m.Stop(0, 0.01)
	for i := 0; i < 50; i++ {
		ns.Pump(64)
		if m.Stats().ActiveChannels == 0 {
			break
		}
	}
	if m.Stats().ActiveChannels != 0 {
		t.Fatalf("expected Stop to fade the channel out and free it")
	}
}

func TestPlayOnOutOfRangeChannelIsANoOp(t *testing.T) {
	m, ns := newTestMixer(t, 2)

	stream, err := decode.NewWAVStream(oneShotWAV(t, 100))
	if err != nil {
		t.Fatalf("NewWAVStream: %v", err)
	}
	src, err := m.NewSource(stream)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	opts := DefaultPlayOptions()
	opts.Channel = 5
	m.Play(src, opts)

	if m.Stats().ActiveChannels != 0 {
		t.Fatalf("an out-of-range channel request must not start playback")
	}
	ns.Pump(64)
}
