package decode

import (
	"encoding/binary"
	"fmt"
)

// WAVStream is a minimal, fully in-memory 16-bit PCM WAV decode stream.
// It is realtime-safe (no I/O, no allocation on ReadSamplesFloat) because
// the whole file is parsed up front in NewWAVStream, generalizing the
// teacher's internal/streaming/audio.go loadWAV (which hardcoded mono
// 44100 Hz) to read the real channel count and sample rate from the
// header.
type WAVStream struct {
	channels   int
	sampleRate float32
	samples    []float32 // interleaved, -1..1
	pos        int       // next frame to read
}

// NewWAVStream parses a 16-bit PCM WAV file already loaded into memory.
func NewWAVStream(data []byte) (*WAVStream, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("decode: wav: file too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("decode: wav: not a RIFF/WAVE file")
	}

	var channels int
	var sampleRate uint32
	var bitsPerSample uint16
	var pcmOffset, pcmLen int

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if chunkID == "fmt " {
			if body+16 > len(data) {
				return nil, fmt.Errorf("decode: wav: truncated fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		} else if chunkID == "data" {
			pcmOffset = body
			pcmLen = chunkLen
		}
		pos = body + chunkLen
		if chunkLen%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("decode: wav: unsupported channel count %d", channels)
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("decode: wav: unsupported bit depth %d", bitsPerSample)
	}
	if pcmOffset == 0 || pcmOffset+pcmLen > len(data) {
		return nil, fmt.Errorf("decode: wav: missing or truncated data chunk")
	}

	raw := data[pcmOffset : pcmOffset+pcmLen]
	numSamples := len(raw) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768.0
	}

	return &WAVStream{
		channels:   channels,
		sampleRate: float32(sampleRate),
		samples:    samples,
	}, nil
}

// NumChannels implements Stream.
func (w *WAVStream) NumChannels() int { return w.channels }

// SampleRate implements Stream.
func (w *WAVStream) SampleRate() float32 { return w.sampleRate }

// LengthInFrames implements Stream.
func (w *WAVStream) LengthInFrames() (int64, bool) {
	return int64(len(w.samples) / w.channels), true
}

// RealtimeSafe implements Stream: reading from an in-memory slice never
// blocks or allocates.
func (w *WAVStream) RealtimeSafe() bool { return true }

// ReadSamplesFloat implements Stream.
func (w *WAVStream) ReadSamplesFloat(out []float32, frames int) (int, error) {
	totalFrames := len(w.samples) / w.channels
	remaining := totalFrames - w.pos
	if remaining <= 0 {
		return 0, nil
	}
	n := frames
	if n > remaining {
		n = remaining
	}
	copy(out[:n*w.channels], w.samples[w.pos*w.channels:(w.pos+n)*w.channels])
	w.pos += n
	return n, nil
}
