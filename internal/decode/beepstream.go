package decode

import "github.com/gopxl/beep"

// BeepStream adapts any github.com/gopxl/beep decoder (WAV, OGG Vorbis, FLAC,
// MP3 via beep's sub-packages) to the Stream interface, grounded on the
// teacher's internal/streaming/music_player.go, which decodes OGG Vorbis
// through beep.StreamSeekCloser the same way. Because beep decoders read
// from a file under the hood, BeepStream is never realtime-safe and should
// always be wrapped in a BufferedStream.
type BeepStream struct {
	streamer beep.Streamer
	format   beep.Format
	scratch  [][2]float64
}

// NewBeepStream wraps a decoded beep.Streamer with its format.
func NewBeepStream(streamer beep.Streamer, format beep.Format) *BeepStream {
	return &BeepStream{streamer: streamer, format: format}
}

// NumChannels implements Stream. beep represents every decoded stream as
// [2]float64 frames regardless of the source file's original channel
// count, so BeepStream always reports stereo.
func (s *BeepStream) NumChannels() int { return 2 }

// SampleRate implements Stream.
func (s *BeepStream) SampleRate() float32 { return float32(s.format.SampleRate) }

// LengthInFrames implements Stream. Only beep.StreamSeekCloser exposes a
// length; plain beep.Streamer (e.g. an already-open live pipe) reports
// unknown.
func (s *BeepStream) LengthInFrames() (int64, bool) {
	if sc, ok := s.streamer.(beep.StreamSeekCloser); ok {
		return int64(sc.Len()), true
	}
	return 0, false
}

// RealtimeSafe implements Stream: beep decoders read from an underlying
// io.Reader (typically a file), so they can block.
func (s *BeepStream) RealtimeSafe() bool { return false }

// ReadSamplesFloat implements Stream by pulling beep frames and flattening
// its [][2]float64 samples into the mixer's interleaved float32 layout.
// Both channels of every beep frame are copied as they are; format.NumChannels
// is not consulted, since beep already yields two channels for mono files.
func (s *BeepStream) ReadSamplesFloat(out []float32, frames int) (int, error) {
	if cap(s.scratch) < frames {
		s.scratch = make([][2]float64, frames)
	}
	buf := s.scratch[:frames]

	n, ok := s.streamer.Stream(buf)
	if n > 0 {
		for i := 0; i < n; i++ {
			out[i*2] = float32(buf[i][0])
			out[i*2+1] = float32(buf[i][1])
		}
	}
	if !ok {
		return n, s.streamer.Err()
	}
	return n, nil
}
