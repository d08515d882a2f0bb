package decode

import (
	"log"
	"sync"
	"sync/atomic"
)

// decodeIncrementSeconds bounds how much a single producer iteration asks
// the underlying stream for, so one slow decode call can't monopolise the
// ring for too long.
const decodeIncrementSeconds = 0.1

// BufferedStream wraps a Stream that is not realtime-safe with a producer
// goroutine decoding ahead into a ring buffer, so the real-time consumer
// (DecodedStream, running off the audio thread's call graph) never blocks
// on file I/O. The producer/consumer handshake uses a mutex plus two
// condition variables rather than lock-free indices, so the "stream
// finished" check happens atomically with the last partial copy.
type BufferedStream struct {
	inner      Stream
	channels   int
	frameBytes int // floats per frame = channels

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	ring     []float32 // interleaved, capacity frames worth
	capacity int       // in frames
	length   int       // valid frames currently buffered
	readPos  int       // frame index of the oldest buffered frame

	shouldDie      int32 // atomic
	streamFinished bool

	passthrough bool // inner is already realtime-safe; no producer thread needed

	wg sync.WaitGroup
}

// NewBufferedStream launches a producer goroutine over inner if inner is
// not realtime-safe; if it already is, NewBufferedStream returns a
// BufferedStream that simply forwards to inner with no extra thread, since
// wrapping it would add latency for no safety benefit.
func NewBufferedStream(inner Stream) *BufferedStream {
	channels := inner.NumChannels()
	capacitySeconds := 1.0
	capacity := int(capacitySeconds * float64(inner.SampleRate()))
	if capacity < 1 {
		capacity = 1
	}

	b := &BufferedStream{
		inner:      inner,
		channels:   channels,
		frameBytes: channels,
		capacity:   capacity,
		ring:       make([]float32, capacity*channels),
	}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)

	if !inner.RealtimeSafe() {
		b.wg.Add(1)
		go b.produce()
	} else {
		b.passthrough = true
	}

	return b
}

// NumChannels forwards to the wrapped stream.
func (b *BufferedStream) NumChannels() int { return b.channels }

// SampleRate forwards to the wrapped stream.
func (b *BufferedStream) SampleRate() float32 { return b.inner.SampleRate() }

// LengthInFrames forwards to the wrapped stream.
func (b *BufferedStream) LengthInFrames() (int64, bool) { return b.inner.LengthInFrames() }

// RealtimeSafe is always true once wrapped: the producer thread absorbs
// whatever blocking the underlying stream does.
func (b *BufferedStream) RealtimeSafe() bool { return true }

func (b *BufferedStream) produce() {
	defer b.wg.Done()

	increment := int(decodeIncrementSeconds * float64(b.inner.SampleRate()))
	if increment < 1 {
		increment = 1
	}
	scratch := make([]float32, increment*b.channels)

	for atomic.LoadInt32(&b.shouldDie) == 0 {
		b.mu.Lock()
		for b.capacity-b.length == 0 && atomic.LoadInt32(&b.shouldDie) == 0 {
			b.notFull.Wait()
		}
		if atomic.LoadInt32(&b.shouldDie) != 0 {
			b.mu.Unlock()
			return
		}
		room := b.capacity - b.length
		request := room
		if request > increment {
			request = increment
		}
		b.mu.Unlock()

		n, err := b.inner.ReadSamplesFloat(scratch[:request*b.channels], request)
		if err != nil {
			log.Printf("[decode] buffered producer read error: %v", err)
		}

		b.mu.Lock()
		if n < request {
			b.streamFinished = true
		}
		if n > 0 {
			b.appendLocked(scratch[:n*b.channels], n)
			b.notEmpty.Signal()
		} else if b.streamFinished {
			b.notEmpty.Signal()
		}
		b.mu.Unlock()
	}
}

func (b *BufferedStream) appendLocked(frames []float32, frameCount int) {
	writePos := (b.readPos + b.length) % b.capacity
	for i := 0; i < frameCount; i++ {
		dst := (writePos + i) % b.capacity
		copy(b.ring[dst*b.channels:(dst+1)*b.channels], frames[i*b.channels:(i+1)*b.channels])
	}
	b.length += frameCount
}

// ReadSamplesFloat implements Stream by draining the ring, waiting on
// notEmpty when it has nothing buffered yet and the producer hasn't
// finished.
func (b *BufferedStream) ReadSamplesFloat(out []float32, frames int) (int, error) {
	if b.passthrough {
		return b.inner.ReadSamplesFloat(out, frames)
	}

	got := 0
	for got < frames {
		b.mu.Lock()
		for b.length == 0 && !b.streamFinished {
			b.notEmpty.Wait()
		}
		if b.length == 0 && b.streamFinished {
			b.mu.Unlock()
			return got, nil
		}
		n := frames - got
		if n > b.length {
			n = b.length
		}
		for i := 0; i < n; i++ {
			src := (b.readPos + i) % b.capacity
			copy(out[(got+i)*b.channels:(got+i+1)*b.channels], b.ring[src*b.channels:(src+1)*b.channels])
		}
		b.readPos = (b.readPos + n) % b.capacity
		b.length -= n
		got += n
		b.notFull.Signal()
		b.mu.Unlock()

		if got < frames && b.finished() {
			return got, nil
		}
	}
	return got, nil
}

func (b *BufferedStream) finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamFinished && b.length == 0
}

// Close stops the producer goroutine (if any) and waits for it to exit.
func (b *BufferedStream) Close() {
	atomic.StoreInt32(&b.shouldDie, 1)
	b.mu.Lock()
	b.notFull.Signal()
	b.mu.Unlock()
	b.wg.Wait()
}
