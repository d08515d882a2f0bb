// Package chunked implements a grow-only sequence allocated in fixed
// power-of-two blocks, so indexing never has to move already-written data —
// important because decoded-and-resampled audio is held in memory for the
// lifetime of a source, and sources can be re-triggered at any time.
package chunked

// Vec is a grow-only sequence of T, stored in power-of-two chunks.
// Chunks are allocated lazily on first write and never moved, so a pointer
// into chunk data stays valid for the lifetime of the Vec.
type Vec[T any] struct {
	chunkLen uint32 // power of two
	shift    uint32
	mask     uint32
	chunks   [][]T
	length   uint32
}

// New creates a Vec whose chunks hold chunkLen elements. chunkLen must be a
// power of two.
func New[T any](chunkLen uint32) *Vec[T] {
	if chunkLen == 0 || chunkLen&(chunkLen-1) != 0 {
		panic("chunked: chunkLen must be a power of two")
	}
	shift := uint32(0)
	for (uint32(1) << shift) < chunkLen {
		shift++
	}
	return &Vec[T]{
		chunkLen: chunkLen,
		shift:    shift,
		mask:     chunkLen - 1,
	}
}

// Len returns the number of elements pushed so far.
func (v *Vec[T]) Len() uint32 { return v.length }

// PushBack appends x, lazily allocating a new chunk when the current one is
// full.
func (v *Vec[T]) PushBack(x T) {
	chunkIdx := v.length >> v.shift
	offset := v.length & v.mask
	for int(chunkIdx) >= len(v.chunks) {
		v.chunks = append(v.chunks, make([]T, v.chunkLen))
	}
	v.chunks[chunkIdx][offset] = x
	v.length++
}

// Index returns the element at position n. n must be < Len().
func (v *Vec[T]) Index(n uint32) T {
	return v.chunks[n>>v.shift][n&v.mask]
}

// Set overwrites the element at position n. n must be < Len().
func (v *Vec[T]) Set(n uint32, x T) {
	v.chunks[n>>v.shift][n&v.mask] = x
}

// Reset truncates the Vec back to zero length without freeing its chunks —
// the next PushBack sequence reuses the already-allocated backing storage.
func (v *Vec[T]) Reset() {
	v.length = 0
}
