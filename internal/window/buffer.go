// Package window provides fixed-capacity sliding windows of samples.
package window

import "fmt"

// Buffer is a ring of float64 samples. Push is O(1) and evicts the oldest
// sample once the buffer is full. A Buffer has a single writer; readers
// receive copies via Snapshot.
type Buffer struct {
	data []float64
	head int // index of the oldest sample
	size int
}

// New returns a full buffer of the given capacity with every slot set to fill.
func New(capacity int, fill float64) *Buffer {
	b := NewEmpty(capacity)
	for i := range b.data {
		b.data[i] = fill
	}
	b.size = capacity
	return b
}

// NewEmpty returns a buffer that grows from zero up to capacity.
func NewEmpty(capacity int) *Buffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("window: non-positive capacity %d", capacity))
	}
	return &Buffer{data: make([]float64, capacity)}
}

// Push appends v, dropping the oldest sample when full.
func (b *Buffer) Push(v float64) {
	c := len(b.data)
	if b.size < c {
		b.data[(b.head+b.size)%c] = v
		b.size++
		return
	}
	b.data[b.head] = v
	b.head = (b.head + 1) % c
}

// Snapshot returns the samples oldest to newest in a freshly allocated slice.
func (b *Buffer) Snapshot() []float64 {
	out := make([]float64, b.size)
	c := len(b.data)
	n := copy(out, b.data[b.head:min(c, b.head+b.size)])
	copy(out[n:], b.data[:b.size-n])
	return out
}

func (b *Buffer) Len() int { return b.size }
func (b *Buffer) Cap() int { return len(b.data) }

// Last returns the newest sample.
func (b *Buffer) Last() (float64, bool) {
	if b.size == 0 {
		return 0, false
	}
	return b.data[(b.head+b.size-1)%len(b.data)], true
}

// MinMax returns the smallest and largest samples currently held.
func (b *Buffer) MinMax() (lo, hi float64, ok bool) {
	if b.size == 0 {
		return 0, 0, false
	}
	c := len(b.data)
	lo = b.data[b.head]
	hi = lo
	for i := 1; i < b.size; i++ {
		v := b.data[(b.head+i)%c]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
