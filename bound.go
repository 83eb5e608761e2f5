package main

import "sync/atomic"

// SearchBound is the shared exclusive upper bound on total program length:
// only programs strictly shorter than Load() are of interest. It never
// increases.
type SearchBound struct {
	v atomic.Int64
}

// NewSearchBound admits programs of up to limit symbols.
func NewSearchBound(limit int) *SearchBound {
	b := &SearchBound{}
	b.v.Store(int64(limit) + 1)
	return b
}

// Load returns the current bound.
func (b *SearchBound) Load() int {
	return int(b.v.Load())
}

// Admits reports whether a program of total length fits under the bound.
func (b *SearchBound) Admits(total int) bool {
	return total < b.Load()
}

// TryLower sets the bound to v if v is strictly smaller than the current
// value and reports whether it did.
func (b *SearchBound) TryLower(v int) bool {
	nv := int64(v)
	for {
		cur := b.v.Load()
		if nv >= cur {
			return false
		}
		if b.v.CompareAndSwap(cur, nv) {
			return true
		}
	}
}
