package main

import (
	"github.com/cespare/xxhash/v2"
)

// Termination is the reason a counted loop stopped being simulated.
type Termination int

const (
	// Halted means the counter cell reached zero and the loop exited.
	Halted Termination = iota
	// Cycle means the live window repeated; the loop would only march right.
	Cycle
	// LoopLimit means the outer loop ran more than maxLoops iterations.
	LoopLimit
	// TapeLimit means the pointer reached the right edge of the tape window.
	TapeLimit
	// Diverged means an inner loop never returns its counter to zero.
	Diverged
)

var terminationNames = [...]string{"halted", "cycle", "loop-limit", "tape-limit", "diverged"}

func (t Termination) String() string {
	if int(t) < len(terminationNames) {
		return terminationNames[t]
	}
	return "unknown"
}

// TapeBounds limits a single simulation.
type TapeBounds struct {
	MaxTape  int
	MaxLoops int
}

// firstCell is the offset of s0; offsets 0 and 1 are guard cells.
const firstCell = 2

// Trace is the result of simulating one shape's counted loop.
type Trace struct {
	Shape Shape
	// Tape holds the exit values over [0, MaxPointer].
	Tape []byte
	// Written[o] is the iteration that last wrote offset o, 0 for the prefix
	// or for cells never written.
	Written    []int
	Exit       int
	Iterations int
	MaxPointer int

	bounds TapeBounds
}

// LoopSnapshot is the tape after a given number of outer iterations.
type LoopSnapshot struct {
	Iteration int
	Pointer   int
	Counter   byte
	Tape      []byte
}

// ── Simulation ──────────────────────────────────────────────────────

// loopRun carries the mutable state of one simulation.
type loopRun struct {
	shape   *Shape
	tape    []byte
	written []int
	p       int
	it      int
	stop    int
}

func newLoopRun(shape *Shape, maxTape int) *loopRun {
	size := max(maxTape, firstCell+len(shape.S)) + 2
	r := &loopRun{
		shape:   shape,
		tape:    make([]byte, size),
		written: make([]int, size),
		p:       firstCell,
		stop:    maxTape - len(shape.C),
	}
	for i, v := range shape.S {
		r.tape[firstCell+i] = addByte(0, v)
	}
	return r
}

// step runs one pass of the outer loop body. The inner loop is solved in
// closed form: it runs n times where n*j1 ≡ counter (mod 256), adding j0 to
// the cell left of the counter and c_i to the i-th cell right of it on every
// pass.
func (r *loopRun) step() bool {
	sh := r.shape
	r.it++
	p := r.p
	r.tape[p] = addByte(r.tape[p], sh.K0)
	n, ok := loopCount(r.tape[p], sh.J1)
	if !ok {
		return false
	}
	if n > 0 {
		r.tape[p-1] = addByte(r.tape[p-1], n*sh.J0)
		r.written[p-1] = r.it
		for i, c := range sh.C {
			r.tape[p+1+i] = addByte(r.tape[p+1+i], n*c)
			r.written[p+1+i] = r.it
		}
	}
	r.tape[p] = addByte(0, sh.H)
	r.written[p] = r.it
	r.p++
	r.tape[r.p] = addByte(r.tape[r.p], sh.K1)
	r.written[r.p] = r.it
	return true
}

// window is the part of the tape that still influences the loop: the
// counter and the cells the c-segment writes.
func (r *loopRun) window() []byte {
	return r.tape[r.p : r.p+len(r.shape.C)+1]
}

// Simulate runs the counted loop of shape within bounds. A non-nil trace is
// returned only for Halted.
func Simulate(shape Shape, bounds TapeBounds) (*Trace, Termination) {
	r := newLoopRun(&shape, bounds.MaxTape)
	lastSeed := firstCell + len(shape.S) - 1
	var seen map[uint64]struct{}

	for r.tape[r.p] != 0 {
		if r.p >= r.stop {
			return nil, TapeLimit
		}
		if r.it >= bounds.MaxLoops {
			return nil, LoopLimit
		}
		if !r.step() {
			return nil, Diverged
		}
		if r.p > lastSeed && r.tape[r.p] != 0 {
			if seen == nil {
				seen = make(map[uint64]struct{})
			}
			h := xxhash.Sum64(r.window())
			if _, dup := seen[h]; dup {
				return nil, Cycle
			}
			seen[h] = struct{}{}
		}
	}

	maxPtr := r.p + len(shape.C) + 1
	return &Trace{
		Shape:      shape,
		Tape:       r.tape[:maxPtr+1],
		Written:    r.written[:maxPtr+1],
		Exit:       r.p,
		Iterations: r.it,
		MaxPointer: maxPtr,
		bounds:     bounds,
	}, Halted
}

// Snapshot replays the loop and returns the tape after iteration i
// (0 = right after the prefix). i is clamped to the trace's iteration count.
func (t *Trace) Snapshot(i int) LoopSnapshot {
	i = max(0, min(i, t.Iterations))
	r := newLoopRun(&t.Shape, t.bounds.MaxTape)
	for r.it < i {
		r.step()
	}
	return LoopSnapshot{
		Iteration: i,
		Pointer:   r.p,
		Counter:   r.tape[r.p],
		Tape:      append([]byte(nil), r.tape[:t.MaxPointer+1]...),
	}
}

// InSpan reports whether the trace's used window fits [minTape, maxTape].
func (t *Trace) InSpan(minTape, maxTape int) bool {
	return t.Exit > 0 && t.MaxPointer >= minTape && t.MaxPointer <= maxTape
}
