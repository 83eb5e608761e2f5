package main

import (
	"iter"
	"slices"
)

// Smallest useful segment lengths: c=[±2] renders as ">++<", j=(1,1) as "+>-".
const (
	minCSeg = 4
	minJSeg = 2
)

// Enumerator produces the initialization shapes of a given rendered length.
// Segment bounds are rendered symbols. Zero maxima mean "unbounded".
type Enumerator struct {
	MinSlen int
	MaxSlen int
	MinClen int
	MaxClen int
}

// NewEnumerator builds an enumerator from the segment bounds of cfg. Config
// c-lengths leave out the last return "<" of the segment.
func NewEnumerator(cfg Config) *Enumerator {
	e := &Enumerator{
		MinSlen: cfg.MinSlen,
		MaxSlen: cfg.MaxSlen,
		MinClen: cfg.MinClen + 1,
	}
	if cfg.MaxClen > 0 {
		e.MaxClen = cfg.MaxClen + 1
	}
	return e
}

// ── Term lists ──────────────────────────────────────────────────────

// termRule describes how a segment list spends its symbol budget.
type termRule struct {
	// overhead is the number of symbols each term costs besides its magnitude.
	overhead int
	// firstNonZero forbids a zero first term.
	firstNonZero bool
}

var (
	// s-terms are followed by "<" (or the loop "[" for s0).
	sRule = termRule{overhead: 1, firstNonZero: true}
	// c-terms cost one ">" and one return "<".
	cRule = termRule{overhead: 2}
)

// termLists yields every signed list whose rendering spends exactly budget
// symbols under rule. The last term is always nonzero. Values at each
// position are tried from most negative to most positive. The yielded slice
// is reused between iterations.
//
// The walk is an explicit-stack odometer rather than recursion: rems[i] holds
// the budget left before term i was placed, so backtracking is a pop.
func termLists(budget int, rule termRule) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if budget <= rule.overhead {
			return
		}
		terms := make([]int, 0, budget)
		rems := make([]int, 0, budget)
		rem := budget
		next := -(rem - rule.overhead)

		pop := func() bool {
			if len(terms) == 0 {
				return false
			}
			last := len(terms) - 1
			rem = rems[last]
			next = terms[last] + 1
			terms = terms[:last]
			rems = rems[:last]
			return true
		}

		for {
			if next > rem-rule.overhead {
				if !pop() {
					return
				}
				continue
			}
			v := next
			after := rem - abs(v) - rule.overhead
			if len(terms) == 0 && rule.firstNonZero && v == 0 {
				next++
				continue
			}
			// a remainder too small to hold a nonzero term is a dead end
			if !(after == 0 && v != 0) && after <= rule.overhead {
				next++
				continue
			}
			terms = append(terms, v)
			rems = append(rems, rem)
			if after == 0 {
				if !yield(terms) {
					return
				}
				pop()
				continue
			}
			rem = after
			next = -(rem - rule.overhead)
		}
	}
}

// kPairs yields every (k0, k1) with |k0|+|k1| == n.
func kPairs(n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if n == 0 {
			yield(0, 0)
			return
		}
		if !yield(-n, 0) {
			return
		}
		for i := 1 - n; i < n; i++ {
			k1 := n - abs(i)
			if !yield(i, k1) || !yield(i, -k1) {
				return
			}
		}
		yield(n, 0)
	}
}

func hValues(n int) []int {
	if n == 0 {
		return []int{0}
	}
	return []int{-n, n}
}

// ── Shapes ──────────────────────────────────────────────────────────

// Shapes lazily yields every shape whose rendered prefix is exactly length
// symbols long. Each segment's length is capped by what the remaining
// segments need at minimum, so no partial shape is extended past length.
// Calling Shapes again restarts the sequence.
func (e *Enumerator) Shapes(length int) iter.Seq[Shape] {
	return func(yield func(Shape) bool) {
		free := length - templateOverhead

		sMin := max(e.MinSlen, 1)
		sMax := free - minCSeg - minJSeg
		if e.MaxSlen > 0 {
			sMax = min(sMax, e.MaxSlen)
		}
		for sl := sMin; sl <= sMax; sl++ {
			for sTerms := range termLists(sl+1, sRule) {
				s := slices.Clone(sTerms)

				cMin := max(e.MinClen, minCSeg)
				cMax := free - sl - minJSeg
				if e.MaxClen > 0 {
					cMax = min(cMax, e.MaxClen)
				}
				for cl := cMin; cl <= cMax; cl++ {
					for cTerms := range termLists(cl, cRule) {
						c := slices.Clone(cTerms)

						for kl := 0; kl <= free-sl-cl-minJSeg; kl++ {
							for k0, k1 := range kPairs(kl) {
								for jl := minJSeg; jl <= free-sl-cl-kl; jl++ {
									hl := free - sl - cl - kl - jl
									for j1 := 1; j1 < jl; j1++ {
										for _, h := range hValues(hl) {
											shape := Shape{S: s, K0: k0, K1: k1, J0: jl - j1, J1: j1, C: c, H: h}
											if !yield(shape) {
												return
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}
