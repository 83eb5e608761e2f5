package main

import (
	"iter"
)

// CandidateState is a cell that can emit one output byte.
type CandidateState struct {
	Iteration int
	Offset    int
	Value     byte
}

// Catalog indexes the candidate states of one shape by value and by offset.
type Catalog struct {
	Exit       int
	MaxPointer int

	states   []CandidateState
	byValue  [256][]int
	byOffset []int // index into states, -1 when filtered out
	// tape is the exit tape over [0, MaxPointer], filtered cells included;
	// nil for catalogs built from explicit states
	tape []byte
}

// NewCatalog collects every cell of the exit tape that could plausibly emit
// a byte of goal: it must be reachable from the exit within the pointer
// budget of len(goal) nodes, and adjustable to some goal byte within one
// node's cost.
func NewCatalog(tr *Trace, goal []byte, maxNodeCost int) *Catalog {
	return scanCatalog(tr, goal, maxNodeCost, len(goal)*(maxNodeCost-1))
}

// NewLoopCatalog is NewCatalog over the whole window: a zero-seeking loop
// can carry the pointer any distance in one node.
func NewLoopCatalog(tr *Trace, goal []byte, maxNodeCost int) *Catalog {
	return scanCatalog(tr, goal, maxNodeCost, tr.MaxPointer)
}

func scanCatalog(tr *Trace, goal []byte, maxNodeCost, reach int) *Catalog {

	var present [256]bool
	var distinct []byte
	for _, b := range goal {
		if !present[b] {
			present[b] = true
			distinct = append(distinct, b)
		}
	}

	var states []CandidateState
	for o := max(0, tr.Exit-reach); o <= min(tr.MaxPointer, tr.Exit+reach); o++ {
		v := tr.Tape[o]
		adj := 256
		for _, t := range distinct {
			adj = min(adj, AdjustCost(v, t))
		}
		if adj+1 > maxNodeCost {
			continue
		}
		states = append(states, CandidateState{Iteration: tr.Written[o], Offset: o, Value: v})
	}
	c := CatalogOf(tr.Exit, tr.MaxPointer, states)
	c.tape = tr.Tape[:tr.MaxPointer+1]
	return c
}

// CatalogOf builds a catalog from explicit states. States are not checked
// against the window here; the planner rejects out-of-window states.
func CatalogOf(exit, maxPointer int, states []CandidateState) *Catalog {
	c := &Catalog{
		Exit:       exit,
		MaxPointer: maxPointer,
		states:     states,
		byOffset:   make([]int, maxPointer+1),
	}
	for i := range c.byOffset {
		c.byOffset[i] = -1
	}
	for i, s := range states {
		c.byValue[s.Value] = append(c.byValue[s.Value], i)
		if s.Offset >= 0 && s.Offset <= maxPointer {
			c.byOffset[s.Offset] = i
		}
	}
	return c
}

// Len is the number of states.
func (c *Catalog) Len() int { return len(c.states) }

// States iterates all states in offset order.
func (c *Catalog) States() iter.Seq[CandidateState] {
	return func(yield func(CandidateState) bool) {
		for _, s := range c.states {
			if !yield(s) {
				return
			}
		}
	}
}

// ByValue returns the states holding v.
func (c *Catalog) ByValue(v byte) []CandidateState {
	idx := c.byValue[v]
	out := make([]CandidateState, len(idx))
	for i, j := range idx {
		out[i] = c.states[j]
	}
	return out
}

// At returns the state at offset, if catalogued.
func (c *Catalog) At(offset int) (CandidateState, bool) {
	if offset < 0 || offset >= len(c.byOffset) || c.byOffset[offset] < 0 {
		return CandidateState{}, false
	}
	return c.states[c.byOffset[offset]], true
}

// checkWindow reports the first state outside [0, MaxPointer].
func (c *Catalog) checkWindow() (CandidateState, bool) {
	for _, s := range c.states {
		if s.Offset < 0 || s.Offset > c.MaxPointer {
			return s, false
		}
	}
	return CandidateState{}, true
}
