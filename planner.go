package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvariant reports a logic fault inside the search, never a plain miss.
var ErrInvariant = errors.New("invariant violated")

// Outcome is the result class of one planning attempt.
type Outcome int

const (
	// Exhausted means the whole tree was searched without a plan under the limit.
	Exhausted Outcome = iota
	// Found means a plan under the limit was returned.
	Found
	// Pruned means the search was cut short: cancelled, or over budget from the start.
	Pruned
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Pruned:
		return "pruned"
	default:
		return "exhausted"
	}
}

// Move is how a step reaches its cell and prints.
type Move uint8

const (
	// Walk moves with a run of '<' or '>'.
	Walk Move = iota
	// ZipLeft steps over Skip zero cells, runs "[<]" to the zero at Via,
	// then walks.
	ZipLeft
	// ZipRight is ZipLeft mirrored with "[>]".
	ZipRight
	// RollLeft walks, adjusts, then prints with "[.<]" every cell down to
	// the zero at Via.
	RollLeft
	// RollRight is RollLeft mirrored with "[.>]".
	RollRight
	// Rolled bytes are printed by the roll before them and cost nothing.
	Rolled
)

func (m Move) String() string {
	switch m {
	case Walk:
		return "walk"
	case ZipLeft:
		return "zip-left"
	case ZipRight:
		return "zip-right"
	case RollLeft:
		return "roll-left"
	case RollRight:
		return "roll-right"
	case Rolled:
		return "rolled"
	default:
		return "unknown"
	}
}

// zip and roll loops cost their brackets plus one move or print
const (
	zipOverhead  = 3
	rollOverhead = 4
)

// PlanStep emits one byte: move to Offset, adjust From to To, print.
type PlanStep struct {
	Offset int
	Cost   int
	From   byte
	To     byte
	Move   Move
	Skip   int
	Via    int
}

// EmissionPlan is the cheapest tail found for one catalog.
type EmissionPlan struct {
	Start int
	Steps []PlanStep
	Cost  int
}

// Touched returns the distinct offsets the plan prints from, ascending.
func (p *EmissionPlan) Touched() []int {
	out := make([]int, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Offset)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// PlanResult carries the outcome, the plan when Found, and the number of
// search nodes expanded.
type PlanResult struct {
	Outcome Outcome
	Plan    EmissionPlan
	Nodes   int
}

// ── Planner ─────────────────────────────────────────────────────────

// Planner searches for the cheapest ordered emission of a goal text.
type Planner struct {
	goal        []byte
	maxNodeCost int
	unique      bool
	loops       bool

	// lb[i] is a lower bound on the cost of emitting goal[i:].
	lb []int

	bound    *SearchBound
	shapeLen int
}

// NewPlanner creates a planner for goal.
func NewPlanner(goal []byte, maxNodeCost int, uniqueCells bool) *Planner {
	return &Planner{
		goal:        goal,
		maxNodeCost: maxNodeCost,
		unique:      uniqueCells,
		lb:          lowerBounds(goal, false),
	}
}

// WithTailLoops returns a planner that may also zip to zero cells and roll
// runs of cells out with one print loop. It needs catalogs that carry their
// tape.
func (p *Planner) WithTailLoops() *Planner {
	c := *p
	c.loops = true
	c.lb = lowerBounds(p.goal, true)
	return &c
}

func lowerBounds(goal []byte, loops bool) []int {
	n := len(goal)
	lb := make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		// a byte equal to its predecessor can be printed again for one symbol;
		// any other byte needs at least one move or adjustment first.
		// A roll ends on a zero cell, which prints a zero byte for free.
		c := 2
		if i == 0 || goal[i] == goal[i-1] || (loops && goal[i] == 0) {
			c = 1
		}
		lb[i] = lb[i+1] + c
		if !loops || goal[i] == 0 {
			continue
		}
		for r := 2; i+r <= n && goal[i+r-1] != 0; r++ {
			lb[i] = min(lb[i], rollOverhead+lb[i+r])
		}
	}
	return lb
}

// ForShape returns a planner that also prunes against the shared bound for a
// prefix of shapeLen symbols.
func (p *Planner) ForShape(bound *SearchBound, shapeLen int) *Planner {
	c := *p
	c.bound = bound
	c.shapeLen = shapeLen
	return &c
}

// LowerBound is the least possible emission cost of the goal.
func (p *Planner) LowerBound() int { return p.lb[0] }

type candidate struct {
	offset int
	cost   int
	// est is cost plus the lower bound of what is left after the candidate
	est  int
	from byte
	move Move
	skip int
	via  int
	run  int
}

type planSearch struct {
	*Planner
	ctx    context.Context
	cat    *Catalog
	budget int

	steps     []PlanStep
	best      int
	bestSteps []PlanStep
	bufs      [][]candidate
	nodes     int
	cancelled bool
}

// Plan finds the cheapest emission whose cost is at most budget and which,
// added to the shape length, stays under the shared bound.
func (p *Planner) Plan(ctx context.Context, cat *Catalog, budget int) (PlanResult, error) {
	if cat.Exit < 0 || cat.Exit > cat.MaxPointer {
		return PlanResult{}, fmt.Errorf("loop exit %d outside [0, %d]: %w", cat.Exit, cat.MaxPointer, ErrInvariant)
	}
	if s, ok := cat.checkWindow(); !ok {
		return PlanResult{}, fmt.Errorf("state at offset %d outside [0, %d]: %w", s.Offset, cat.MaxPointer, ErrInvariant)
	}

	s := &planSearch{
		Planner: p,
		ctx:     ctx,
		cat:     cat,
		budget:  budget,
		steps:   make([]PlanStep, 0, len(p.goal)),
		best:    math.MaxInt,
		bufs:    make([][]candidate, len(p.goal)),
	}
	if ctx.Err() != nil || p.lb[0] > s.limit() {
		return PlanResult{Outcome: Pruned}, nil
	}
	s.expand(0, cat.Exit, 0)

	switch {
	case s.bestSteps != nil:
		return PlanResult{
			Outcome: Found,
			Plan:    EmissionPlan{Start: cat.Exit, Steps: s.bestSteps, Cost: s.best},
			Nodes:   s.nodes,
		}, nil
	case s.cancelled:
		return PlanResult{Outcome: Pruned, Nodes: s.nodes}, nil
	default:
		return PlanResult{Outcome: Exhausted, Nodes: s.nodes}, nil
	}
}

// limit is the largest emission cost still worth finding.
func (s *planSearch) limit() int {
	l := s.budget
	if s.best != math.MaxInt {
		l = min(l, s.best-1)
	}
	if s.bound != nil {
		l = min(l, s.bound.Load()-s.shapeLen-1)
	}
	return l
}

// value is the current byte at offset: the last write of the partial plan,
// or the catalogued exit value.
func (s *planSearch) value(offset int) (byte, bool) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		if s.steps[i].Offset == offset {
			return s.steps[i].To, true
		}
	}
	st, ok := s.cat.At(offset)
	return st.Value, ok
}

// raw is the current byte of any cell in the window, catalogued or not.
func (s *planSearch) raw(offset int) byte {
	for i := len(s.steps) - 1; i >= 0; i-- {
		if s.steps[i].Offset == offset {
			return s.steps[i].To
		}
	}
	return s.cat.tape[offset]
}

func (s *planSearch) inWindow(offset int) bool {
	return offset >= 0 && offset <= s.cat.MaxPointer
}

// zipFrom finds where "[<]" (dir -1) or "[>]" (dir 1) lands from ptr after
// stepping over the zero cells under the pointer.
func (s *planSearch) zipFrom(ptr, dir int) (skip, via int, ok bool) {
	x := ptr
	for s.inWindow(x) && s.raw(x) == 0 {
		x += dir
	}
	if !s.inWindow(x) {
		return 0, 0, false
	}
	skip = abs(x - ptr)
	for x += dir; s.inWindow(x) && s.raw(x) != 0; x += dir {
	}
	if !s.inWindow(x) {
		return 0, 0, false
	}
	return skip, x, true
}

// rollFrom checks that a print loop started on q, once q holds goal[i],
// prints exactly the next bytes of goal. It returns how many bytes and the
// zero cell it stops on.
func (s *planSearch) rollFrom(q, dir, i int) (run, via int, ok bool) {
	run = 1
	x := q + dir
	for ; s.inWindow(x) && s.raw(x) != 0; x += dir {
		if i+run >= len(s.goal) || s.raw(x) != s.goal[i+run] || (s.unique && s.used(x)) {
			return 0, 0, false
		}
		run++
	}
	if !s.inWindow(x) || run < 2 {
		return 0, 0, false
	}
	return run, x, true
}

func (s *planSearch) used(offset int) bool {
	for _, st := range s.steps {
		if st.Offset == offset {
			return true
		}
	}
	return false
}

func (s *planSearch) expand(i, ptr, acc int) {
	s.nodes++
	if s.nodes&0xff == 0 && s.ctx.Err() != nil {
		s.cancelled = true
		return
	}
	if i == len(s.goal) {
		s.best = acc
		s.bestSteps = slices.Clone(s.steps)
		return
	}
	lim := s.limit()
	if acc+s.lb[i] > lim {
		return
	}

	t := s.goal[i]
	reach := s.maxNodeCost - 1
	cands := s.bufs[i][:0]
	for o := max(0, ptr-reach); o <= min(s.cat.MaxPointer, ptr+reach); o++ {
		if s.unique && s.used(o) {
			continue
		}
		v, ok := s.value(o)
		if !ok {
			continue
		}
		c := MoveCost(ptr, o) + AdjustCost(v, t) + 1
		if c > s.maxNodeCost || acc+c+s.lb[i+1] > lim {
			continue
		}
		cands = append(cands, candidate{offset: o, cost: c, est: c + s.lb[i+1], from: v, run: 1})
	}
	if s.loops && s.cat.tape != nil {
		cands = s.zips(cands, i, ptr, acc, lim)
		cands = s.rolls(cands, i, ptr, acc, lim)
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return cmp.Compare(a.est, b.est) })
	s.bufs[i] = cands

	for _, c := range cands {
		// the bound may have tightened in a sibling subtree or another worker
		if acc+c.est > s.limit() {
			break
		}
		s.steps = append(s.steps, PlanStep{
			Offset: c.offset, Cost: c.cost, From: c.from, To: t,
			Move: c.move, Skip: c.skip, Via: c.via,
		})
		next := c.offset
		if c.move == RollLeft || c.move == RollRight {
			dir := 1
			if c.move == RollLeft {
				dir = -1
			}
			for k := 1; k < c.run; k++ {
				o := c.offset + dir*k
				v := s.raw(o)
				s.steps = append(s.steps, PlanStep{Offset: o, From: v, To: v, Move: Rolled})
			}
			next = c.via
		}
		s.expand(i+c.run, next, acc+c.cost)
		s.steps = s.steps[:len(s.steps)-c.run]
		if s.cancelled {
			return
		}
	}
}

// zips adds the cells reached more cheaply through a zero-seeking loop than
// by walking.
func (s *planSearch) zips(cands []candidate, i, ptr, acc, lim int) []candidate {
	t := s.goal[i]
	for _, move := range []Move{ZipLeft, ZipRight} {
		dir := -1
		if move == ZipRight {
			dir = 1
		}
		skip, via, ok := s.zipFrom(ptr, dir)
		if !ok {
			continue
		}
		base := skip + zipOverhead
		reach := s.maxNodeCost - 1 - base
		for o := max(0, via-reach); o <= min(s.cat.MaxPointer, via+reach); o++ {
			if s.unique && s.used(o) {
				continue
			}
			v, ok := s.value(o)
			if !ok {
				continue
			}
			a := AdjustCost(v, t)
			c := base + MoveCost(via, o) + a + 1
			if c > s.maxNodeCost || c >= MoveCost(ptr, o)+a+1 || acc+c+s.lb[i+1] > lim {
				continue
			}
			cands = append(cands, candidate{
				offset: o, cost: c, est: c + s.lb[i+1], from: v,
				move: move, skip: skip, via: via, run: 1,
			})
		}
	}
	return cands
}

// rolls adds the print loops that emit goal[i] and at least one more byte.
func (s *planSearch) rolls(cands []candidate, i, ptr, acc, lim int) []candidate {
	t := s.goal[i]
	if t == 0 {
		return cands
	}
	reach := s.maxNodeCost - rollOverhead
	for q := max(0, ptr-reach); q <= min(s.cat.MaxPointer, ptr+reach); q++ {
		if s.unique && s.used(q) {
			continue
		}
		v, ok := s.value(q)
		if !ok {
			continue
		}
		c := MoveCost(ptr, q) + AdjustCost(v, t) + rollOverhead
		if c > s.maxNodeCost {
			continue
		}
		for _, move := range []Move{RollLeft, RollRight} {
			dir := -1
			if move == RollRight {
				dir = 1
			}
			run, via, ok := s.rollFrom(q, dir, i)
			if !ok || acc+c+s.lb[i+run] > lim {
				continue
			}
			cands = append(cands, candidate{
				offset: q, cost: c, est: c + s.lb[i+run], from: v,
				move: move, via: via, run: run,
			})
		}
	}
	return cands
}
