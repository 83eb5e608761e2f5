package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// verifySteps bounds the reference machine when checking a solution.
const verifySteps = 1 << 30

// shapeBatch is the number of shapes handed to one worker task.
const shapeBatch = 256

// Solution is one improving program.
type Solution struct {
	Shape   Shape
	Prefix  string
	Length  int
	Plan    EmissionPlan
	Touched []int
	// Cells is the exit tape from offset CellsFrom up to the loop's reach.
	Cells     []byte
	CellsFrom int
	Program   string
}

// ReportFunc receives solutions in strictly improving order when the limit
// is rolling. An error stops the search.
type ReportFunc func(Solution) error

// ── Cruncher ────────────────────────────────────────────────────────

// Cruncher searches prefix lengths for the shortest program printing goal.
type Cruncher struct {
	cfg     Config
	goal    []byte
	enum    *Enumerator
	planner *Planner
	bound   *SearchBound

	log      *slog.Logger
	metrics  *Metrics
	store    *Store
	storeKey string
	searched Progress

	mu       sync.Mutex
	report   ReportFunc
	progress rate.Sometimes
}

// Option customizes a Cruncher.
type Option func(*Cruncher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Cruncher) { c.log = l } }

// WithMetrics records search counters.
func WithMetrics(m *Metrics) Option { return func(c *Cruncher) { c.metrics = m } }

// WithStore persists the best solution and finished lengths, and resumes
// from them.
func WithStore(s *Store) Option { return func(c *Cruncher) { c.store = s } }

// NewCruncher validates cfg and prepares a search for goal. Without a fixed
// limit a generous one is derived from goal and the limit rolls.
func NewCruncher(cfg Config, goal []byte, opts ...Option) (*Cruncher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(goal) == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidConfig)
	}
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit(goal)
		cfg.RollingLimit = true
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	planner := NewPlanner(goal, cfg.MaxNodeCost, cfg.UniqueCells)
	if cfg.TailLoops {
		planner = planner.WithTailLoops()
	}
	c := &Cruncher{
		cfg:      cfg,
		goal:     goal,
		enum:     NewEnumerator(cfg),
		planner:  planner,
		bound:    NewSearchBound(cfg.Limit),
		log:      discardLogger(),
		progress: rate.Sometimes{Interval: 2 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.storeKey = SearchKey(goal, cfg)
	return c, nil
}

// Config is the effective configuration, including a derived limit.
func (c *Cruncher) Config() Config { return c.cfg }

// Bound is the shared length bound.
func (c *Cruncher) Bound() *SearchBound { return c.bound }

// Run searches prefix lengths from MinInit upward until MaxInit, until no
// longer prefix could beat the bound, or until ctx is done.
func (c *Cruncher) Run(ctx context.Context, report ReportFunc) error {
	c.report = report
	start, err := c.resume()
	if err != nil {
		return err
	}

	for length := start; c.cfg.MaxInit == 0 || length <= c.cfg.MaxInit; length++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !c.bound.Admits(length + c.planner.LowerBound()) {
			c.log.Info("bound reached", "init-len", length, "bound", c.bound.Load())
			return nil
		}
		c.metrics.length(length)
		c.log.Info("init-len", "len", length, "limit", c.bound.Load()-1)
		if err := c.Crunch(ctx, length); err != nil {
			return err
		}
		if c.store != nil {
			c.searched.Through, c.searched.Bound = length, c.bound.Load()
			if err := c.store.MarkDone(c.storeKey, c.searched); err != nil {
				return err
			}
		}
	}
	return nil
}

// resume tightens the bound from a stored best and skips lengths a previous
// run already searched under a bound at least as loose as the current one.
// A fixed limit reports every admissible program, so it never skips.
func (c *Cruncher) resume() (int, error) {
	start := c.cfg.MinInit
	c.searched = Progress{From: start, Through: start - 1}
	if c.store == nil {
		return start, nil
	}
	if best, ok, err := c.store.Best(c.storeKey); err != nil {
		return 0, err
	} else if ok && c.cfg.RollingLimit && c.bound.TryLower(best.Length) {
		c.log.Info("resumed bound", "len", best.Length, "prefix", best.Prefix)
	}
	done, ok, err := c.store.Done(c.storeKey)
	if err != nil {
		return 0, err
	}
	switch {
	case !ok:
	case c.cfg.RollingLimit && done.Covers(start, c.bound.Load()):
		c.log.Info("resumed after", "init-len", done.Through, "bound", done.Bound)
		c.searched.From = done.From
		start = done.Through + 1
	default:
		c.log.Info("searching again", "from", done.From, "through", done.Through,
			"stored-bound", done.Bound, "bound", c.bound.Load())
	}
	return start, nil
}

// Crunch tries every shape of one prefix length on the worker pool.
func (c *Cruncher) Crunch(ctx context.Context, length int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	batch := make([]Shape, 0, shapeBatch)
	flush := func() {
		shapes := batch
		batch = make([]Shape, 0, shapeBatch)
		g.Go(func() error {
			for i := range shapes {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := c.tryShape(gctx, &shapes[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}

	for shape := range c.enum.Shapes(length) {
		if gctx.Err() != nil || !c.bound.Admits(length+c.planner.LowerBound()) {
			break
		}
		batch = append(batch, shape)
		if len(batch) == shapeBatch {
			flush()
		}
	}
	if len(batch) > 0 && gctx.Err() == nil {
		flush()
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Cruncher) tryShape(ctx context.Context, shape *Shape) error {
	if l := shape.Len(); l < c.cfg.MinInit || (c.cfg.MaxInit > 0 && l > c.cfg.MaxInit) {
		return nil
	}
	tr, term := Simulate(*shape, TapeBounds{MaxTape: c.cfg.MaxTape, MaxLoops: c.cfg.MaxLoops})
	c.metrics.shape(term)
	c.progress.Do(func() {
		c.log.Debug("shape", "key", shape.Key(), "termination", term)
	})
	if term != Halted || !tr.InSpan(c.cfg.MinTape, c.cfg.MaxTape) {
		return nil
	}

	var cat *Catalog
	if c.cfg.TailLoops {
		cat = NewLoopCatalog(tr, c.goal, c.cfg.MaxNodeCost)
	} else {
		cat = NewCatalog(tr, c.goal, c.cfg.MaxNodeCost)
	}
	pl := c.planner.ForShape(c.bound, shape.Len())
	res, err := pl.Plan(ctx, cat, c.bound.Load()-shape.Len()-1)
	if err != nil {
		return fmt.Errorf("plan %s: %w", shape.Key(), err)
	}
	c.metrics.plan(res)
	if res.Outcome != Found {
		return nil
	}
	return c.accept(tr, &res.Plan)
}

// accept reports a plan if it still improves on the bound. Holding mu across
// the bound update and the report keeps reports in decreasing order.
func (c *Cruncher) accept(tr *Trace, plan *EmissionPlan) error {
	total := tr.Shape.Len() + plan.Cost

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.RollingLimit {
		if !c.bound.TryLower(total) {
			return nil
		}
	} else if !c.bound.Admits(total) {
		return nil
	}

	sol := newSolution(tr, plan)
	if c.cfg.Verify {
		if err := c.verify(&sol); err != nil {
			return err
		}
	}
	c.metrics.solution(total)
	c.log.Debug("solution", "len", total, "prefix", sol.Prefix, "exit", plan.Start)
	if c.store != nil {
		if err := c.store.SaveBest(c.storeKey, &sol); err != nil {
			return err
		}
	}
	if c.report != nil {
		return c.report(sol)
	}
	return nil
}

func (c *Cruncher) verify(sol *Solution) error {
	m, err := Execute(sol.Program, verifySteps)
	if err != nil {
		return fmt.Errorf("verify %q: %w: %w", sol.Program, ErrInvariant, err)
	}
	if !bytes.Equal(m.Output(), c.goal) {
		return fmt.Errorf("verify %q printed %q: %w", sol.Program, m.Output(), ErrInvariant)
	}
	return nil
}

func newSolution(tr *Trace, plan *EmissionPlan) Solution {
	touched := plan.Touched()
	from := plan.Start
	if len(touched) > 0 {
		from = min(from, touched[0])
	}
	return Solution{
		Shape:     tr.Shape,
		Prefix:    tr.Shape.String(),
		Length:    tr.Shape.Len() + plan.Cost,
		Plan:      *plan,
		Touched:   touched,
		Cells:     append([]byte(nil), tr.Tape[from:tr.MaxPointer]...),
		CellsFrom: from,
		Program:   RenderProgram(&tr.Shape, plan),
	}
}
