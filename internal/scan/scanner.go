// Package scan evaluates a single-player game across a range of nonces and
// reports the nonces whose outcome matches a target or filter.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
)

// TargetOp is a comparison applied to the outcome metric.
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

const (
	DefaultMaxRange      uint64 = 10_000_000
	DefaultFilterTimeout        = 50 * time.Millisecond
	DefaultTolerance            = 1e-9
	batchSize            uint64 = 4096
)

var ErrInvalidRequest = errors.New("invalid scan request")

// Request describes one scan. At least one of TargetOp or Filter is required;
// when both are set a nonce must satisfy both.
type Request struct {
	Game       string       `json:"game"`
	Seeds      engine.Seeds `json:"seeds"`
	NonceStart uint64       `json:"nonce_start"`
	NonceEnd   uint64       `json:"nonce_end"`
	Config     games.Config `json:"config,omitempty"`
	TargetOp   TargetOp     `json:"target_op,omitempty"`
	TargetVal  float64      `json:"target_val"`
	TargetVal2 float64      `json:"target_val2,omitempty"`
	Tolerance  *float64     `json:"tolerance,omitempty"`
	Filter     string       `json:"filter,omitempty"`
	Limit      int          `json:"limit,omitempty"`
	TimeoutMs  int          `json:"timeout_ms,omitempty"`
}

type Hit struct {
	Nonce   uint64           `json:"nonce"`
	Metric  float64          `json:"metric"`
	Outcome games.GameResult `json:"outcome"`
}

// Summary aggregates the metrics of the returned hits.
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	HitsFound      int     `json:"hits_found"`
	MinMetric      float64 `json:"min_metric"`
	MaxMetric      float64 `json:"max_metric"`
	MeanMetric     float64 `json:"mean_metric"`
	SumMetric      float64 `json:"-"`
	TimedOut       bool    `json:"timed_out,omitempty"`
	LimitReached   bool    `json:"limit_reached,omitempty"`
}

type Result struct {
	Hits          []Hit   `json:"hits"`
	Summary       Summary `json:"summary"`
	EngineVersion string  `json:"engine_version"`
	Echo          Request `json:"echo"`
}

// Options configures a Scanner. Zero values pick sensible defaults.
type Options struct {
	Workers       int
	MaxRange      uint64
	FilterTimeout time.Duration
	EngineVersion string
	Logger        zerolog.Logger
}

type Scanner struct {
	workers       int
	maxRange      uint64
	filterTimeout time.Duration
	version       string
	log           zerolog.Logger
}

func NewScanner(opts Options) *Scanner {
	s := &Scanner{
		workers:       opts.Workers,
		maxRange:      opts.MaxRange,
		filterTimeout: opts.FilterTimeout,
		version:       opts.EngineVersion,
		log:           opts.Logger,
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.maxRange == 0 {
		s.maxRange = DefaultMaxRange
	}
	if s.filterTimeout <= 0 {
		s.filterTimeout = DefaultFilterTimeout
	}
	return s
}

// TargetEvaluator applies a TargetOp with tolerance.
type TargetEvaluator struct {
	op        TargetOp
	val1      float64
	val2      float64
	tolerance float64
}

func NewTargetEvaluator(op TargetOp, val1, val2, tolerance float64) *TargetEvaluator {
	return &TargetEvaluator{op: op, val1: val1, val2: val2, tolerance: tolerance}
}

// Matches reports whether metric satisfies the target.
func (te *TargetEvaluator) Matches(metric float64) bool {
	switch te.op {
	case OpEqual:
		return math.Abs(metric-te.val1) <= te.tolerance
	case OpGreater:
		return metric > te.val1+te.tolerance
	case OpGreaterEqual:
		return metric >= te.val1-te.tolerance
	case OpLess:
		return metric < te.val1-te.tolerance
	case OpLessEqual:
		return metric <= te.val1+te.tolerance
	case OpBetween:
		return metric >= te.val1-te.tolerance && metric <= te.val2+te.tolerance
	case OpOutside:
		return metric < te.val1-te.tolerance || metric > te.val2+te.tolerance
	default:
		return false
	}
}

func validOp(op TargetOp) bool {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpBetween, OpOutside:
		return true
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// plan is a validated request, ready to run.
type plan struct {
	sim       games.Simulator
	evaluator *TargetEvaluator
	filter    *Filter
}

// prepare validates everything about req once, before any nonce is evaluated.
func (s *Scanner) prepare(req Request) (plan, error) {
	var p plan
	if req.Seeds.Server == "" {
		return p, fmt.Errorf("%w: server seed is required", engine.ErrInvalidSeedMaterial)
	}
	if req.NonceEnd < req.NonceStart {
		return p, invalid("nonce_end %d before nonce_start %d", req.NonceEnd, req.NonceStart)
	}
	if span := req.NonceEnd - req.NonceStart; span >= s.maxRange {
		return p, invalid("range of %d nonces exceeds the maximum of %d", span+1, s.maxRange)
	}
	if req.Limit < 0 || req.TimeoutMs < 0 {
		return p, invalid("limit and timeout_ms must not be negative")
	}
	if req.TargetOp == "" && strings.TrimSpace(req.Filter) == "" {
		return p, invalid("a target_op or a filter is required")
	}

	_, sim, err := games.Prepared(req.Game, engine.ModeSingle, req.Config)
	if err != nil {
		return p, err
	}
	p.sim = sim

	if req.TargetOp != "" {
		if !validOp(req.TargetOp) {
			return p, invalid("unknown target_op %q", req.TargetOp)
		}
		if (req.TargetOp == OpBetween || req.TargetOp == OpOutside) && req.TargetVal2 < req.TargetVal {
			return p, invalid("target_val2 %v below target_val %v", req.TargetVal2, req.TargetVal)
		}
		if req.Tolerance != nil && *req.Tolerance < 0 {
			return p, invalid("tolerance must not be negative")
		}
		p.evaluator = NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2, req.tolerance())
	}

	if strings.TrimSpace(req.Filter) != "" {
		f, err := CompileFilter(req.Filter, s.filterTimeout)
		if err != nil {
			return p, err
		}
		p.filter = f
	}
	return p, nil
}

// tolerance is the comparison slack a target scan runs with.
func (r Request) tolerance() float64 {
	if r.Tolerance != nil {
		return *r.Tolerance
	}
	return DefaultTolerance
}

// batch is a contiguous nonce range handed to one worker.
type batch struct {
	index int
	start uint64
	end   uint64
}

// collector gathers hits per batch. It cancels the scan once the batches
// that have completed without gaps from the start of the range already hold
// enough hits, so the hits returned under a limit are always the lowest
// matching nonces. Hits from batches cut short by cancellation are kept
// apart; they only count when no limit was reached.
type collector struct {
	mu       sync.Mutex
	limit    int
	perBatch map[int][]Hit
	partial  []Hit
	frontier int
	prefix   int
	reached  bool
	cancel   context.CancelFunc
}

func (c *collector) cut(hits []Hit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partial = append(c.partial, hits...)
}

func (c *collector) done(b batch, hits []Hit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perBatch[b.index] = hits
	for {
		h, ok := c.perBatch[c.frontier]
		if !ok {
			break
		}
		c.prefix += len(h)
		c.frontier++
	}
	if c.limit > 0 && c.prefix >= c.limit && !c.reached {
		c.reached = true
		c.cancel()
	}
}

func (c *collector) hits() []Hit {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []Hit
	for i := 0; i < c.frontier; i++ {
		all = append(all, c.perBatch[i]...)
	}
	// Past the frontier there are gaps; without a limit every evaluated
	// nonce still counts.
	if !c.reached {
		for i, h := range c.perBatch {
			if i >= c.frontier {
				all = append(all, h...)
			}
		}
		all = append(all, c.partial...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Nonce < all[j].Nonce })
	if c.limit > 0 && len(all) > c.limit {
		all = all[:c.limit]
	}
	return all
}

// Scan evaluates every nonce in [NonceStart, NonceEnd] in parallel.
// A timeout stops the scan early and is reported in the summary rather than
// as an error.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	scanCtx, stop := context.WithCancel(ctx)
	defer stop()

	col := &collector{limit: req.Limit, perBatch: map[int][]Hit{}, cancel: stop}
	var evaluated uint64
	started := time.Now()

	jobs := make(chan batch, s.workers*2)
	g, gctx := errgroup.WithContext(scanCtx)
	g.Go(func() error {
		defer close(jobs)
		idx := 0
		for cur := req.NonceStart; ; idx++ {
			end := cur + batchSize - 1
			if end > req.NonceEnd || end < cur {
				end = req.NonceEnd
			}
			select {
			case jobs <- batch{index: idx, start: cur, end: end}:
			case <-gctx.Done():
				return nil
			}
			if end == req.NonceEnd {
				return nil
			}
			cur = end + 1
		}
	})

	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			w := newWorker(gctx, req.Seeds, p)
			defer w.close()
			for b := range jobs {
				hits, n, err := w.run(gctx, b)
				atomic.AddUint64(&evaluated, n)
				if err != nil {
					return err
				}
				if n < b.end-b.start+1 {
					col.cut(hits)
					return nil
				}
				col.done(b, hits)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := col.hits()
	summary := summarize(hits)
	summary.TotalEvaluated = atomic.LoadUint64(&evaluated)
	summary.LimitReached = col.reached
	summary.TimedOut = !col.reached && ctx.Err() != nil

	s.log.Info().
		Str("game", req.Game).
		Uint64("nonce_start", req.NonceStart).
		Uint64("nonce_end", req.NonceEnd).
		Uint64("evaluated", summary.TotalEvaluated).
		Int("hits", summary.HitsFound).
		Bool("timed_out", summary.TimedOut).
		Dur("elapsed", time.Since(started)).
		Msg("scan finished")

	return &Result{Hits: hits, Summary: summary, EngineVersion: s.version, Echo: req}, nil
}

type worker struct {
	seeds engine.Seeds
	plan  plan
	eval  *FilterVM
}

func newWorker(ctx context.Context, seeds engine.Seeds, p plan) *worker {
	w := &worker{seeds: seeds, plan: p}
	if p.filter != nil {
		w.eval = p.filter.NewVM(ctx)
	}
	return w
}

func (w *worker) close() {
	if w.eval != nil {
		w.eval.Close()
	}
}

// run evaluates one batch. It returns the number of nonces evaluated even
// when it stops early.
func (w *worker) run(ctx context.Context, b batch) ([]Hit, uint64, error) {
	var (
		hits []Hit
		n    uint64
	)
	for nonce := b.start; ; nonce++ {
		if n%256 == 0 && ctx.Err() != nil {
			return hits, n, nil
		}
		stream, err := engine.NewStream(w.seeds.Server, w.seeds.Client, nonce)
		if err != nil {
			return hits, n, err
		}
		out := w.plan.sim.Simulate(stream.Cursor())
		n++

		match := w.plan.evaluator == nil || w.plan.evaluator.Matches(out.Metric)
		if match && w.eval != nil {
			ok, err := w.eval.Match(nonce, out)
			if err != nil {
				if ctx.Err() != nil {
					return hits, n, nil
				}
				return hits, n, fmt.Errorf("filter at nonce %d: %w", nonce, err)
			}
			match = ok
		}
		if match {
			hits = append(hits, Hit{Nonce: nonce, Metric: out.Metric, Outcome: out})
		}
		if nonce == b.end {
			return hits, n, nil
		}
	}
}

func summarize(hits []Hit) Summary {
	sum := Summary{HitsFound: len(hits)}
	if len(hits) == 0 {
		return sum
	}
	sum.MinMetric = hits[0].Metric
	sum.MaxMetric = hits[0].Metric
	for _, h := range hits {
		sum.MinMetric = math.Min(sum.MinMetric, h.Metric)
		sum.MaxMetric = math.Max(sum.MaxMetric, h.Metric)
		sum.SumMetric += h.Metric
	}
	sum.MeanMetric = sum.SumMetric / float64(len(hits))
	return sum
}
