package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const (
	KenoSquares   = 40
	KenoDrawCount = 10
	KenoMaxPicks  = 10
)

// kenoGame draws ten distinct squares from 1..40.
type kenoGame struct{}

// KenoConfig selects the payout table. Picks may be empty, in which case
// only the draw is reported.
type KenoConfig struct {
	Risk  string `json:"risk"`
	Picks []int  `json:"picks"`
}

type KenoOutcome struct {
	Draws      []int   `json:"draws"`
	Risk       string  `json:"risk"`
	Picks      []int   `json:"picks"`
	Hits       []int   `json:"hits"`
	Multiplier float64 `json:"multiplier"`
}

type kenoSimulator struct {
	cfg KenoConfig
}

func (kenoGame) Spec() GameSpec {
	return GameSpec{
		ID:          Keno,
		Name:        "Keno",
		Mode:        engine.ModeSingle,
		MetricLabel: "hits",
		Defaults:    Config{"risk": "classic", "picks": []int{}},
	}
}

func (g kenoGame) Prepare(cfg Config) (Simulator, error) {
	var opts KenoConfig
	if err := decodeConfig(Keno, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	if !IsValidKenoRisk(opts.Risk) {
		return nil, configErr(Keno, "risk", "unsupported risk %q", opts.Risk)
	}
	if len(opts.Picks) > KenoMaxPicks {
		return nil, configErr(Keno, "picks", "at most %d picks, got %d", KenoMaxPicks, len(opts.Picks))
	}
	seen := make(map[int]bool, len(opts.Picks))
	for _, p := range opts.Picks {
		if p < 1 || p > KenoSquares {
			return nil, configErr(Keno, "picks", "pick %d outside 1..%d", p, KenoSquares)
		}
		if seen[p] {
			return nil, configErr(Keno, "picks", "pick %d repeated", p)
		}
		seen[p] = true
	}
	return kenoSimulator{cfg: opts}, nil
}

func (kenoSimulator) FloatCount() int { return KenoDrawCount }

func (s kenoSimulator) Simulate(c *engine.Cursor) GameResult {
	draws := kenoDraws(c)
	hits := kenoHits(s.cfg.Picks, draws)

	res := GameResult{
		Game:        Keno,
		Metric:      float64(len(hits)),
		MetricLabel: "hits",
	}
	out := KenoOutcome{Draws: draws, Risk: s.cfg.Risk, Picks: s.cfg.Picks, Hits: hits}
	if len(s.cfg.Picks) > 0 {
		out.Multiplier = kenoMultiplier(s.cfg.Risk, len(s.cfg.Picks), len(hits))
		res.Multiplier = multiplier(out.Multiplier)
	}
	res.Details = out
	return res
}

// kenoDraws removes each drawn square from the pool so later floats index
// the squares that remain.
func kenoDraws(c *engine.Cursor) []int {
	squares := make([]int, KenoSquares)
	for i := range squares {
		squares[i] = i + 1
	}
	return drawWithoutReplacement(c, squares, KenoDrawCount)
}

// kenoHits returns the picks that were drawn, in pick order.
func kenoHits(picks, draws []int) []int {
	drawn := make(map[int]bool, len(draws))
	for _, d := range draws {
		drawn[d] = true
	}
	hits := []int{}
	for _, p := range picks {
		if drawn[p] {
			hits = append(hits, p)
		}
	}
	return hits
}
