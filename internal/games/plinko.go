package games

import (
	"slices"

	"github.com/MJE43/fair-go/internal/engine"
)

const (
	plinkoMinRows     = 8
	plinkoMaxRows     = 16
	plinkoDefaultRows = 8
)

var plinkoRisks = []string{"low", "medium", "high"}

// plinkoGame drops a ball through rows of pins. Each float decides one
// bounce: floor(f*2) is 0 for left and 1 for right. The bucket is the number
// of right bounces.
type plinkoGame struct{}

type PlinkoConfig struct {
	Rows int    `json:"rows"`
	Risk string `json:"risk"`
}

type PlinkoOutcome struct {
	Rows       int      `json:"rows"`
	Risk       string   `json:"risk"`
	Path       []string `json:"path"`
	Bucket     int      `json:"bucket"`
	Multiplier float64  `json:"multiplier"`
}

type plinkoSimulator struct {
	cfg   PlinkoConfig
	table []float64
}

// Spec returns metadata about the Plinko game.
func (plinkoGame) Spec() GameSpec {
	return GameSpec{
		ID:          Plinko,
		Name:        "Plinko",
		Mode:        engine.ModeSingle,
		MetricLabel: "multiplier",
		Defaults:    Config{"rows": plinkoDefaultRows, "risk": "low"},
	}
}

func (g plinkoGame) Prepare(cfg Config) (Simulator, error) {
	var opts PlinkoConfig
	if err := decodeConfig(Plinko, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	if opts.Rows < plinkoMinRows || opts.Rows > plinkoMaxRows {
		return nil, configErr(Plinko, "rows", "must be between %d and %d, got %d",
			plinkoMinRows, plinkoMaxRows, opts.Rows)
	}
	if !slices.Contains(plinkoRisks, opts.Risk) {
		return nil, configErr(Plinko, "risk", "unsupported risk %q", opts.Risk)
	}
	return plinkoSimulator{cfg: opts, table: plinkoPayoutTables[opts.Risk][opts.Rows]}, nil
}

func (s plinkoSimulator) FloatCount() int { return s.cfg.Rows }

func (s plinkoSimulator) Simulate(c *engine.Cursor) GameResult {
	path := make([]string, s.cfg.Rows)
	bucket := 0
	for i := range path {
		if boundedIndex(c.Next(), 2) == 1 {
			path[i] = "right"
			bucket++
		} else {
			path[i] = "left"
		}
	}
	m := s.table[bucket]
	return GameResult{
		Game:        Plinko,
		Metric:      m,
		MetricLabel: "multiplier",
		Multiplier:  multiplier(m),
		Details: PlinkoOutcome{
			Rows:       s.cfg.Rows,
			Risk:       s.cfg.Risk,
			Path:       path,
			Bucket:     bucket,
			Multiplier: m,
		},
	}
}
