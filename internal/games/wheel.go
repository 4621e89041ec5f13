package games

import (
	"strings"

	"github.com/MJE43/fair-go/internal/engine"
)

const (
	wheelDefaultSegments = 10
	wheelDefaultRisk     = "low"
)

// wheelGame lands on segment floor(f*segments) of a payout wheel.
type wheelGame struct{}

type WheelConfig struct {
	Segments int    `json:"segments"`
	Risk     string `json:"risk"`
}

type WheelOutcome struct {
	Segments   int     `json:"segments"`
	Risk       string  `json:"risk"`
	Index      int     `json:"index"`
	Multiplier float64 `json:"multiplier"`
}

type wheelSimulator struct {
	cfg   WheelConfig
	table []float64
}

// wheelPayouts maps segments -> risk -> multiplier per segment.
var wheelPayouts = map[int]map[string][]float64{
	10: {
		"low":    {1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0},
		"medium": {0, 1.9, 0, 1.5, 0, 2, 0, 1.5, 0, 3},
		"high":   {0, 0, 0, 0, 0, 0, 0, 0, 0, 9.9},
	},
	20: {
		"low": {
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
		},
		"medium": {
			1.5, 0, 2, 0, 2, 0, 2, 0, 1.5, 0,
			3, 0, 1.8, 0, 2, 0, 2, 0, 2, 0,
		},
		"high": {
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 19.8,
		},
	},
	30: {
		"low": {
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
		},
		"medium": {
			1.5, 0, 1.5, 0, 2, 0, 1.5, 0, 2, 0,
			2, 0, 1.5, 0, 3, 0, 1.5, 0, 2, 0,
			2, 0, 1.7, 0, 4, 0, 1.5, 0, 2, 0,
		},
		"high": {
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 29.7,
		},
	},
	40: {
		"low": {
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
		},
		"medium": {
			2, 0, 3, 0, 2, 0, 1.5, 0, 3, 0,
			1.5, 0, 1.5, 0, 2, 0, 1.5, 0, 3, 0,
			1.5, 0, 2, 0, 2, 0, 1.6, 0, 2, 0,
			1.5, 0, 3, 0, 1.5, 0, 2, 0, 1.5, 0,
		},
		"high": {
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 39.6,
		},
	},
	50: {
		"low": {
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
			1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0,
		},
		"medium": {
			2, 0, 1.5, 0, 2, 0, 1.5, 0, 3, 0,
			1.5, 0, 1.5, 0, 2, 0, 1.5, 0, 3, 0,
			1.5, 0, 2, 0, 1.5, 0, 2, 0, 2, 0,
			1.5, 0, 3, 0, 1.5, 0, 2, 0, 1.5, 0,
			1.5, 0, 5, 0, 1.5, 0, 2, 0, 1.5, 0,
		},
		"high": {
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 49.5,
		},
	},
}

// Spec returns metadata about the Wheel game.
func (wheelGame) Spec() GameSpec {
	return GameSpec{
		ID:          Wheel,
		Name:        "Wheel",
		Mode:        engine.ModeSingle,
		MetricLabel: "multiplier",
		Defaults:    Config{"segments": wheelDefaultSegments, "risk": wheelDefaultRisk},
	}
}

func (g wheelGame) Prepare(cfg Config) (Simulator, error) {
	var opts WheelConfig
	if err := decodeConfig(Wheel, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	opts.Risk = strings.ToLower(strings.TrimSpace(opts.Risk))

	bySegments, ok := wheelPayouts[opts.Segments]
	if !ok {
		return nil, configErr(Wheel, "segments", "must be one of 10, 20, 30, 40, 50; got %d", opts.Segments)
	}
	table, ok := bySegments[opts.Risk]
	if !ok {
		return nil, configErr(Wheel, "risk", "unsupported risk %q", opts.Risk)
	}
	return wheelSimulator{cfg: opts, table: table}, nil
}

func (wheelSimulator) FloatCount() int { return 1 }

func (s wheelSimulator) Simulate(c *engine.Cursor) GameResult {
	index := boundedIndex(c.Next(), s.cfg.Segments)
	m := s.table[index]
	return GameResult{
		Game:        Wheel,
		Metric:      m,
		MetricLabel: "multiplier",
		Multiplier:  multiplier(m),
		Details: WheelOutcome{
			Segments:   s.cfg.Segments,
			Risk:       s.cfg.Risk,
			Index:      index,
			Multiplier: m,
		},
	}
}
