package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const roulettePockets = 37

// Red numbers: 1,3,5,7,9,12,14,16,18,19,21,23,25,27,30,32,34,36
var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// rouletteGame spins a single-zero European wheel.
type rouletteGame struct{}

type RouletteOutcome struct {
	Pocket   int     `json:"pocket"`
	Color    string  `json:"color"`
	Even     bool    `json:"even"`
	Low      bool    `json:"low"`
	Dozen    int     `json:"dozen"`
	Column   int     `json:"column"`
	RawFloat float64 `json:"raw_float"`
}

func (rouletteGame) Spec() GameSpec {
	return GameSpec{
		ID:          Roulette,
		Name:        "Roulette",
		Mode:        engine.ModeSingle,
		MetricLabel: "pocket",
		Defaults:    Config{},
	}
}

func (g rouletteGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Roulette, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (rouletteGame) FloatCount() int { return 1 }

func (rouletteGame) Simulate(c *engine.Cursor) GameResult {
	f := c.Next()
	pocket := boundedIndex(f, roulettePockets)
	return GameResult{
		Game:        Roulette,
		Metric:      float64(pocket),
		MetricLabel: "pocket",
		Details:     describePocket(pocket, f),
	}
}

func describePocket(pocket int, f float64) RouletteOutcome {
	out := RouletteOutcome{Pocket: pocket, Color: "green", RawFloat: f}
	if pocket == 0 {
		return out
	}
	if rouletteRed[pocket] {
		out.Color = "red"
	} else {
		out.Color = "black"
	}
	out.Even = pocket%2 == 0
	out.Low = pocket <= 18
	out.Dozen = (pocket-1)/12 + 1
	out.Column = (pocket-1)%3 + 1
	return out
}
