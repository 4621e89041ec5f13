package games

import (
	"math"

	"github.com/MJE43/fair-go/internal/engine"
)

const (
	limboHouseEdge     = 0.99
	limboMaxMultiplier = 10_000_000.0
)

type limboGame struct{}

// LimboOutcome is the target multiplier a limbo round reached.
type LimboOutcome struct {
	Multiplier float64 `json:"multiplier"`
	RawFloat   float64 `json:"raw_float"`
}

func (limboGame) Spec() GameSpec {
	return GameSpec{
		ID:          Limbo,
		Name:        "Limbo",
		Mode:        engine.ModeSingle,
		MetricLabel: "multiplier",
		Defaults:    Config{},
	}
}

func (g limboGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Limbo, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (limboGame) FloatCount() int { return 1 }

func (limboGame) Simulate(c *engine.Cursor) GameResult {
	f := c.Next()
	m := limboMultiplier(f)
	return GameResult{
		Game:        Limbo,
		Metric:      m,
		MetricLabel: "multiplier",
		Multiplier:  multiplier(m),
		Details:     LimboOutcome{Multiplier: m, RawFloat: f},
	}
}

// limboMultiplier computes (max/(f*max))*edge and truncates it to two
// decimals. The intermediate saturates to the uint32 range, so f == 0
// yields 42949672.95 rather than +Inf.
func limboMultiplier(f float64) float64 {
	point := limboMaxMultiplier / (f * limboMaxMultiplier) * limboHouseEdge
	cents := point * 100
	switch {
	case math.IsNaN(cents) || cents <= 0:
		cents = 0
	case cents >= math.MaxUint32:
		cents = math.MaxUint32
	default:
		cents = math.Trunc(cents)
	}
	return cents / 100
}
