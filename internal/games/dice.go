package games

import (
	"math"

	"github.com/MJE43/fair-go/internal/engine"
)

// diceGame rolls 0.00 to 100.00 from a single float.
type diceGame struct{}

// DiceOutcome is the result of one roll.
type DiceOutcome struct {
	Roll     float64 `json:"roll"`
	RawFloat float64 `json:"raw_float"`
}

// Spec returns metadata about the Dice game
func (diceGame) Spec() GameSpec {
	return GameSpec{
		ID:          Dice,
		Name:        "Dice",
		Mode:        engine.ModeSingle,
		MetricLabel: "roll",
		Defaults:    Config{},
	}
}

func (g diceGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Dice, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (diceGame) FloatCount() int { return 1 }

// Simulate maps one float onto floor(f*10001)/100, giving exactly 10,001
// discrete outcomes 0.00, 0.01, ..., 100.00.
func (diceGame) Simulate(c *engine.Cursor) GameResult {
	f := c.Next()
	roll := math.Floor(f*10001) / 100
	return GameResult{
		Game:        Dice,
		Metric:      roll,
		MetricLabel: "roll",
		Details:     DiceOutcome{Roll: roll, RawFloat: f},
	}
}
