package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const hiloFloatCount = deckSize

// hiloGame deals a 52 card sequence from an infinite deck. The first card is
// the start card; the rest are revealed one guess at a time.
type hiloGame struct{}

type HiloOutcome struct {
	Cards     []Card `json:"cards"`
	StartCard Card   `json:"start_card"`
}

// Spec returns metadata about the HiLo game.
func (hiloGame) Spec() GameSpec {
	return GameSpec{
		ID:          Hilo,
		Name:        "Hilo",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_card",
		Defaults:    Config{},
	}
}

func (g hiloGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Hilo, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (hiloGame) FloatCount() int { return hiloFloatCount }

func (hiloGame) Simulate(c *engine.Cursor) GameResult {
	cards := drawCards(c, hiloFloatCount)
	return GameResult{
		Game:        Hilo,
		Metric:      float64(cards[0].Index),
		MetricLabel: "first_card",
		Details:     HiloOutcome{Cards: cards, StartCard: cards[0]},
	}
}
