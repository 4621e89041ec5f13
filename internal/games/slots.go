package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const (
	slotsReels     = 5
	slotsShortReel = 30
	slotsLongReel  = 41
	slotsMaxRound  = 10_000
)

// slotsGame spins five reels. Bonus round r skips the 5*r floats that
// earlier rounds consumed.
type slotsGame struct{}

type SlotsConfig struct {
	Round int `json:"round"`
}

type SlotsOutcome struct {
	Round int   `json:"round"`
	Stops []int `json:"stops"`
}

type slotsSimulator struct {
	round int
}

func (slotsGame) Spec() GameSpec {
	return GameSpec{
		ID:          Slots,
		Name:        "Slots",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_stop",
		Defaults:    Config{"round": 0},
	}
}

func (g slotsGame) Prepare(cfg Config) (Simulator, error) {
	var opts SlotsConfig
	if err := decodeConfig(Slots, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	if opts.Round < 0 || opts.Round > slotsMaxRound {
		return nil, configErr(Slots, "round", "must be between 0 and %d, got %d", slotsMaxRound, opts.Round)
	}
	return slotsSimulator{round: opts.Round}, nil
}

func (s slotsSimulator) FloatCount() int { return slotsReels * (s.round + 1) }

func (s slotsSimulator) Simulate(c *engine.Cursor) GameResult {
	c.Skip(uint64(slotsReels * s.round))
	stops := make([]int, slotsReels)
	for i := range stops {
		size := slotsShortReel
		if i == slotsReels-1 {
			size = slotsLongReel
		}
		stops[i] = boundedIndex(c.Next(), size)
	}
	return GameResult{
		Game:        Slots,
		Metric:      float64(stops[0]),
		MetricLabel: "first_stop",
		Details:     SlotsOutcome{Round: s.round, Stops: stops},
	}
}
