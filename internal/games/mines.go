package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const (
	minesTotalTiles   = 25
	minesGridSize     = 5
	minesMinCount     = 1
	minesMaxCount     = 24
	minesDefaultCount = 3
)

// minesGame places mines on a 5x5 board, one float per mine, drawing tile
// positions 0..24 without replacement.
type minesGame struct{}

type MinesConfig struct {
	Mines int `json:"mines"`
}

type MinesOutcome struct {
	Mines     []int      `json:"mines"`
	FirstMine int        `json:"first_mine"`
	Grid      [][]string `json:"grid"`
}

type minesSimulator struct {
	count int
}

// Spec returns metadata about the Mines game.
func (minesGame) Spec() GameSpec {
	return GameSpec{
		ID:          Mines,
		Name:        "Mines",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_mine",
		Defaults:    Config{"mines": minesDefaultCount},
	}
}

func (g minesGame) Prepare(cfg Config) (Simulator, error) {
	var opts MinesConfig
	if err := decodeConfig(Mines, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	if opts.Mines < minesMinCount || opts.Mines > minesMaxCount {
		return nil, configErr(Mines, "mines", "must be between %d and %d, got %d",
			minesMinCount, minesMaxCount, opts.Mines)
	}
	return minesSimulator{count: opts.Mines}, nil
}

func (s minesSimulator) FloatCount() int { return s.count }

func (s minesSimulator) Simulate(c *engine.Cursor) GameResult {
	tiles := make([]int, minesTotalTiles)
	for i := range tiles {
		tiles[i] = i
	}
	mines := drawWithoutReplacement(c, tiles, s.count)

	isMine := make(map[int]bool, len(mines))
	first := minesTotalTiles
	for _, m := range mines {
		isMine[m] = true
		if m < first {
			first = m
		}
	}

	grid := make([][]string, minesGridSize)
	for r := range grid {
		grid[r] = make([]string, minesGridSize)
		for col := range grid[r] {
			if isMine[r*minesGridSize+col] {
				grid[r][col] = "mine"
			} else {
				grid[r][col] = "gem"
			}
		}
	}

	return GameResult{
		Game:        Mines,
		Metric:      float64(first),
		MetricLabel: "first_mine",
		Details:     MinesOutcome{Mines: mines, FirstMine: first, Grid: grid},
	}
}
