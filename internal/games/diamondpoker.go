package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const diamondHandSize = 5

// Gem order used to map floats onto gems.
var diamondGems = [7]string{"green", "purple", "yellow", "red", "cyan", "orange", "blue"}

// Hand categories from weakest to strongest.
var diamondHandRanks = [...]string{
	"nothing",
	"pair",
	"two_pairs",
	"three_of_a_kind",
	"full_house",
	"four_of_a_kind",
	"five_of_a_kind",
}

// diamondPokerGame deals five gems to the dealer and then five to the player.
type diamondPokerGame struct{}

type DiamondHand struct {
	Gems []string `json:"gems"`
	Rank string   `json:"rank"`
	// Strength orders ranks; higher wins.
	Strength int `json:"strength"`
}

type DiamondPokerOutcome struct {
	Dealer DiamondHand `json:"dealer"`
	Player DiamondHand `json:"player"`
	Winner string      `json:"winner"`
}

func (diamondPokerGame) Spec() GameSpec {
	return GameSpec{
		ID:          DiamondPoker,
		Name:        "Diamond Poker",
		Mode:        engine.ModeSingle,
		MetricLabel: "player_strength",
		Defaults:    Config{},
	}
}

func (g diamondPokerGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(DiamondPoker, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (diamondPokerGame) FloatCount() int { return 2 * diamondHandSize }

func (diamondPokerGame) Simulate(c *engine.Cursor) GameResult {
	dealer := drawDiamondHand(c)
	player := drawDiamondHand(c)

	winner := "draw"
	switch {
	case player.Strength > dealer.Strength:
		winner = "player"
	case player.Strength < dealer.Strength:
		winner = "dealer"
	}

	return GameResult{
		Game:        DiamondPoker,
		Metric:      float64(player.Strength),
		MetricLabel: "player_strength",
		Details:     DiamondPokerOutcome{Dealer: dealer, Player: player, Winner: winner},
	}
}

func drawDiamondHand(c *engine.Cursor) DiamondHand {
	gems := make([]string, diamondHandSize)
	for i := range gems {
		gems[i] = diamondGems[boundedIndex(c.Next(), len(diamondGems))]
	}
	strength := diamondStrength(gems)
	return DiamondHand{Gems: gems, Rank: diamondHandRanks[strength], Strength: strength}
}

// diamondStrength indexes diamondHandRanks.
func diamondStrength(gems []string) int {
	counts := map[string]int{}
	for _, g := range gems {
		counts[g]++
	}
	pairs, triples := 0, 0
	for _, n := range counts {
		switch n {
		case 5:
			return 6
		case 4:
			return 5
		case 3:
			triples++
		case 2:
			pairs++
		}
	}
	switch {
	case triples == 1 && pairs == 1:
		return 4
	case triples == 1:
		return 3
	case pairs == 2:
		return 2
	case pairs == 1:
		return 1
	default:
		return 0
	}
}
