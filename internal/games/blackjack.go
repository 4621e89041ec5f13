package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const blackjackFloatCount = deckSize

// blackjackGame pre-deals a whole shoe from an infinite deck: two cards to
// the player, two to the dealer, then 48 in draw order.
type blackjackGame struct{}

type BlackjackOutcome struct {
	Player          []Card `json:"player"`
	Dealer          []Card `json:"dealer"`
	Deck            []Card `json:"deck"`
	PlayerValue     int    `json:"player_value"`
	DealerValue     int    `json:"dealer_value"`
	PlayerBlackjack bool   `json:"player_blackjack"`
	DealerBlackjack bool   `json:"dealer_blackjack"`
}

// Spec returns metadata about the Blackjack game.
func (blackjackGame) Spec() GameSpec {
	return GameSpec{
		ID:          Blackjack,
		Name:        "Blackjack",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_card",
		Defaults:    Config{},
	}
}

func (g blackjackGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Blackjack, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (blackjackGame) FloatCount() int { return blackjackFloatCount }

func (blackjackGame) Simulate(c *engine.Cursor) GameResult {
	player := drawCards(c, 2)
	dealer := drawCards(c, 2)
	deck := drawCards(c, blackjackFloatCount-4)

	playerValue := blackjackHandValue(player)
	dealerValue := blackjackHandValue(dealer)

	return GameResult{
		Game:        Blackjack,
		Metric:      float64(player[0].Index),
		MetricLabel: "first_card",
		Details: BlackjackOutcome{
			Player:          player,
			Dealer:          dealer,
			Deck:            deck,
			PlayerValue:     playerValue,
			DealerValue:     dealerValue,
			PlayerBlackjack: playerValue == 21,
			DealerBlackjack: dealerValue == 21,
		},
	}
}
