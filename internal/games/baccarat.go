package games

import (
	"github.com/MJE43/fair-go/internal/engine"
)

const (
	baccaratMinCards = 4
	baccaratMaxCards = 6
)

// baccaratGame deals a punto banco coup from an infinite deck.
// Cards are drawn player, player, banker, banker, then the optional third
// cards in the order the tableau calls for them.
type baccaratGame struct{}

// BaccaratStep records one card dealt and who received it.
type BaccaratStep struct {
	Recipient string `json:"recipient"`
	Card      Card   `json:"card"`
}

type BaccaratOutcome struct {
	Player      []Card         `json:"player"`
	Banker      []Card         `json:"banker"`
	PlayerTotal int            `json:"player_total"`
	BankerTotal int            `json:"banker_total"`
	Winner      string         `json:"winner"`
	Natural     bool           `json:"natural"`
	Steps       []BaccaratStep `json:"steps"`
}

// Spec returns metadata about the Baccarat game.
func (baccaratGame) Spec() GameSpec {
	return GameSpec{
		ID:          Baccarat,
		Name:        "Baccarat",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_card",
		Defaults:    Config{},
	}
}

func (g baccaratGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(Baccarat, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (baccaratGame) FloatCount() int { return baccaratMaxCards }

func (baccaratGame) Simulate(c *engine.Cursor) GameResult {
	out := BaccaratOutcome{}
	deal := func(recipient string) Card {
		card := drawCard(c)
		out.Steps = append(out.Steps, BaccaratStep{Recipient: recipient, Card: card})
		if recipient == "player" {
			out.Player = append(out.Player, card)
		} else {
			out.Banker = append(out.Banker, card)
		}
		return card
	}

	deal("player")
	deal("player")
	deal("banker")
	deal("banker")

	player, banker := baccaratHandScore(out.Player), baccaratHandScore(out.Banker)
	switch {
	case player >= 8 || banker >= 8:
		out.Natural = true
	case player > 5:
		// Player stands on 6 or 7; banker then draws on 0-5.
		if banker <= 5 {
			deal("banker")
		}
	default:
		third := deal("player")
		if bankerShouldDraw(banker, baccaratCardValue(third.Rank)) {
			deal("banker")
		}
	}

	out.PlayerTotal = baccaratHandScore(out.Player)
	out.BankerTotal = baccaratHandScore(out.Banker)
	switch {
	case out.PlayerTotal > out.BankerTotal:
		out.Winner = "player"
	case out.BankerTotal > out.PlayerTotal:
		out.Winner = "banker"
	default:
		out.Winner = "tie"
	}

	return GameResult{
		Game:        Baccarat,
		Metric:      float64(out.Player[0].Index),
		MetricLabel: "first_card",
		Details:     out,
	}
}

// baccaratHandScore calculates the baccarat hand score (sum of card values mod 10).
func baccaratHandScore(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += baccaratCardValue(c.Rank)
	}
	return total % 10
}

// bankerShouldDraw implements the banker third-card tableau.
// bankerScore is the banker's two-card score (0-7), playerThirdCard is the
// point value of the player's third card.
func bankerShouldDraw(bankerScore int, playerThirdCard int) bool {
	switch bankerScore {
	case 0, 1, 2:
		return true
	case 3:
		return playerThirdCard != 8
	case 4:
		return playerThirdCard >= 2 && playerThirdCard <= 7
	case 5:
		return playerThirdCard >= 4 && playerThirdCard <= 7
	case 6:
		return playerThirdCard == 6 || playerThirdCard == 7
	default: // 7
		return false
	}
}
