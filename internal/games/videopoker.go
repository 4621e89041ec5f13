package games

import (
	"sort"

	"github.com/MJE43/fair-go/internal/engine"
)

const (
	videoPokerFloatCount = deckSize
	videoPokerHandSize   = 5
)

// videoPokerGame shuffles the 52-card deck without replacement: each float
// picks floor(f*remaining) from the undealt cards. The first five cards are
// the opening hand and the next five replace discards in order.
type videoPokerGame struct{}

type VideoPokerOutcome struct {
	Hand         []Card `json:"hand"`
	Replacements []Card `json:"replacements"`
	HandRank     string `json:"hand_rank"`
	Deck         []Card `json:"deck"`
}

// Spec returns metadata about the Video Poker game.
func (videoPokerGame) Spec() GameSpec {
	return GameSpec{
		ID:          VideoPoker,
		Name:        "Video Poker",
		Mode:        engine.ModeSingle,
		MetricLabel: "first_card",
		Defaults:    Config{},
	}
}

func (g videoPokerGame) Prepare(cfg Config) (Simulator, error) {
	var opts struct{}
	if err := decodeConfig(VideoPoker, nil, cfg, &opts); err != nil {
		return nil, err
	}
	return g, nil
}

func (videoPokerGame) FloatCount() int { return videoPokerFloatCount }

func (videoPokerGame) Simulate(c *engine.Cursor) GameResult {
	pool := make([]int, deckSize)
	for i := range pool {
		pool[i] = i
	}
	order := drawWithoutReplacement(c, pool, videoPokerFloatCount)

	deck := make([]Card, len(order))
	for i, idx := range order {
		deck[i] = cardDeck[idx]
	}
	hand := deck[:videoPokerHandSize]

	return GameResult{
		Game:        VideoPoker,
		Metric:      float64(order[0]),
		MetricLabel: "first_card",
		Details: VideoPokerOutcome{
			Hand:         hand,
			Replacements: deck[videoPokerHandSize : 2*videoPokerHandSize],
			HandRank:     evaluatePokerHand(hand),
			Deck:         deck,
		},
	}
}

// evaluatePokerHand names the best jacks-or-better category of a five card hand.
func evaluatePokerHand(cards []Card) string {
	if len(cards) != videoPokerHandSize {
		return "invalid"
	}

	values := make([]int, 0, len(cards))
	counts := map[int]int{}
	flush := true
	for _, c := range cards {
		v := cardRankValue(c.Rank)
		values = append(values, v)
		counts[v]++
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Ints(values)

	groups := make([]int, 0, len(counts))
	for _, n := range counts {
		groups = append(groups, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groups)))

	broadway := values[0] == 1 && values[1] == 10 && values[4] == 13 && len(counts) == 5
	straight := broadway || (len(counts) == 5 && values[4]-values[0] == 4)

	switch {
	case flush && broadway:
		return "royal_flush"
	case flush && straight:
		return "straight_flush"
	case groups[0] == 4:
		return "four_of_a_kind"
	case groups[0] == 3 && groups[1] == 2:
		return "full_house"
	case flush:
		return "flush"
	case straight:
		return "straight"
	case groups[0] == 3:
		return "three_of_a_kind"
	case groups[0] == 2 && groups[1] == 2:
		return "two_pair"
	case groups[0] == 2:
		for v, n := range counts {
			if n == 2 && (v == 1 || v >= 11) {
				return "jacks_or_better"
			}
		}
		return "pair"
	default:
		return "high_card"
	}
}
