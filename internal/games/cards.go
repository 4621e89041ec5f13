package games

import (
	"math"

	"github.com/MJE43/fair-go/internal/engine"
)

// Card is a playing card. Index is its position in the 52-card deck order.
type Card struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Index int    `json:"index"`
}

// String returns a human-readable card representation like "♦2" or "♠A".
func (c Card) String() string {
	return c.Suit + c.Rank
}

// Suits in deck order: ♦, ♥, ♠, ♣
var cardSuits = [4]string{"♦", "♥", "♠", "♣"}

// Ranks in order: 2-10, J, Q, K, A
var cardRanks = [13]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// SuitCodes maps suit symbols to single-character codes.
var SuitCodes = map[string]string{
	"♦": "D", "♥": "H", "♠": "S", "♣": "C",
}

const deckSize = 52

// The full deck in index order: ♦2, ♥2, ♠2, ♣2, ♦3, ...
var cardDeck [deckSize]Card

func init() {
	i := 0
	for _, rank := range cardRanks {
		for _, suit := range cardSuits {
			cardDeck[i] = Card{Rank: rank, Suit: suit, Index: i}
			i++
		}
	}
}

// cardIndexFromFloat maps a float onto a deck index in [0, 51].
func cardIndexFromFloat(f float64) int {
	return boundedIndex(f, deckSize)
}

// drawCard draws from an infinite deck: every draw sees all 52 cards.
func drawCard(c *engine.Cursor) Card {
	return cardDeck[cardIndexFromFloat(c.Next())]
}

func drawCards(c *engine.Cursor, n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = drawCard(c)
	}
	return out
}

// boundedIndex returns floor(f*n) clamped to [0, n-1].
func boundedIndex(f float64, n int) int {
	i := int(math.Floor(f * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// drawWithoutReplacement picks count items from pool. Each draw takes
// floor(f*remaining) and removes that entry so later draws shift down.
func drawWithoutReplacement(c *engine.Cursor, pool []int, count int) []int {
	remaining := append([]int(nil), pool...)
	out := make([]int, 0, count)
	for i := 0; i < count && len(remaining) > 0; i++ {
		idx := boundedIndex(c.Next(), len(remaining))
		out = append(out, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}

// cardRankValue returns A=1, 2..10, J=11, Q=12, K=13.
func cardRankValue(rank string) int {
	for i, r := range cardRanks {
		if r == rank {
			if rank == "A" {
				return 1
			}
			return i + 2
		}
	}
	return 0
}

// baccaratCardValue returns the baccarat point value of a card.
// 2-9: face value, 10/J/Q/K: 0, A: 1
func baccaratCardValue(rank string) int {
	v := cardRankValue(rank)
	if v >= 10 {
		return 0
	}
	return v
}

// blackjackCardValue returns the blackjack point value of a card.
// 2-10: face value, J/Q/K: 10, A: 11 (soft)
func blackjackCardValue(rank string) int {
	v := cardRankValue(rank)
	switch {
	case v == 1:
		return 11
	case v > 10:
		return 10
	default:
		return v
	}
}

// blackjackHandValue calculates the best blackjack hand value (accounting for soft aces).
func blackjackHandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += blackjackCardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// cardStrings renders cards as "♠J" labels.
func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
