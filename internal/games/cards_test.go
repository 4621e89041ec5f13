package games

import (
	"reflect"
	"strings"
	"testing"
)

func TestDeckOrder(t *testing.T) {
	if got := cardDeck[0].String(); got != "♦2" {
		t.Errorf("Expected ♦2 first, got %s", got)
	}
	if got := cardDeck[3].String(); got != "♣2" {
		t.Errorf("Expected ♣2 at index 3, got %s", got)
	}
	if got := cardDeck[51].String(); got != "♣A" {
		t.Errorf("Expected ♣A last, got %s", got)
	}
	for i, c := range cardDeck {
		if c.Index != i {
			t.Errorf("Card %s has index %d, want %d", c, c.Index, i)
		}
	}
}

func TestCardValues(t *testing.T) {
	tests := []struct {
		rank      string
		baccarat  int
		blackjack int
	}{
		{"A", 1, 11},
		{"2", 2, 2},
		{"9", 9, 9},
		{"10", 0, 10},
		{"J", 0, 10},
		{"K", 0, 10},
	}
	for _, tt := range tests {
		if got := baccaratCardValue(tt.rank); got != tt.baccarat {
			t.Errorf("baccaratCardValue(%s) = %d, want %d", tt.rank, got, tt.baccarat)
		}
		if got := blackjackCardValue(tt.rank); got != tt.blackjack {
			t.Errorf("blackjackCardValue(%s) = %d, want %d", tt.rank, got, tt.blackjack)
		}
	}

	soft := []Card{{Rank: "A"}, {Rank: "9"}, {Rank: "5"}}
	if got := blackjackHandValue(soft); got != 15 {
		t.Errorf("Expected soft ace to count as 1, got %d", got)
	}
}

func TestBlackjackGame(t *testing.T) {
	res := simulate(t, "blackjack", 1, nil)
	out := res.Details.(BlackjackOutcome)

	if got := strings.Join(cardStrings(out.Player), " - "); got != "♠J - ♥10" {
		t.Errorf("Unexpected player hand %s", got)
	}
	if got := strings.Join(cardStrings(out.Dealer), " - "); got != "♥5 - ♣K" {
		t.Errorf("Unexpected dealer hand %s", got)
	}
	wantDeck := "♥9 - ♥K - ♠10 - ♥10 - ♦A - ♠3 - ♠2 - ♣J - ♠A - ♥A - ♣5 - ♦A - ♥A - ♥J - ♦2 - ♣4 - ♦Q - ♠4 - ♣6 - ♣J - ♣2 - ♦7 - ♣9 - ♦6 - ♥2 - ♥8 - ♦Q - ♥8 - ♥10 - ♠10 - ♦Q - ♣7 - ♥8 - ♦2 - ♣9 - ♥4 - ♦10 - ♥2 - ♣7 - ♥10 - ♣Q - ♠Q - ♠9 - ♣A - ♥J - ♣6 - ♣8 - ♦J"
	if got := strings.Join(cardStrings(out.Deck), " - "); got != wantDeck {
		t.Errorf("Unexpected draw pile:\n got %s\nwant %s", got, wantDeck)
	}
	if out.PlayerValue != 20 || out.DealerValue != 15 {
		t.Errorf("Expected 20 vs 15, got %d vs %d", out.PlayerValue, out.DealerValue)
	}
	if res.Derivation.Floats != 52 {
		t.Errorf("Expected 52 floats consumed, got %d", res.Derivation.Floats)
	}
}

func TestHiloGame(t *testing.T) {
	tests := []struct {
		client string
		prefix string
	}{
		{"client seed", "♠J - ♥10 - ♥5 - ♣K - ♥9 - ♥K - ♠10 - ♥10 - ♦A - ♠3"},
		{"other client seed", "♦9 - ♠9 - ♦A - ♠A - ♦J - ♠K - ♦Q - ♣A - ♦3 - ♥10"},
	}
	for _, tt := range tests {
		res, err := Simulate("hilo", tt.client, testServer, 1, nil)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		out := res.Details.(HiloOutcome)
		if len(out.Cards) != 52 {
			t.Fatalf("Expected 52 cards, got %d", len(out.Cards))
		}
		if got := strings.Join(cardStrings(out.Cards[:10]), " - "); got != tt.prefix {
			t.Errorf("%s: expected %s, got %s", tt.client, tt.prefix, got)
		}
		if out.StartCard != out.Cards[0] || res.Metric != float64(out.Cards[0].Index) {
			t.Errorf("Start card and metric should follow the first card")
		}
	}
}

func TestBaccaratGame(t *testing.T) {
	tests := []struct {
		client, server string
		nonce          uint64
		player, banker string
		totals         [2]int
		winner         string
		natural        bool
	}{
		{"some client seed", "some server seed", 1, "♠9 ♠Q", "♦4 ♠5", [2]int{9, 9}, "tie", true},
		{"some client seed", "some server seed", 2, "♥Q ♣Q ♣10", "♥4 ♥3", [2]int{0, 7}, "banker", false},
		{"some client seed", "some server seed", 4, "♦5 ♠A", "♣8 ♣9", [2]int{6, 7}, "banker", false},
		{"some client seed", "some server seed", 5, "♥3 ♦9 ♣2", "♦10 ♦4 ♠3", [2]int{4, 7}, "banker", false},
		{"client seed", "server seed", 1, "♠J ♥10 ♥9", "♥5 ♣K", [2]int{9, 5}, "player", false},
		{"client seed", "server seed", 3, "♦5 ♥K ♠Q", "♣7 ♠7", [2]int{5, 4}, "player", false},
	}
	for _, tt := range tests {
		res, err := Simulate("baccarat", tt.client, tt.server, tt.nonce, nil)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		out := res.Details.(BaccaratOutcome)
		if got := strings.Join(cardStrings(out.Player), " "); got != tt.player {
			t.Errorf("%s/%d: expected player %s, got %s", tt.client, tt.nonce, tt.player, got)
		}
		if got := strings.Join(cardStrings(out.Banker), " "); got != tt.banker {
			t.Errorf("%s/%d: expected banker %s, got %s", tt.client, tt.nonce, tt.banker, got)
		}
		if out.PlayerTotal != tt.totals[0] || out.BankerTotal != tt.totals[1] {
			t.Errorf("%s/%d: expected totals %v, got %d-%d", tt.client, tt.nonce, tt.totals, out.PlayerTotal, out.BankerTotal)
		}
		if out.Winner != tt.winner || out.Natural != tt.natural {
			t.Errorf("%s/%d: expected %s natural=%v, got %s natural=%v", tt.client, tt.nonce, tt.winner, tt.natural, out.Winner, out.Natural)
		}
		if res.Derivation.Floats != len(out.Steps) {
			t.Errorf("Consumed %d floats for %d cards", res.Derivation.Floats, len(out.Steps))
		}
	}
}

func TestBaccaratStepOrder(t *testing.T) {
	res, _ := Simulate("baccarat", "some client seed", "some server seed", 2, nil)
	out := res.Details.(BaccaratOutcome)
	var order []string
	for _, s := range out.Steps {
		order = append(order, s.Recipient)
	}
	want := []string{"player", "player", "banker", "banker", "player"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected deal order %v, got %v", want, order)
	}
}

func TestBankerShouldDraw(t *testing.T) {
	tests := []struct {
		banker, third int
		want          bool
	}{
		{2, 8, true},
		{3, 8, false},
		{3, 9, true},
		{4, 1, false},
		{4, 7, true},
		{5, 3, false},
		{5, 4, true},
		{6, 5, false},
		{6, 6, true},
		{7, 6, false},
	}
	for _, tt := range tests {
		if got := bankerShouldDraw(tt.banker, tt.third); got != tt.want {
			t.Errorf("bankerShouldDraw(%d, %d) = %v, want %v", tt.banker, tt.third, got, tt.want)
		}
	}
}

func TestVideoPokerGame(t *testing.T) {
	tests := []struct {
		nonce        uint64
		hand         string
		replacements string
	}{
		{1, "♠J ♦10 ♥5 ♣K ♦9", "♥K ♥10 ♣9 ♥A ♥3"},
		{2, "♦9 ♦10 ♥4 ♦3 ♣2", "♦8 ♦4 ♠2 ♠Q ♣4"},
	}
	for _, tt := range tests {
		res := simulate(t, "video_poker", tt.nonce, nil)
		out := res.Details.(VideoPokerOutcome)
		if got := strings.Join(cardStrings(out.Hand), " "); got != tt.hand {
			t.Errorf("Nonce %d: expected hand %s, got %s", tt.nonce, tt.hand, got)
		}
		if got := strings.Join(cardStrings(out.Replacements), " "); got != tt.replacements {
			t.Errorf("Nonce %d: expected replacements %s, got %s", tt.nonce, tt.replacements, got)
		}
		seen := map[int]bool{}
		for _, c := range out.Deck {
			if seen[c.Index] {
				t.Errorf("Nonce %d: card %s dealt twice", tt.nonce, c)
			}
			seen[c.Index] = true
		}
		if len(seen) != 52 {
			t.Errorf("Nonce %d: expected 52 distinct cards, got %d", tt.nonce, len(seen))
		}
	}
}

func TestEvaluatePokerHand(t *testing.T) {
	hand := func(labels ...string) []Card {
		out := make([]Card, 0, len(labels))
		for _, l := range labels {
			for _, c := range cardDeck {
				if c.String() == l {
					out = append(out, c)
				}
			}
		}
		return out
	}
	tests := []struct {
		cards []Card
		want  string
	}{
		{hand("♠10", "♠J", "♠Q", "♠K", "♠A"), "royal_flush"},
		{hand("♥5", "♥6", "♥7", "♥8", "♥9"), "straight_flush"},
		{hand("♥5", "♦5", "♠5", "♣5", "♥9"), "four_of_a_kind"},
		{hand("♥5", "♦5", "♠5", "♣9", "♥9"), "full_house"},
		{hand("♥2", "♥6", "♥7", "♥8", "♥K"), "flush"},
		{hand("♦A", "♥2", "♠3", "♣4", "♥5"), "straight"},
		{hand("♦10", "♥J", "♠Q", "♣K", "♥A"), "straight"},
		{hand("♥5", "♦5", "♠5", "♣9", "♥K"), "three_of_a_kind"},
		{hand("♥5", "♦5", "♠9", "♣9", "♥K"), "two_pair"},
		{hand("♥J", "♦J", "♠2", "♣9", "♥K"), "jacks_or_better"},
		{hand("♥5", "♦5", "♠2", "♣9", "♥K"), "pair"},
		{hand("♥5", "♦7", "♠2", "♣9", "♥K"), "high_card"},
	}
	for _, tt := range tests {
		if got := evaluatePokerHand(tt.cards); got != tt.want {
			t.Errorf("%v: expected %s, got %s", cardStrings(tt.cards), tt.want, got)
		}
	}
}
