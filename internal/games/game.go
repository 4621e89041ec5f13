package games

import (
	"fmt"

	"github.com/MJE43/fair-go/internal/engine"
)

// Kind identifies one game of the closed catalog.
type Kind string

const (
	Baccarat     Kind = "baccarat"
	Blackjack    Kind = "blackjack"
	Crash        Kind = "crash"
	DiamondPoker Kind = "diamond_poker"
	Dice         Kind = "dice"
	Hilo         Kind = "hilo"
	Keno         Kind = "keno"
	Limbo        Kind = "limbo"
	Mines        Kind = "mines"
	Plinko       Kind = "plinko"
	Roulette     Kind = "roulette"
	Slots        Kind = "slots"
	VideoPoker   Kind = "video_poker"
	Wheel        Kind = "wheel"
)

// Kinds lists every game in catalog order.
var Kinds = []Kind{
	Baccarat, Blackjack, Crash, DiamondPoker, Dice, Hilo, Keno,
	Limbo, Mines, Plinko, Roulette, Slots, VideoPoker, Wheel,
}

// GameSpec is the catalog entry for a game.
type GameSpec struct {
	ID          Kind        `json:"id"`
	Name        string      `json:"name"`
	Mode        engine.Mode `json:"mode"`
	MetricLabel string      `json:"metric_label"`
	Defaults    Config      `json:"default_config"`
}

// GameResult is a finished outcome. Metric is a single scalar summary used for
// scanning and display; Details carries the game-specific outcome struct.
type GameResult struct {
	Game        Kind     `json:"game"`
	Metric      float64  `json:"metric"`
	MetricLabel string   `json:"metric_label"`
	Multiplier  *float64 `json:"multiplier,omitempty"`
	Details     any      `json:"details"`
}

// Game is a catalog entry that can bind itself to a configuration.
type Game interface {
	Spec() GameSpec
	// Prepare merges cfg over the defaults and validates it. It never touches
	// randomness, so a rejected config leaves every cursor and nonce untouched.
	Prepare(cfg Config) (Simulator, error)
}

// Simulator is a game bound to validated configuration.
type Simulator interface {
	// FloatCount is the largest number of floats Simulate can consume.
	FloatCount() int
	// Simulate draws from c in the game's published order.
	Simulate(c *engine.Cursor) GameResult
}

// Resolve returns the game for id, or ErrUnknownGame.
func Resolve(id string) (Game, error) {
	switch Kind(id) {
	case Baccarat:
		return baccaratGame{}, nil
	case Blackjack:
		return blackjackGame{}, nil
	case Crash:
		return crashGame{}, nil
	case DiamondPoker:
		return diamondPokerGame{}, nil
	case Dice:
		return diceGame{}, nil
	case Hilo:
		return hiloGame{}, nil
	case Keno:
		return kenoGame{}, nil
	case Limbo:
		return limboGame{}, nil
	case Mines:
		return minesGame{}, nil
	case Plinko:
		return plinkoGame{}, nil
	case Roulette:
		return rouletteGame{}, nil
	case Slots:
		return slotsGame{}, nil
	case VideoPoker:
		return videoPokerGame{}, nil
	case Wheel:
		return wheelGame{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, id)
	}
}

// Catalog lists every game in catalog order.
func Catalog() []GameSpec {
	specs := make([]GameSpec, 0, len(Kinds))
	for _, k := range Kinds {
		g, err := Resolve(string(k))
		if err != nil {
			panic(err)
		}
		specs = append(specs, g.Spec())
	}
	return specs
}

func multiplier(m float64) *float64 {
	return &m
}
