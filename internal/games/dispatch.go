package games

import (
	"fmt"

	"github.com/MJE43/fair-go/internal/engine"
)

// Result is an outcome together with everything needed to re-derive it.
type Result struct {
	GameResult
	Config     Config            `json:"config"`
	Derivation engine.Derivation `json:"derivation"`
}

// saltedSimulator is implemented by multiplayer simulators whose stream is
// keyed by an operator salt.
type saltedSimulator interface {
	Salt() string
}

// Prepared resolves id, checks its mode and validates cfg.
func Prepared(id string, mode engine.Mode, cfg Config) (Game, Simulator, error) {
	g, err := Resolve(id)
	if err != nil {
		return nil, nil, err
	}
	spec := g.Spec()
	if spec.Mode != mode {
		return nil, nil, fmt.Errorf("%w: %s is a %s game", ErrWrongMode, spec.ID, spec.Mode)
	}
	sim, err := g.Prepare(cfg)
	if err != nil {
		return nil, nil, err
	}
	return g, sim, nil
}

// Simulate plays one single-player round for a seed pair and nonce.
func Simulate(id, clientSeed, serverSeed string, nonce uint64, cfg Config) (Result, error) {
	g, sim, err := Prepared(id, engine.ModeSingle, cfg)
	if err != nil {
		return Result{}, err
	}
	stream, err := engine.NewStream(serverSeed, clientSeed, nonce)
	if err != nil {
		return Result{}, err
	}
	return run(g, sim, stream, cfg), nil
}

// SimulateMultiplayer plays the shared round for gameHash.
func SimulateMultiplayer(id, gameHash string, cfg Config) (Result, error) {
	g, sim, err := Prepared(id, engine.ModeMultiplayer, cfg)
	if err != nil {
		return Result{}, err
	}
	salted, ok := sim.(saltedSimulator)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s has no shared salt", ErrWrongMode, g.Spec().ID)
	}
	stream, err := engine.NewSharedStream(gameHash, salted.Salt())
	if err != nil {
		return Result{}, err
	}
	return run(g, sim, stream, cfg), nil
}

// SimulateStream plays a prepared simulator against an existing stream.
func SimulateStream(sim Simulator, stream engine.Stream) (GameResult, engine.Derivation) {
	c := stream.Cursor()
	out := sim.Simulate(c)
	return out, stream.Derivation(int(c.Position()))
}

func run(g Game, sim Simulator, stream engine.Stream, cfg Config) Result {
	out, d := SimulateStream(sim, stream)
	return Result{
		GameResult: out,
		Config:     Merge(g.Spec().Defaults, cfg),
		Derivation: d,
	}
}
