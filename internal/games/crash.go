package games

import (
	"math"

	"github.com/MJE43/fair-go/internal/engine"
)

// crashHouseEdge is the fraction of each crash round kept by the house.
const crashHouseEdge = 0.01

// crashGame is the shared multiplayer round. Every player derives the same
// stream from the round's game hash and the operator's salt, so it has no
// seed pair or nonce.
type crashGame struct{}

type CrashConfig struct {
	Salt string `json:"salt"`
}

type CrashOutcome struct {
	CrashPoint float64 `json:"crash_point"`
	// Value is the leading 32-bit integer of the HMAC.
	Value     uint32  `json:"value"`
	HouseEdge float64 `json:"house_edge"`
}

type crashSimulator struct {
	salt string
}

func (crashGame) Spec() GameSpec {
	return GameSpec{
		ID:          Crash,
		Name:        "Crash",
		Mode:        engine.ModeMultiplayer,
		MetricLabel: "crash_point",
		Defaults:    Config{"salt": engine.StakeCrashSalt},
	}
}

func (g crashGame) Prepare(cfg Config) (Simulator, error) {
	var opts CrashConfig
	if err := decodeConfig(Crash, g.Spec().Defaults, cfg, &opts); err != nil {
		return nil, err
	}
	if opts.Salt == "" {
		return nil, configErr(Crash, "salt", "must not be empty")
	}
	return crashSimulator{salt: opts.Salt}, nil
}

func (s crashSimulator) Salt() string { return s.salt }

func (crashSimulator) FloatCount() int { return 1 }

func (crashSimulator) Simulate(c *engine.Cursor) GameResult {
	// f is n/2^32 exactly, so the integer comes back without loss.
	n := uint32(c.Next() * (1 << 32))
	point := crashPoint(n, crashHouseEdge)
	return GameResult{
		Game:        Crash,
		Metric:      point,
		MetricLabel: "crash_point",
		Multiplier:  multiplier(point),
		Details:     CrashOutcome{CrashPoint: point, Value: n, HouseEdge: crashHouseEdge},
	}
}

// crashPoint is max(1, 2^32/(n+1) * (1-edge)).
func crashPoint(n uint32, edge float64) float64 {
	return math.Max(1, float64(1<<32)/float64(uint64(n)+1)*(1-edge))
}

// CrashPoint returns the crash multiplier of the round identified by
// gameHash under salt.
func CrashPoint(gameHash, salt string) (float64, error) {
	res, err := SimulateMultiplayer(string(Crash), gameHash, Config{"salt": salt})
	if err != nil {
		return 0, err
	}
	return res.Metric, nil
}
