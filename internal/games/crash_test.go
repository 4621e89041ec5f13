package games

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/MJE43/fair-go/internal/engine"
)

func TestCrashGame(t *testing.T) {
	chain := engine.GenerateChain(sha256.Sum256([]byte("testing")), 10, false)

	tests := []struct {
		name  string
		hash  string
		point float64
	}{
		{"chain link", chain[2], 1.440106367685025},
		{"unchained hash", "deadbeefe7c270724bd4851c020d489257fa79a70e694a9b5099375464348698", 1.2897005203687084},
		{"salt as hash", engine.StakeCrashSalt, 1.182328680860153},
		{"published tip", engine.StakeCrashTip, 1.1813534502396548},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SimulateMultiplayer("crash", tt.hash, nil)
			if err != nil {
				t.Fatalf("SimulateMultiplayer: %v", err)
			}
			if res.Metric != tt.point {
				t.Errorf("Expected %.17g, got %.17g", tt.point, res.Metric)
			}
			again, _ := SimulateMultiplayer("crash", tt.hash, nil)
			if again.Metric != res.Metric {
				t.Errorf("Shared rounds must be identical on every call")
			}
		})
	}
}

func TestCrashDerivation(t *testing.T) {
	res, err := SimulateMultiplayer("crash", engine.StakeCrashSalt, nil)
	if err != nil {
		t.Fatalf("SimulateMultiplayer: %v", err)
	}
	d := res.Derivation
	if d.Mode != engine.ModeMultiplayer || d.GameHash != engine.StakeCrashSalt || d.Salt != engine.StakeCrashSalt {
		t.Errorf("Unexpected derivation %+v", d)
	}
	if d.ServerSeed != "" || d.ClientSeed != "" || d.Nonce != 0 {
		t.Errorf("Multiplayer derivation should carry no seed pair: %+v", d)
	}
	out := res.Details.(CrashOutcome)
	if out.Value != 3596307601 {
		t.Errorf("Expected leading value 3596307601, got %d", out.Value)
	}
	if out.HouseEdge != 0.01 {
		t.Errorf("Expected a 1%% house edge, got %v", out.HouseEdge)
	}
}

func TestCrashCustomSalt(t *testing.T) {
	hash := "deadbeefe7c270724bd4851c020d489257fa79a70e694a9b5099375464348698"
	a, _ := SimulateMultiplayer("crash", hash, nil)
	b, err := SimulateMultiplayer("crash", hash, Config{"salt": "another salt"})
	if err != nil {
		t.Fatalf("SimulateMultiplayer: %v", err)
	}
	if a.Metric == b.Metric {
		t.Error("Different salts should produce different rounds")
	}
	if _, err := SimulateMultiplayer("crash", hash, Config{"salt": ""}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for empty salt, got %v", err)
	}
}

func TestCrashInvalidHash(t *testing.T) {
	if _, err := SimulateMultiplayer("crash", "not a hash", nil); !errors.Is(err, engine.ErrInvalidGameHash) {
		t.Errorf("Expected ErrInvalidGameHash, got %v", err)
	}
}

func TestCrashPointFloor(t *testing.T) {
	if got := crashPoint(0xFFFFFFFF, crashHouseEdge); got != 1 {
		t.Errorf("Expected the floor of 1, got %v", got)
	}
	if got := crashPoint(0, 0); got != 1<<32 {
		t.Errorf("Expected 2^32 with no edge, got %v", got)
	}
}

func TestCrashPointHelper(t *testing.T) {
	got, err := CrashPoint("deadbeefe7c270724bd4851c020d489257fa79a70e694a9b5099375464348698", engine.StakeCrashSalt)
	if err != nil {
		t.Fatalf("CrashPoint: %v", err)
	}
	if got != 1.2897005203687084 {
		t.Errorf("Expected 1.2897005203687084, got %v", got)
	}
}
