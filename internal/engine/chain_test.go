package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
)

func testChain(t *testing.T, hexLinks bool) []string {
	t.Helper()
	return GenerateChain(sha256.Sum256([]byte("testing")), 10, hexLinks)
}

func TestGenerateChain(t *testing.T) {
	chain := testChain(t, false)
	if len(chain) != 10 {
		t.Fatalf("Expected 10 links, got %d", len(chain))
	}
	want := []string{
		"cf80cd8aed482d5d1527d7dc72fceff84e6326592848447d2dc0b0e87dfc9a90",
		"f9f6bac52ea07227042b6bfdc55c24f310d1cbfc75153bb472337d25170dbf8b",
		"f6afb6cbe7c270724bd4851c020d489257fa79a70e694a9b5099375464348697",
	}
	for i, w := range want {
		if chain[i] != w {
			t.Errorf("Link %d: expected %s, got %s", i, w, chain[i])
		}
	}
	if chain[9] != "5fb0575706ada2a1a10a0294b11490170c63b252dc064ce63c86de572d409ba6" {
		t.Errorf("Unexpected tip %s", chain[9])
	}
}

func TestGenerateChainHexLinks(t *testing.T) {
	chain := GenerateChain(sha256.Sum256([]byte("testing")), 3, true)
	if chain[1] != "66efdc145d51e567081326b5da8756a77d9d5833c6e002b305af0276de694989" {
		t.Errorf("Unexpected second hex link %s", chain[1])
	}
}

func TestVerifyGameHash(t *testing.T) {
	chain := testChain(t, false)
	cfg := ChainConfig{Tip: chain[9], Salt: StakeCrashSalt, MaxLength: 10}

	tests := []struct {
		name     string
		hash     string
		valid    bool
		distance int
	}{
		{"inside chain", chain[2], true, 7},
		{"tip itself", chain[9], true, 0},
		{"uppercase hex", "F6AFB6CBE7C270724BD4851C020D489257FA79A70E694A9B5099375464348697", true, 7},
		{"not in chain", "deadbeefe7c270724bd4851c020d489257fa79a70e694a9b5099375464348698", false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := VerifyGameHash(context.Background(), tt.hash, cfg)
			if err != nil {
				t.Fatalf("VerifyGameHash: %v", err)
			}
			if res.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, res.Valid)
			}
			if res.Distance != tt.distance {
				t.Errorf("Expected distance %d, got %d", tt.distance, res.Distance)
			}
		})
	}
}

func TestVerifyGameHashRespectsMaxLength(t *testing.T) {
	chain := testChain(t, false)
	res, err := VerifyGameHash(context.Background(), chain[0], ChainConfig{Tip: chain[9], MaxLength: 5})
	if err != nil {
		t.Fatalf("VerifyGameHash: %v", err)
	}
	if res.Valid || res.Checked != 5 {
		t.Errorf("Expected an unsuccessful walk of 5 links, got %+v", res)
	}
}

func TestVerifyGameHashHexLinks(t *testing.T) {
	chain := GenerateChain(sha256.Sum256([]byte("testing")), 5, true)
	cfg := ChainConfig{Tip: chain[4], MaxLength: 10, HexLinks: true}
	res, err := VerifyGameHash(context.Background(), chain[1], cfg)
	if err != nil {
		t.Fatalf("VerifyGameHash: %v", err)
	}
	if !res.Valid || res.Distance != 3 {
		t.Errorf("Expected valid at distance 3, got %+v", res)
	}
	cfg.HexLinks = false
	if res, _ := VerifyGameHash(context.Background(), chain[1], cfg); res.Valid {
		t.Error("Raw-byte walk should not reach a hex-linked tip")
	}
}

func TestParseGameHash(t *testing.T) {
	bad := []string{
		"",
		"abc",
		"zz80cd8aed482d5d1527d7dc72fceff84e6326592848447d2dc0b0e87dfc9a90",
		"cf80cd8aed482d5d1527d7dc72fceff84e6326592848447d2dc0b0e87dfc9a9000",
	}
	for _, s := range bad {
		if _, err := ParseGameHash(s); !errors.Is(err, ErrInvalidGameHash) {
			t.Errorf("ParseGameHash(%q): expected ErrInvalidGameHash, got %v", s, err)
		}
	}
}

func TestSharedStream(t *testing.T) {
	chain := testChain(t, false)
	s, err := NewSharedStream(chain[2], StakeCrashSalt)
	if err != nil {
		t.Fatalf("NewSharedStream: %v", err)
	}
	if got := s.At(0); got != 0.687449220335111 {
		t.Errorf("Expected first shared float 0.687449220335111, got %.17g", got)
	}
	if s.Mode() != ModeMultiplayer {
		t.Errorf("Expected multiplayer mode, got %s", s.Mode())
	}

	if _, err := NewSharedStream("nothex", StakeCrashSalt); !errors.Is(err, ErrInvalidGameHash) {
		t.Errorf("Expected ErrInvalidGameHash, got %v", err)
	}
	if _, err := NewSharedStream(chain[2], ""); !errors.Is(err, ErrInvalidSeedMaterial) {
		t.Errorf("Expected ErrInvalidSeedMaterial, got %v", err)
	}
}

func TestVerifyGameHashStopsOnCancel(t *testing.T) {
	chain := testChain(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := VerifyGameHash(ctx, chain[0], ChainConfig{Tip: chain[9], MaxLength: 1 << 60})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if res.Valid || res.Checked != 0 {
		t.Errorf("Expected no links walked, got %+v", res)
	}
}
