package config

import (
	"strings"
	"testing"
	"time"

	"github.com/MJE43/fair-go/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.RequestTimeout != 60*time.Second || cfg.DBPath != "fair.db" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	chain := cfg.CrashChain()
	if chain != engine.StakeCrashChain() {
		t.Errorf("Expected the Stake chain by default, got %+v", chain)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tip := "cf80cd8aed482d5d1527d7dc72fceff84e6326592848447d2dc0b0e87dfc9a90"
	t.Setenv("FAIR_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("FAIR_REQUEST_TIMEOUT", "5s")
	t.Setenv("FAIR_CRASH_CHAIN_TIP", tip)
	t.Setenv("FAIR_CRASH_SALT", "my salt")
	t.Setenv("FAIR_CRASH_CHAIN_LENGTH", "100")
	t.Setenv("FAIR_CRASH_HEX_LINKS", "true")
	t.Setenv("FAIR_SCAN_WORKERS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.RequestTimeout != 5*time.Second || cfg.ScanWorkers != 4 {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	want := engine.ChainConfig{Tip: tip, Salt: "my salt", MaxLength: 100, HexLinks: true}
	if got := cfg.CrashChain(); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Config{ScanWorkers: -1, CrashChainTip: "nope"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	for _, want := range []string{"FAIR_HTTP_ADDR", "FAIR_REQUEST_TIMEOUT", "FAIR_SCAN_WORKERS", "FAIR_SCAN_MAX_RANGE", "FAIR_CRASH_CHAIN_TIP"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %s in %q", want, err)
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("FAIR_REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Errorf("Expected a parse env error, got %v", err)
	}
}
