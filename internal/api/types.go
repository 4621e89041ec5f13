package api

import (
	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/scan"
	"github.com/shopspring/decimal"
)

// EngineError is the JSON body of every error response.
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e EngineError) Error() string {
	return e.Message
}

const (
	// Input validation errors
	ErrTypeInvalidSeed     = "invalid_seed"
	ErrTypeInvalidGameHash = "invalid_game_hash"
	ErrTypeInvalidParams   = "invalid_params"
	ErrTypeValidation      = "validation_error"

	// Game errors
	ErrTypeGameNotFound   = "game_not_found"
	ErrTypeGameEvaluation = "game_evaluation_error"

	// Resource errors
	ErrTypeNotFound = "not_found"
	ErrTypeRevealed = "seed_pair_revealed"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory groups error types for monitoring.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategoryResource   ErrorCategory = "resource"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type.
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidSeed, ErrTypeInvalidGameHash, ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeGameNotFound, ErrTypeGameEvaluation:
		return CategoryGame
	case ErrTypeNotFound, ErrTypeRevealed:
		return CategoryResource
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

type GamesResponse struct {
	Games         []games.GameSpec `json:"games"`
	EngineVersion string           `json:"engine_version"`
}

// SimulateRequest evaluates one single-player round. Amount is optional;
// when present the response carries the payout.
type SimulateRequest struct {
	Game       string           `json:"game"`
	ClientSeed string           `json:"client_seed"`
	ServerSeed string           `json:"server_seed"`
	Nonce      uint64           `json:"nonce"`
	Config     games.Config     `json:"config,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

type MultiplayerRequest struct {
	Game     string           `json:"game"`
	GameHash string           `json:"game_hash"`
	Config   games.Config     `json:"config,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

type SimulateResponse struct {
	games.Result
	Payout        *decimal.Decimal `json:"payout,omitempty"`
	EngineVersion string           `json:"engine_version"`
}

type SeedHashRequest struct {
	ServerSeed string `json:"server_seed"`
}

type SeedHashResponse struct {
	Hash          string `json:"hash"`
	EngineVersion string `json:"engine_version"`
}

type SeedVerifyRequest struct {
	ServerSeed string `json:"server_seed"`
	Commitment string `json:"server_seed_hash"`
}

type SeedVerifyResponse struct {
	Valid        bool   `json:"valid"`
	ComputedHash string `json:"computed_server_seed_hash"`
}

// CrashVerifyRequest checks a crash game hash against a chain. Chain
// defaults to the server's configured chain.
type CrashVerifyRequest struct {
	GameHash string         `json:"game_hash"`
	Chain    *ChainOverride `json:"chain,omitempty"`
}

// ChainOverride replaces the set fields of the server's chain.
type ChainOverride struct {
	Tip       string `json:"tip,omitempty"`
	Salt      string `json:"salt,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	HexLinks  *bool  `json:"hex_links,omitempty"`
}

func (o *ChainOverride) apply(base engine.ChainConfig) engine.ChainConfig {
	if o == nil {
		return base
	}
	if o.Tip != "" {
		base.Tip = o.Tip
	}
	if o.Salt != "" {
		base.Salt = o.Salt
	}
	if o.MaxLength > 0 {
		base.MaxLength = o.MaxLength
	}
	if o.HexLinks != nil {
		base.HexLinks = *o.HexLinks
	}
	return base
}

type CrashVerifyResponse struct {
	Chain  engine.ChainVerification `json:"chain"`
	Result games.Result             `json:"result"`
}

// ScanRequest is a scan.Request plus an optional flag to store the run.
type ScanRequest struct {
	scan.Request
	Persist bool `json:"persist,omitempty"`
}

type ScanResponse struct {
	*scan.Result
	RunID string `json:"run_id,omitempty"`
}

type CreateSeedPairRequest struct {
	ClientSeed string `json:"client_seed"`
}

type BetRequest struct {
	Game   string           `json:"game"`
	Config games.Config     `json:"config,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type BetResponse struct {
	SeedPairID string `json:"seed_pair_id"`
	games.Result
	Payout *decimal.Decimal `json:"payout,omitempty"`
}

type RotateRequest struct {
	ClientSeed string `json:"client_seed"`
}
