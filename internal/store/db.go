package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// SeedPair is a committed server seed with its client seed and nonce counter.
// ServerSeed stays empty until the pair is revealed.
type SeedPair struct {
	ID         string     `json:"id"`
	ClientSeed string     `json:"client_seed"`
	Commitment string     `json:"server_seed_hash"`
	Nonce      uint64     `json:"nonce"`
	ServerSeed string     `json:"server_seed,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RevealedAt *time.Time `json:"revealed_at,omitempty"`
}

// Revealed reports whether the server seed has been disclosed.
func (p SeedPair) Revealed() bool {
	return p.RevealedAt != nil
}

// Page selects a page of a listing. Zero values fall back to defaults.
type Page struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

func (p Page) normalize(defaultPerPage int) Page {
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > 500 {
		p.PerPage = 500
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.PerPage
}

func totalPages(count, perPage int) int {
	return (count + perPage - 1) / perPage
}

// SeedPairsList is one page of seed pairs, newest first.
type SeedPairsList struct {
	SeedPairs  []SeedPair `json:"seed_pairs"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	TotalPages int        `json:"totalPages"`
}

// RunsQuery filters scan run listings.
type RunsQuery struct {
	Page
	Game string `json:"game,omitempty"`
}

// RunsList is one page of scan runs, newest first.
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// HitsPage is one page of hits ordered by nonce.
type HitsPage struct {
	Hits       []HitWithDelta `json:"hits"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
	TotalPages int            `json:"totalPages"`
}

// Run is a persisted nonce scan. Only the commitment of the server seed is
// stored.
type Run struct {
	ID             string    `json:"id"`
	Game           string    `json:"game"`
	ServerSeedHash string    `json:"server_seed_hash"`
	ClientSeed     string    `json:"client_seed"`
	NonceStart     uint64    `json:"nonce_start"`
	NonceEnd       uint64    `json:"nonce_end"`
	ConfigJSON     string    `json:"config_json"`
	TargetOp       string    `json:"target_op"`
	TargetVal      float64   `json:"target_val"`
	TargetVal2     float64   `json:"target_val2"`
	Tolerance      float64   `json:"tolerance"`
	Filter         string    `json:"filter"`
	HitLimit       int       `json:"hit_limit"`
	TimedOut       bool      `json:"timed_out"`
	HitCount       int       `json:"hit_count"`
	TotalEvaluated uint64    `json:"total_evaluated"`
	SummaryMin     *float64  `json:"summary_min"`
	SummaryMax     *float64  `json:"summary_max"`
	SummarySum     *float64  `json:"summary_sum"`
	SummaryCount   int       `json:"summary_count"`
	EngineVersion  string    `json:"engine_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// Hit is one matching nonce of a run. Details holds the outcome as JSON.
type Hit struct {
	ID      int64   `json:"id"`
	RunID   string  `json:"run_id"`
	Nonce   uint64  `json:"nonce"`
	Metric  float64 `json:"metric"`
	Details string  `json:"details"`
}

// HitWithDelta carries the nonce distance to the previous hit of the run.
type HitWithDelta struct {
	Hit
	DeltaNonce *uint64 `json:"delta_nonce,omitempty"`
}
