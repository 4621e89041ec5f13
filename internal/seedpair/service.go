// Package seedpair owns the commit/bet/reveal lifecycle of a seed pair.
//
// A pair starts with a freshly generated server seed that only the vault
// knows; callers see its commitment. Every bet claims the next nonce.
// Rotating reveals the old server seed and opens a new pair.
package seedpair

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/logging"
	"github.com/MJE43/fair-go/internal/store"
)

var (
	ErrRevealed = store.ErrRevealed
	ErrNotFound = store.ErrNotFound
)

// Store persists seed pairs.
type Store interface {
	CreateSeedPair(ctx context.Context, p *store.SeedPair) error
	GetSeedPair(ctx context.Context, id string) (*store.SeedPair, error)
	IncrementNonce(ctx context.Context, id string) (uint64, error)
	RevealSeedPair(ctx context.Context, id, serverSeed string) error
	DeleteSeedPair(ctx context.Context, id string) error
	ListSeedPairs(ctx context.Context, page store.Page) (*store.SeedPairsList, error)
}

// Vault holds server seeds until they are revealed.
type Vault interface {
	Put(id, seed string) error
	Get(id string) (string, error)
	Delete(id string) error
}

type Service struct {
	store Store
	vault Vault
	log   zerolog.Logger
}

func New(st Store, vault Vault, log zerolog.Logger) *Service {
	return &Service{store: st, vault: vault, log: log.With().Str("component", "seedpair").Logger()}
}

// Bet is the outcome of one bet. Its derivation never carries the server seed.
type Bet struct {
	SeedPairID string `json:"seed_pair_id"`
	games.Result
}

// Rotation is the result of revealing a pair and opening its successor.
type Rotation struct {
	Revealed *store.SeedPair `json:"revealed"`
	Next     *store.SeedPair `json:"next"`
}

// Create opens a new seed pair for clientSeed.
func (s *Service) Create(ctx context.Context, clientSeed string) (*store.SeedPair, error) {
	if strings.TrimSpace(clientSeed) == "" {
		return nil, fmt.Errorf("%w: client seed is required", engine.ErrInvalidSeedMaterial)
	}
	seed, err := engine.GenerateServerSeed()
	if err != nil {
		return nil, err
	}
	commitment, err := engine.HashServerSeed(seed)
	if err != nil {
		return nil, err
	}

	pair := &store.SeedPair{ID: uuid.NewString(), ClientSeed: clientSeed, Commitment: commitment}
	if err := s.vault.Put(pair.ID, seed); err != nil {
		return nil, fmt.Errorf("store server seed: %w", err)
	}
	if err := s.store.CreateSeedPair(ctx, pair); err != nil {
		return nil, multierr.Append(err, s.vault.Delete(pair.ID))
	}

	s.log.Info().
		Str("seed_pair_id", pair.ID).
		Str("commitment", commitment).
		Str("server_seed_fp", logging.SeedFingerprint(seed)).
		Msg("seed pair created")
	return pair, nil
}

// Get returns a seed pair. The server seed is only present once revealed.
func (s *Service) Get(ctx context.Context, id string) (*store.SeedPair, error) {
	return s.store.GetSeedPair(ctx, id)
}

func (s *Service) List(ctx context.Context, page store.Page) (*store.SeedPairsList, error) {
	return s.store.ListSeedPairs(ctx, page)
}

// Bet plays game on pair id with the next nonce. The config is validated
// before a nonce is claimed, so a rejected bet leaves the counter untouched.
func (s *Service) Bet(ctx context.Context, id, game string, cfg games.Config) (*Bet, error) {
	pair, err := s.store.GetSeedPair(ctx, id)
	if err != nil {
		return nil, err
	}
	if pair.Revealed() {
		return nil, ErrRevealed
	}

	g, sim, err := games.Prepared(game, engine.ModeSingle, cfg)
	if err != nil {
		return nil, err
	}
	seed, err := s.vault.Get(id)
	if err != nil {
		return nil, fmt.Errorf("load server seed: %w", err)
	}
	nonce, err := s.store.IncrementNonce(ctx, id)
	if err != nil {
		return nil, err
	}
	stream, err := engine.NewStream(seed, pair.ClientSeed, nonce)
	if err != nil {
		return nil, err
	}

	out, d := games.SimulateStream(sim, stream)
	s.log.Debug().
		Str("seed_pair_id", id).
		Str("game", string(g.Spec().ID)).
		Uint64("nonce", nonce).
		Float64("metric", out.Metric).
		Msg("bet settled")

	return &Bet{
		SeedPairID: id,
		Result: games.Result{
			GameResult: out,
			Config:     games.Merge(g.Spec().Defaults, cfg),
			Derivation: d.Redacted(),
		},
	}, nil
}

// Rotate opens a successor pair and reveals the server seed of id. An empty
// newClientSeed keeps the current client seed.
func (s *Service) Rotate(ctx context.Context, id, newClientSeed string) (*Rotation, error) {
	pair, err := s.store.GetSeedPair(ctx, id)
	if err != nil {
		return nil, err
	}
	if pair.Revealed() {
		return nil, ErrRevealed
	}
	seed, err := s.vault.Get(id)
	if err != nil {
		return nil, fmt.Errorf("load server seed: %w", err)
	}

	if strings.TrimSpace(newClientSeed) == "" {
		newClientSeed = pair.ClientSeed
	}
	next, err := s.Create(ctx, newClientSeed)
	if err != nil {
		return nil, err
	}

	if err := s.store.RevealSeedPair(ctx, id, seed); err != nil {
		// Usually a concurrent rotation got there first. Drop the unused successor.
		return nil, multierr.Append(err, s.discard(ctx, next.ID))
	}
	if err := s.vault.Delete(id); err != nil {
		s.log.Warn().Err(err).Str("seed_pair_id", id).Msg("revealed seed still in vault")
	}

	revealed, err := s.store.GetSeedPair(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("seed_pair_id", id).
		Str("next_seed_pair_id", next.ID).
		Uint64("bets", revealed.Nonce).
		Msg("seed pair revealed")
	return &Rotation{Revealed: revealed, Next: next}, nil
}

// discard removes a pair that was created but never handed out.
func (s *Service) discard(ctx context.Context, id string) error {
	err := multierr.Append(s.store.DeleteSeedPair(ctx, id), s.vault.Delete(id))
	if err != nil {
		s.log.Error().Err(err).Str("seed_pair_id", id).Msg("discard unused seed pair")
	}
	return err
}

// VerifyRequest is everything a third party needs to re-check a bet.
type VerifyRequest struct {
	ServerSeed string       `json:"server_seed"`
	Commitment string       `json:"server_seed_hash,omitempty"`
	ClientSeed string       `json:"client_seed"`
	Nonce      uint64       `json:"nonce"`
	Game       string       `json:"game"`
	Config     games.Config `json:"config,omitempty"`
}

// Verification reports the recomputed commitment and outcome. CommitmentValid
// is nil when no commitment was supplied.
type Verification struct {
	Commitment      string       `json:"computed_server_seed_hash"`
	CommitmentValid *bool        `json:"commitment_valid,omitempty"`
	Result          games.Result `json:"result"`
}

// Verify recomputes a revealed bet. It needs no stored state.
func Verify(req VerifyRequest) (*Verification, error) {
	commitment, err := engine.HashServerSeed(req.ServerSeed)
	if err != nil {
		return nil, err
	}
	res, err := games.Simulate(req.Game, req.ClientSeed, req.ServerSeed, req.Nonce, req.Config)
	if err != nil {
		return nil, err
	}

	v := &Verification{Commitment: commitment, Result: res}
	if req.Commitment != "" {
		ok, err := engine.VerifyServerSeed(req.ServerSeed, req.Commitment)
		if err != nil {
			return nil, err
		}
		v.CommitmentValid = &ok
	}
	return v, nil
}
