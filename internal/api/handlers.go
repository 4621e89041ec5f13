package api

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/seedpair"
)

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GamesResponse{
		Games:         games.Catalog(),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	seedFields(s.audit(r, "simulate"), req.ServerSeed, req.ClientSeed).
		Str("game", req.Game).
		Uint64("nonce", req.Nonce).
		Send()

	res, err := games.Simulate(req.Game, req.ClientSeed, req.ServerSeed, req.Nonce, req.Config)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeSimulation(w, r, res, req.Amount)
}

func (s *Server) handleSimulateMultiplayer(w http.ResponseWriter, r *http.Request) {
	var req MultiplayerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.audit(r, "simulate_multiplayer").
		Str("game", req.Game).
		Str("game_hash", req.GameHash).
		Send()

	res, err := games.SimulateMultiplayer(req.Game, req.GameHash, req.Config)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeSimulation(w, r, res, req.Amount)
}

func (s *Server) writeSimulation(w http.ResponseWriter, r *http.Request, res games.Result, amount *decimal.Decimal) {
	resp := SimulateResponse{Result: res, EngineVersion: EngineVersion}
	if amount != nil {
		payout, err := payoutFor(*amount, res.GameResult)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.Payout = payout
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func payoutFor(amount decimal.Decimal, r games.GameResult) (*decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, &games.ConfigError{Game: r.Game, Field: "amount", Reason: "must not be negative"}
	}
	p, err := games.Payout(amount, r)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	hash, err := engine.HashServerSeed(req.ServerSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SeedHashResponse{Hash: hash, EngineVersion: EngineVersion})
}

func (s *Server) handleSeedVerify(w http.ResponseWriter, r *http.Request) {
	var req SeedVerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Commitment == "" {
		s.errorHandler.HandleValidationError(w, r, "server_seed_hash", "is required")
		return
	}
	valid, err := engine.VerifyServerSeed(req.ServerSeed, req.Commitment)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	hash, _ := engine.HashServerSeed(req.ServerSeed)
	s.writeJSON(w, http.StatusOK, SeedVerifyResponse{Valid: valid, ComputedHash: hash})
}

// handleCrashVerify walks the game hash to the chain tip and replays the
// round. An unverified hash is still replayed. Request chain fields overlay
// the server's chain, and the walk may not be longer than the server's.
func (s *Server) handleCrashVerify(w http.ResponseWriter, r *http.Request) {
	var req CrashVerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Chain != nil && req.Chain.MaxLength > s.chain.MaxLength {
		s.errorHandler.HandleValidationError(w, r, "chain.max_length",
			fmt.Sprintf("must not exceed %d", s.chain.MaxLength))
		return
	}
	chain := req.Chain.apply(s.chain)
	s.audit(r, "crash_verify").Str("game_hash", req.GameHash).Str("tip", chain.Tip).Send()

	verification, err := engine.VerifyGameHash(r.Context(), req.GameHash, chain)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	res, err := games.SimulateMultiplayer(string(games.Crash), req.GameHash, games.Config{"salt": chain.Salt})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CrashVerifyResponse{Chain: verification, Result: res})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req seedpair.VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	seedFields(s.audit(r, "verify"), req.ServerSeed, req.ClientSeed).
		Str("game", req.Game).
		Uint64("nonce", req.Nonce).
		Send()

	v, err := seedpair.Verify(req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}
