package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/fair-go/internal/games"
)

func (s *Server) seedPairsReady(w http.ResponseWriter, r *http.Request) bool {
	if s.seedPairs == nil {
		s.errorHandler.HandleError(w, r, errUnavailable)
		return false
	}
	return true
}

func (s *Server) handleCreateSeedPair(w http.ResponseWriter, r *http.Request) {
	if !s.seedPairsReady(w, r) {
		return
	}
	var req CreateSeedPairRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	pair, err := s.seedPairs.Create(r.Context(), req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, pair)
}

func (s *Server) handleListSeedPairs(w http.ResponseWriter, r *http.Request) {
	if !s.seedPairsReady(w, r) {
		return
	}
	page, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.seedPairs.List(r.Context(), page)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSeedPair(w http.ResponseWriter, r *http.Request) {
	if !s.seedPairsReady(w, r) {
		return
	}
	pair, err := s.seedPairs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pair)
}

// handleBet places one bet on an open pair. The response never contains
// the server seed.
func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	if !s.seedPairsReady(w, r) {
		return
	}
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		s.errorHandler.HandleValidationError(w, r, "amount", "must not be negative")
		return
	}
	id := chi.URLParam(r, "id")
	bet, err := s.seedPairs.Bet(r.Context(), id, req.Game, req.Config)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.audit(r, "bet").
		Str("seed_pair_id", id).
		Str("game", req.Game).
		Uint64("nonce", bet.Derivation.Nonce).
		Send()

	resp := BetResponse{SeedPairID: bet.SeedPairID, Result: bet.Result}
	// The bet is already placed, so a game without a multiplier just
	// reports no payout.
	if req.Amount != nil && bet.Multiplier != nil {
		payout, err := games.Payout(*req.Amount, bet.GameResult)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.Payout = &payout
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	if !s.seedPairsReady(w, r) {
		return
	}
	var req RotateRequest
	if r.ContentLength != 0 && !s.decodeJSON(w, r, &req) {
		return
	}
	rot, err := s.seedPairs.Rotate(r.Context(), chi.URLParam(r, "id"), req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.audit(r, "rotate").
		Str("revealed_id", rot.Revealed.ID).
		Str("next_id", rot.Next.ID).
		Send()
	s.writeJSON(w, http.StatusOK, rot)
}
