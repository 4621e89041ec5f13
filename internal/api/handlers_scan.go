package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/fair-go/internal/scan"
	"github.com/MJE43/fair-go/internal/store"
)

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Persist && s.db == nil {
		s.errorHandler.HandleError(w, r, errUnavailable)
		return
	}
	seedFields(s.audit(r, "scan"), req.Seeds.Server, req.Seeds.Client).
		Str("game", req.Game).
		Uint64("nonce_start", req.NonceStart).
		Uint64("nonce_end", req.NonceEnd).
		Str("target_op", string(req.TargetOp)).
		Bool("filter", req.Filter != "").
		Int("limit", req.Limit).
		Send()

	res, err := s.scanner.Scan(r.Context(), req.Request)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := ScanResponse{Result: res}
	if req.Persist {
		run, err := scan.Record(r.Context(), s.db, res)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.RunID = run.ID
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKenoStreaks(w http.ResponseWriter, r *http.Request) {
	var req scan.StreakRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	seedFields(s.audit(r, "keno_streaks"), req.Seeds.Server, req.Seeds.Client).
		Uint64("nonce_start", req.NonceStart).
		Uint64("nonce_end", req.NonceEnd).
		Send()

	res, err := s.scanner.Streaks(r.Context(), req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, errUnavailable)
		return
	}
	page, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.db.ListRuns(r.Context(), store.RunsQuery{Page: page, Game: r.URL.Query().Get("game")})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, errUnavailable)
		return
	}
	run, err := s.db.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetScanHits(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, errUnavailable)
		return
	}
	page, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	hits, err := s.db.GetRunHits(r.Context(), chi.URLParam(r, "id"), page)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hits)
}
