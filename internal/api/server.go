package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/scan"
	"github.com/MJE43/fair-go/internal/seedpair"
	"github.com/MJE43/fair-go/internal/store"
)

const maxBodyBytes = 1 << 20

// Database is the storage the server reads scan runs from.
type Database interface {
	scan.RunStore
	Ping(ctx context.Context) error
	GetRun(ctx context.Context, id string) (*store.Run, error)
	ListRuns(ctx context.Context, q store.RunsQuery) (*store.RunsList, error)
	GetRunHits(ctx context.Context, runID string, page store.Page) (*store.HitsPage, error)
}

// Options wires the server's collaborators. DB and SeedPairs may be nil, in
// which case their endpoints answer 503.
type Options struct {
	DB             Database
	SeedPairs      *seedpair.Service
	Scanner        *scan.Scanner
	Chain          engine.ChainConfig
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Server handles HTTP requests.
type Server struct {
	db           Database
	seedPairs    *seedpair.Service
	scanner      *scan.Scanner
	chain        engine.ChainConfig
	timeout      time.Duration
	errorHandler *ErrorHandler
	log          zerolog.Logger
	startTime    time.Time
}

func NewServer(opts Options) *Server {
	log := opts.Logger.With().Str("component", "api").Logger()
	s := &Server{
		db:           opts.DB,
		seedPairs:    opts.SeedPairs,
		scanner:      opts.Scanner,
		chain:        opts.Chain,
		timeout:      opts.RequestTimeout,
		errorHandler: NewErrorHandler(log),
		log:          log,
		startTime:    time.Now(),
	}
	if s.scanner == nil {
		s.scanner = scan.NewScanner(scan.Options{EngineVersion: EngineVersion, Logger: opts.Logger})
	}
	if s.chain.Tip == "" {
		s.chain = engine.StakeCrashChain()
	}
	if s.chain.MaxLength <= 0 {
		s.chain.MaxLength = engine.StakeCrashChainLength
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}

	log.Info().
		Int("games_available", len(games.Kinds)).
		Bool("database_enabled", s.db != nil).
		Bool("seed_pairs_enabled", s.seedPairs != nil).
		Str("engine_version", EngineVersion).
		Msg("api server initialized")
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/games", s.handleListGames)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/simulate/multiplayer", s.handleSimulateMultiplayer)
		r.Post("/seed/hash", s.handleSeedHash)
		r.Post("/seed/verify", s.handleSeedVerify)
		r.Post("/crash/verify", s.handleCrashVerify)
		r.Post("/verify", s.handleVerify)

		r.Post("/scan", s.handleScan)
		r.Post("/scan/keno-streaks", s.handleKenoStreaks)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/{id}", s.handleGetScan)
		r.Get("/scans/{id}/hits", s.handleGetScanHits)

		r.Route("/seedpairs", func(r chi.Router) {
			r.Post("/", s.handleCreateSeedPair)
			r.Get("/", s.handleListSeedPairs)
			r.Get("/{id}", s.handleGetSeedPair)
			r.Post("/{id}/bets", s.handleBet)
			r.Post("/{id}/rotate", s.handleRotate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorHandler.HandleError(w, r, fmt.Errorf("%w: no route for %s %s", store.ErrNotFound, r.Method, r.URL.Path))
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("write response")
	}
}

// decodeJSON reads a single JSON object from the body into v. It writes the
// error response itself and reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &maxErr):
			msg = "request body too large"
		}
		s.errorHandler.HandleValidationError(w, r, "body", msg)
		return false
	}
	return true
}

// pageParams reads page and perPage query parameters.
func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) (store.Page, bool) {
	var p store.Page
	for name, dst := range map[string]*int{"page": &p.Page, "perPage": &p.PerPage} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorHandler.HandleValidationError(w, r, name, "must be a non-negative integer")
			return p, false
		}
		*dst = n
	}
	return p, true
}
