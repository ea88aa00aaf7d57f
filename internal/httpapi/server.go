// Package httpapi exposes the engine's logical request/response
// surface (spec §6) over HTTP, grounded on leapsql's internal/ui
// server: a chi router with the standard middleware stack, served
// alongside graceful shutdown via golang.org/x/sync/errgroup.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/engine"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// Server serves the engine over HTTP.
type Server struct {
	eng  *engine.Engine
	port int
}

// NewServer constructs a Server bound to eng, listening on port.
func NewServer(eng *engine.Engine, port int) *Server {
	return &Server{eng: eng, port: port}
}

// Serve starts the HTTP server and blocks until ctx is cancelled,
// shutting down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	Logger.Info().Str("addr", addr).Msg("starting http api")

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http api: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Logger.Debug().Msg("shutting down http api")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/v1/query/{lang}/{term}", s.handleQuery)
	r.Get("/v1/cache/stats", s.handleCacheStats)
	r.Delete("/v1/cache/{lang}", s.handleCacheClear)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	lang := schema.Language(chi.URLParam(r, "lang"))
	term := chi.URLParam(r, "term")
	refresh := r.URL.Query().Get("refresh") == "true"

	result, err := s.eng.Query(r.Context(), lang, term, refresh)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	result.Entries = nonNilEntries(result.Entries)
	writeJSON(w, http.StatusOK, result)
}

func nonNilEntries(entries []schema.DictionaryEntry) []schema.DictionaryEntry {
	if entries == nil {
		return []schema.DictionaryEntry{}
	}
	return entries
}

type healthResponse struct {
	Components []engine.ComponentStatus `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Components: s.eng.Health(r.Context())})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.eng.CacheStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type cacheClearResponse struct {
	DeletedRows int64 `json:"deleted_rows"`
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	lang := schema.Language(chi.URLParam(r, "lang"))
	n, err := s.eng.CacheClear(r.Context(), lang)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cacheClearResponse{DeletedRows: n})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *schema.NormalizationError, *schema.QueryError:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Warn().Err(err).Msg("failed to encode response")
	}
}
