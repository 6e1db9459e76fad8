// Package api provides the HTTP REST API server for ashareai.
//
// It exposes the market-data tools over REST, a couple of convenience
// market endpoints, and WebSocket streaming of market statistics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ashareai/ashareai/internal/config"
	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/internal/tools"
	"github.com/ashareai/ashareai/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	providers *provider.Registry
	toolset   *tools.Toolset
	toolReg   *tools.Registry
	wsHub     *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
// The provider registry must already have its providers registered.
func NewServer(cfg *config.Config, providers *provider.Registry) *Server {
	toolset := tools.NewToolset(providers)
	toolReg := tools.NewRegistry()
	toolset.RegisterTools(toolReg)

	news := tools.NewNewsService()
	news.RegisterTools(toolReg)

	srv := &Server{
		cfg:       cfg,
		providers: providers,
		toolset:   toolset,
		toolReg:   toolReg,
		wsHub:     NewWSHub(),
	}
	go srv.wsHub.Run()
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	go s.runMarketStream(streamCtx, 30*time.Second)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Tools
		r.Get("/tools", s.handleListTools)
		r.Post("/tools/{name}", s.handleCallTool)

		// Market data
		r.Get("/market/indices", s.handleMarketIndices)
		r.Get("/market/status", s.handleMarketStatus)

		// Providers
		r.Get("/providers", s.handleListProviders)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":        "ok",
			"version":       "dev",
			"market_status": utils.MarketStatus(utils.NowCST()),
			"time_cst":      utils.NowCST().Format("2006-01-02 15:04:05"),
		},
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.toolReg.List(),
	})
}

// handleCallTool executes a named tool. The request body is passed to
// the tool verbatim as its JSON arguments; the tool's string output is
// returned in the envelope untouched.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	out, err := s.toolReg.Execute(ctx, name, json.RawMessage(args))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tools.ErrToolNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"tool":   name,
			"result": out,
		},
	})
}

func (s *Server) handleMarketIndices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := s.providers.FetchWithFallback(ctx, provider.ModelIndexQuote, provider.QueryParams{})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"provider":   res.Provider,
			"cached":     res.Cached,
			"fetched_at": res.FetchedAt,
			"indices":    res.Data,
		},
	})
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	now := utils.NowCST()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":   utils.MarketStatus(now),
			"trading":  utils.IsTradingHours(now),
			"time_cst": now.Format("2006-01-02 15:04:05"),
		},
	})
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.providers.List(),
	})
}

// runMarketStream periodically pushes market statistics to all
// connected WebSocket clients. Idle when nobody is connected.
func (s *Server) runMarketStream(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.wsHub.ClientCount() == 0 {
				continue
			}
			stats := s.toolset.MarketStatistics(ctx)
			s.wsHub.Broadcast(WSMessage{
				Type: "market_statistics",
				Data: json.RawMessage(stats),
			})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
