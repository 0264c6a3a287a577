// Package server exposes the core engine over a local JSON API consumed by
// the UI layer.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/queuetrace/queuetrace/internal/domain/accounts"
	importservice "github.com/queuetrace/queuetrace/internal/domain/import/service"
	"github.com/queuetrace/queuetrace/internal/store"
	"github.com/queuetrace/queuetrace/pkg/config"
)

// Server wires the routes, middleware and handlers of the local API.
type Server struct {
	cfg         *config.Config
	store       *store.Store
	importSvc   *importservice.Service
	accountsCfg accounts.Config
	logger      *slog.Logger
	handler     http.Handler
}

// New builds the server and its route table.
func New(cfg *config.Config, st *store.Store, importSvc *importservice.Service, accountsCfg accounts.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		store:       st,
		importSvc:   importSvc,
		accountsCfg: accountsCfg,
		logger:      logger,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/dataset", s.handleGetDataset).Methods(http.MethodGet)
	api.HandleFunc("/dataset/clear", s.handleClear).Methods(http.MethodPost)
	api.HandleFunc("/imports", s.handleListImports).Methods(http.MethodGet)
	api.HandleFunc("/imports", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/imports/{id}", s.handleRemoveImport).Methods(http.MethodDelete)
	api.HandleFunc("/history/undo", s.handleUndo).Methods(http.MethodPost)
	api.HandleFunc("/history/redo", s.handleRedo).Methods(http.MethodPost)

	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	var h http.Handler = r
	h = s.rateLimit(h)
	h = s.logRequests(h)
	h = cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	}).Handler(h)
	s.handler = h

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}
