package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/queuetrace/queuetrace/internal/domain/accounts"
	"github.com/queuetrace/queuetrace/internal/domain/history"
	"github.com/queuetrace/queuetrace/internal/domain/import/parser"
	"github.com/queuetrace/queuetrace/internal/store"
	"github.com/queuetrace/queuetrace/pkg/files"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Dataset())
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Dataset().Imports)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := accounts.ParseFilter(q.Get("filter"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortReq := accounts.Sort{Key: accounts.SortByEmail}
	switch q.Get("sort") {
	case "", string(accounts.SortByEmail):
	case string(accounts.SortByChange):
		sortReq.Key = accounts.SortByChange
	default:
		s.respondError(w, http.StatusBadRequest, "sort must be \"email\" or \"change\"")
		return
	}
	sortReq.Desc = q.Get("dir") == "desc"

	views := accounts.List(s.store.Dataset().Tests, filter, sortReq, s.accountsCfg)
	s.respondJSON(w, http.StatusOK, views)
}

// handleImport accepts a CSV or XLSX payload, either as a multipart "file"
// part or as the raw request body with a filename query parameter.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, files.MaxImportSize)

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	var data []byte

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "missing multipart field \"file\"")
			return
		}
		defer file.Close()
		if filename == "" {
			filename = header.Filename
		}
		data, err = io.ReadAll(file)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
			return
		}
	} else {
		var err error
		data, err = io.ReadAll(r.Body)
		if err != nil {
			s.respondError(w, http.StatusRequestEntityTooLarge, "failed to read upload: "+err.Error())
			return
		}
	}
	if filename == "" {
		filename = "import.csv"
	}
	if len(data) == 0 {
		s.respondError(w, http.StatusBadRequest, "empty upload")
		return
	}

	result, err := s.importSvc.Import(r.Context(), filename, data)
	if err != nil {
		importsTotal.WithLabelValues("failed").Inc()
		s.respondImportError(w, err)
		return
	}

	importsTotal.WithLabelValues("ok").Inc()
	testsImportedTotal.Add(float64(result.Imported))
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRemoveImport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := s.store.RemoveImport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrUnknownImport) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to remove import batch", slog.String("id", id), slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "failed to remove import batch")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"removedTests": removed})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.logger.Error("failed to clear dataset", slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "failed to clear dataset")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryOp(w, r, "undo", s.store.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryOp(w, r, "redo", s.store.Redo)
}

// handleHistoryOp runs an undo or redo. An empty stack is informational, not
// an error: the response says nothing happened.
func (s *Server) handleHistoryOp(w http.ResponseWriter, r *http.Request, op string, run func(context.Context) error) {
	err := run(r.Context())
	switch {
	case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
		historyOpsTotal.WithLabelValues(op, "noop").Inc()
		s.respondJSON(w, http.StatusOK, map[string]any{
			"status":  "noop",
			"message": err.Error(),
			"canUndo": s.store.CanUndo(),
			"canRedo": s.store.CanRedo(),
		})
	case err != nil:
		historyOpsTotal.WithLabelValues(op, "failed").Inc()
		s.logger.Error("history operation failed", slog.String("op", op), slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "failed to "+op)
	default:
		historyOpsTotal.WithLabelValues(op, "ok").Inc()
		s.respondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"canUndo": s.store.CanUndo(),
			"canRedo": s.store.CanRedo(),
		})
	}
}

// respondImportError maps the import error taxonomy onto HTTP statuses with
// structured details for validation failures.
func (s *Server) respondImportError(w http.ResponseWriter, err error) {
	var formatErr *parser.FormatError
	var validationErr *parser.ValidationError
	switch {
	case errors.As(err, &formatErr):
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  formatErr.Error(),
			"column": formatErr.Column,
		})
	case errors.As(err, &validationErr):
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "validation failed",
			"details": validationErr.Descriptors,
			"omitted": validationErr.Omitted,
		})
	case errors.Is(err, parser.ErrNoUsableRows):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("import failed", slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "import failed")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
