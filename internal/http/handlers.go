package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moneywise/internal/core"
)

const listCacheKey = "all"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.repo.ListCategories(ctx); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id string) {
	t, err := s.repo.GetTransaction(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction error", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch transaction")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	if txs, found := s.listCache.Get(listCacheKey); found {
		slog.DebugContext(r.Context(), "Transaction list cache hit", "count", len(txs))
		respondJSON(w, http.StatusOK, txs)
		return
	}

	txs, err := s.repo.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	s.listCache.Set(listCacheKey, txs)
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var draft core.TransactionDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.repo.CreateTransaction(r.Context(), draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.listCache.Delete(listCacheKey)
	s.publishEvent(r, "created", created.ID)
	respondJSON(w, http.StatusOK, created)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var patch core.TransactionPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.repo.UpdateTransaction(r.Context(), id, patch)
	if errors.Is(err, core.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update transaction error", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.listCache.Delete(listCacheKey)
	s.publishEvent(r, "updated", id)
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	err := s.repo.DeleteTransaction(r.Context(), id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		slog.ErrorContext(r.Context(), "Delete transaction error", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		// Deleting twice is not an error worth distinguishing
		slog.InfoContext(r.Context(), "Delete of unknown transaction", "id", id)
	} else {
		s.listCache.Delete(listCacheKey)
		s.publishEvent(r, "deleted", id)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCategories(w, r)
	case http.MethodPost:
		s.createCategory(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.repo.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var draft core.CategoryDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.repo.CreateCategory(r.Context(), draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create category error", "name", draft.Name, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	respondJSON(w, http.StatusOK, created)
}

// publishEvent announces a committed write. Event failures never fail the
// request; the write already happened.
func (s *Server) publishEvent(r *http.Request, action, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(r.Context(), action, id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to publish transaction event",
			"action", action, "transaction_id", id, "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
