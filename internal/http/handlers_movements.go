package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finanzia/internal/core"
	"finanzia/internal/store"
)

type createMovementRequest struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
}

type movementResponse struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Note     string `json:"note,omitempty"`
}

func toMovementResponse(m core.Movement) movementResponse {
	return movementResponse{
		ID:       m.ID,
		Date:     m.Date.Format(time.RFC3339),
		Kind:     string(m.Kind),
		Category: string(m.Category),
		Amount:   m.Amount.String(),
		Note:     m.Note,
	}
}

// handleMovements serves POST (record) and GET (list) on /movements.
func (s *Server) handleMovements(w http.ResponseWriter, r *http.Request, sess core.Session) {
	switch r.Method {
	case http.MethodPost:
		s.createMovement(w, r, sess)
	case http.MethodGet:
		s.listMovements(w, r, sess)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createMovement(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req createMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	m, err := s.ledger.Append(r.Context(), sess, core.Kind(req.Kind), core.Category(req.Category), core.Money{Cents: cents}, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateOwner(sess.Username)
	writeJSON(w, http.StatusCreated, toMovementResponse(m))
}

func (s *Server) listMovements(w http.ResponseWriter, r *http.Request, sess core.Session) {
	filter, err := monthFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.cacheKey(sess.Username, filter.Year, filter.Month)
	movements, ok := s.listCache.Get(key)
	if !ok {
		movements, err = s.ledger.List(r.Context(), sess, filter)
		if err != nil {
			slog.ErrorContext(r.Context(), "Listing movements failed", "owner", sess.Username, "error", err)
			writeDomainError(w, err)
			return
		}
		s.listCache.Set(key, movements)
	}

	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMovementByID serves DELETE /movements/{id}.
func (s *Server) handleMovementByID(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/movements/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	if err := s.ledger.Delete(r.Context(), sess, id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateOwner(sess.Username)
	w.WriteHeader(http.StatusNoContent)
}

// monthFilterFromQuery reads the optional year and month query parameters.
// Both must be given together; neither means the full history.
func monthFilterFromQuery(r *http.Request) (store.MonthFilter, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		return store.MonthFilter{}, nil
	}
	if yearStr == "" || monthStr == "" {
		return store.MonthFilter{}, errors.New("year and month must be provided together")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return store.MonthFilter{}, errors.New("invalid year")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return store.MonthFilter{}, errors.New("invalid month")
	}
	return store.MonthFilter{Year: year, Month: month}, nil
}
