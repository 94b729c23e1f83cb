package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"finanzia/internal/core"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a new account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		slog.WarnContext(r.Context(), "Registration failed", "username", req.Username, "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// handleLogin exchanges credentials for an opaque session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token := s.sessions.Create(sess)
	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": sess.Username,
	})
}

// handleLogout forgets the presented token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ core.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.sessions.Delete(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}
