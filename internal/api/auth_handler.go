package api

import (
	"log/slog"
	"net/http"

	"github.com/flockrhq/flockr/internal/auth"
	"github.com/flockrhq/flockr/internal/metrics"
)

// ResetCodeNotifier delivers password-reset codes to users. Actual email
// delivery is an external collaborator; the default implementation just logs.
type ResetCodeNotifier interface {
	SendResetCode(email, code string)
}

// LogNotifier writes reset codes to the structured log instead of sending
// mail. Useful for development and tests.
type LogNotifier struct{}

func (LogNotifier) SendResetCode(email, code string) {
	slog.Info("password reset code issued", "email", email)
}

// authHandler groups the authentication HTTP handlers.
type authHandler struct {
	svc      *auth.Service
	notifier ResetCodeNotifier
	metrics  *metrics.Metrics
}

func newAuthHandler(svc *auth.Service, notifier ResetCodeNotifier, m *metrics.Metrics) *authHandler {
	return &authHandler{svc: svc, notifier: notifier, metrics: m}
}

// Register handles POST /auth/register.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		NameFirst string `json:"name_first"`
		NameLast  string `json:"name_last"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	sess, err := h.svc.Register(req.Email, req.Password, req.NameFirst, req.NameLast)
	if err != nil {
		h.metrics.IncAuthFailure("register")
		writeOpError(w, err)
		return
	}
	h.metrics.IncAuthSuccess("register")
	h.metrics.UsersRegisteredTotal.Inc()
	writeJSON(w, http.StatusOK, sess)
}

// Login handles POST /auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	sess, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.metrics.IncAuthFailure("login")
		writeOpError(w, err)
		return
	}
	h.metrics.IncAuthSuccess("login")
	writeJSON(w, http.StatusOK, sess)
}

// Logout handles POST /auth/logout.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	ok, err := h.svc.Logout(req.Token)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_success": ok})
}

// ResetRequest handles POST /auth/passwordreset/request.
func (h *authHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	code, err := h.svc.RequestReset(req.Email)
	if err != nil {
		writeOpError(w, err)
		return
	}
	h.notifier.SendResetCode(req.Email, code)
	writeJSON(w, http.StatusOK, map[string]any{})
}

// ResetComplete handles POST /auth/passwordreset/reset.
func (h *authHandler) ResetComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetCode   string `json:"reset_code"`
		NewPassword string `json:"new_password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.CompleteReset(req.ResetCode, req.NewPassword); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
