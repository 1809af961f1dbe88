package api

import (
	"net/http"

	"github.com/flockrhq/flockr/internal/users"
)

// userHandler groups the user profile HTTP handlers.
type userHandler struct {
	svc *users.Service
}

func newUserHandler(svc *users.Service) *userHandler {
	return &userHandler{svc: svc}
}

// Profile handles GET /user/profile.
func (h *userHandler) Profile(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Profile(r.URL.Query().Get("token"), queryInt(r, "u_id"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]users.Profile{"user": out})
}

// SetName handles PUT /user/profile/setname.
func (h *userHandler) SetName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		NameFirst string `json:"name_first"`
		NameLast  string `json:"name_last"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.SetName(req.Token, req.NameFirst, req.NameLast); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// SetEmail handles PUT /user/profile/setemail.
func (h *userHandler) SetEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.SetEmail(req.Token, req.Email); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// SetHandle handles PUT /user/profile/sethandle.
func (h *userHandler) SetHandle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Handle string `json:"handle_str"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.SetHandle(req.Token, req.Handle); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// All handles GET /users/all.
func (h *userHandler) All(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.All(r.URL.Query().Get("token"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]users.Profile{"users": out})
}

// ChangePermission handles POST /admin/userpermission/change.
func (h *userHandler) ChangePermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token        string `json:"token"`
		UserID       int    `json:"u_id"`
		PermissionID int    `json:"permission_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.ChangePermission(req.Token, req.UserID, req.PermissionID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
