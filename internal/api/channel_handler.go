package api

import (
	"net/http"
	"strconv"

	"github.com/flockrhq/flockr/internal/channels"
	"github.com/flockrhq/flockr/internal/metrics"
)

// channelHandler groups the channel HTTP handlers.
type channelHandler struct {
	svc     *channels.Service
	metrics *metrics.Metrics
}

func newChannelHandler(svc *channels.Service, m *metrics.Metrics) *channelHandler {
	return &channelHandler{svc: svc, metrics: m}
}

// queryInt parses an integer query parameter, defaulting to 0 on absence or
// garbage. Bad ids fall through to the service layer which rejects them.
func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

// Create handles POST /channels/create.
func (h *channelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		IsPublic bool   `json:"is_public"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	id, err := h.svc.Create(req.Token, req.Name, req.IsPublic)
	if err != nil {
		writeOpError(w, err)
		return
	}
	h.metrics.ChannelsCreatedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]int{"channel_id": id})
}

// List handles GET /channels/list.
func (h *channelHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.URL.Query().Get("token"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]channels.Summary{"channels": out})
}

// ListAll handles GET /channels/listall.
func (h *channelHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListAll(r.URL.Query().Get("token"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]channels.Summary{"channels": out})
}

// Invite handles POST /channel/invite.
func (h *channelHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		UserID    int    `json:"u_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Invite(req.Token, req.ChannelID, req.UserID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Details handles GET /channel/details.
func (h *channelHandler) Details(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Details(r.URL.Query().Get("token"), queryInt(r, "channel_id"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Messages handles GET /channel/messages.
func (h *channelHandler) Messages(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Messages(r.URL.Query().Get("token"), queryInt(r, "channel_id"), queryInt(r, "start"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Leave handles POST /channel/leave.
func (h *channelHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Leave(req.Token, req.ChannelID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Join handles POST /channel/join.
func (h *channelHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Join(req.Token, req.ChannelID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// AddOwner handles POST /channel/addowner.
func (h *channelHandler) AddOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		UserID    int    `json:"u_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.AddOwner(req.Token, req.ChannelID, req.UserID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// RemoveOwner handles POST /channel/removeowner.
func (h *channelHandler) RemoveOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		UserID    int    `json:"u_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.RemoveOwner(req.Token, req.ChannelID, req.UserID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
