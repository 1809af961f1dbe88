package api

import (
	"net/http"

	"github.com/flockrhq/flockr/internal/metrics"
	"github.com/flockrhq/flockr/internal/standup"
)

// standupHandler groups the standup HTTP handlers.
type standupHandler struct {
	svc     *standup.Service
	metrics *metrics.Metrics
}

func newStandupHandler(svc *standup.Service, m *metrics.Metrics) *standupHandler {
	return &standupHandler{svc: svc, metrics: m}
}

// Start handles POST /standup/start.
func (h *standupHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		Length    int    `json:"length"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	finish, err := h.svc.Start(req.Token, req.ChannelID, req.Length)
	if err != nil {
		writeOpError(w, err)
		return
	}
	h.metrics.StandupsStartedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]int64{"time_finish": finish})
}

// Active handles GET /standup/active.
func (h *standupHandler) Active(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Active(r.URL.Query().Get("token"), queryInt(r, "channel_id"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Send handles POST /standup/send.
func (h *standupHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		Message   string `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Send(req.Token, req.ChannelID, req.Message); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
