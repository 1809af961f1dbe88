package api

import (
	"net/http"

	"github.com/flockrhq/flockr/internal/messages"
	"github.com/flockrhq/flockr/internal/metrics"
)

// messageHandler groups the message HTTP handlers.
type messageHandler struct {
	svc     *messages.Service
	metrics *metrics.Metrics
}

func newMessageHandler(svc *messages.Service, m *metrics.Metrics) *messageHandler {
	return &messageHandler{svc: svc, metrics: m}
}

// Send handles POST /message/send.
func (h *messageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		Message   string `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	id, err := h.svc.Send(req.Token, req.ChannelID, req.Message)
	if err != nil {
		writeOpError(w, err)
		return
	}
	h.metrics.IncMessageSent("immediate")
	writeJSON(w, http.StatusOK, map[string]int{"message_id": id})
}

// SendLater handles POST /message/sendlater.
func (h *messageHandler) SendLater(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ChannelID int    `json:"channel_id"`
		Message   string `json:"message"`
		TimeSent  int64  `json:"time_sent"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	id, err := h.svc.SendLater(req.Token, req.ChannelID, req.Message, req.TimeSent)
	if err != nil {
		writeOpError(w, err)
		return
	}
	h.metrics.IncMessageSent("deferred")
	writeJSON(w, http.StatusOK, map[string]int{"message_id": id})
}

// Edit handles PUT /message/edit.
func (h *messageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
		Message   string `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Edit(req.Token, req.MessageID, req.Message); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Remove handles DELETE /message/remove.
func (h *messageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Remove(req.Token, req.MessageID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// React handles POST /message/react.
func (h *messageHandler) React(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
		ReactID   int    `json:"react_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.React(req.Token, req.MessageID, req.ReactID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Unreact handles POST /message/unreact.
func (h *messageHandler) Unreact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
		ReactID   int    `json:"react_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Unreact(req.Token, req.MessageID, req.ReactID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Pin handles POST /message/pin.
func (h *messageHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Pin(req.Token, req.MessageID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Unpin handles POST /message/unpin.
func (h *messageHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		MessageID int    `json:"message_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InputError", "failed to parse request body")
		return
	}

	if err := h.svc.Unpin(req.Token, req.MessageID); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Search handles GET /search.
func (h *messageHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.Search(q.Get("token"), q.Get("query_str"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}
