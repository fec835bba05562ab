package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/agent"
)

// maxPushBody caps inbound push payloads; push services themselves cap
// payloads at 4KB so anything bigger is not a real push.
const maxPushBody = 16 << 10

type AgentHandler struct {
	agent    *agent.Agent
	registry *agent.ViewRegistry
	log      *zap.Logger
}

func NewAgentHandler(a *agent.Agent, registry *agent.ViewRegistry, log *zap.Logger) *AgentHandler {
	return &AgentHandler{agent: a, registry: registry, log: log}
}

// HandlePush accepts one raw push payload and presents it.
func (h *AgentHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPushBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read payload"})
		return
	}

	id, err := h.agent.HandlePush(r.Context(), raw)
	if err != nil {
		h.log.Error("push handling failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to present notification"})
		return
	}
	if id == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// HandleClick routes a click on a previously shown notification.
func (h *AgentHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing notification id"})
		return
	}
	if err := h.agent.HandleClick(r.Context(), id); err != nil {
		h.log.Error("click routing failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to route click"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RegisterView records an open application window.
func (h *AgentHandler) RegisterView(w http.ResponseWriter, r *http.Request) {
	var view agent.View
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}
	if view.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "view id is required"})
		return
	}
	h.registry.Register(view)
	w.WriteHeader(http.StatusNoContent)
}

// UnregisterView forgets a window that went away.
func (h *AgentHandler) UnregisterView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing view id"})
		return
	}
	h.registry.Unregister(id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
