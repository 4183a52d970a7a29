package handler

import (
	"context"
	"net/http"

	"github.com/edvin/skinsight/internal/api/request"
	"github.com/edvin/skinsight/internal/api/response"
)

// ChatService runs one turn of the ordering assistant conversation.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
}

// Assistant handles the ordering assistant endpoint.
type Assistant struct {
	svc ChatService
}

func NewAssistant(svc ChatService) *Assistant {
	return &Assistant{svc: svc}
}

// Chat runs one conversational turn and returns the assistant's reply.
func (h *Assistant) Chat(w http.ResponseWriter, r *http.Request) {
	var req request.Chat
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.svc.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"session_id": req.SessionID,
		"reply":      reply,
	})
}
