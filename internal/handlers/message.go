package handlers

import (
	"net/http"

	"github.com/netchat/netchat/internal/models"
	"github.com/netchat/netchat/internal/services"
)

// MessageHandler contains HTTP handlers for message operations.
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler instance.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetMessages handles POST /api/get_messages
// Returns one page of messages, newest first. lastMessage is the id of the
// oldest message the client already has.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	var req models.GetMessagesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	messages, err := h.messageService.FetchPage(r.Context(), services.FetchPageParams{
		ChannelID: req.ID,
		Password:  req.Password,
		Cursor:    req.LastMessage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
