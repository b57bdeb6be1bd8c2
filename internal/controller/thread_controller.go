package controller

import (
	"encoding/json"
	"net/http"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/service"

	"github.com/go-chi/chi/v5"
)

type ThreadController struct {
	conversationService *service.ConversationService
}

func NewThreadController(conversationService *service.ConversationService) *ThreadController {
	return &ThreadController{
		conversationService: conversationService,
	}
}

func (c *ThreadController) GetThread(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if chatID == "" {
		helper.WriteError(w, helper.NewBadRequestError(""))
		return
	}

	view, err := c.conversationService.Load(r.Context(), chatID)
	if err != nil {
		helper.WriteError(w, err)
		return
	}

	helper.WriteSuccess(w, view)
}

// SendMessage posts into the thread loaded by GetThread. The chat id in the
// path must match the open thread; a mismatch means the client skipped Load.
func (c *ThreadController) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if chatID != c.conversationService.ActiveChatID() {
		helper.WriteError(w, helper.NewNotFoundError("No open conversation"))
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.WriteError(w, helper.NewBadRequestError(""))
		return
	}

	msg, err := c.conversationService.Send(r.Context(), req)
	if err != nil {
		helper.WriteError(w, err)
		return
	}

	helper.WriteSuccess(w, msg)
}
