package controller

import (
	"encoding/json"
	"net/http"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/service"
)

type InboxController struct {
	inboxService        *service.InboxService
	conversationService *service.ConversationService
}

func NewInboxController(inboxService *service.InboxService, conversationService *service.ConversationService) *InboxController {
	return &InboxController{
		inboxService:        inboxService,
		conversationService: conversationService,
	}
}

// ListConversations serves the inbox page data. Opening the inbox closes the
// active thread, so realtime events for it go back to toasting.
func (c *InboxController) ListConversations(w http.ResponseWriter, r *http.Request) {
	c.conversationService.ClearActive()

	rows, err := c.inboxService.BuildRows(r.Context())
	if err != nil {
		helper.WriteError(w, err)
		return
	}

	rows = service.FilterRows(rows, r.URL.Query().Get("q"))
	helper.WriteSuccess(w, rows)
}

func (c *InboxController) StartChat(w http.ResponseWriter, r *http.Request) {
	var req model.StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.WriteError(w, helper.NewBadRequestError(""))
		return
	}

	resp, err := c.inboxService.StartChat(r.Context(), req)
	if err != nil {
		helper.WriteError(w, err)
		return
	}

	helper.WriteSuccess(w, resp)
}
