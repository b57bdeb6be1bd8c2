package controller

import (
	"net/http"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/service"
)

type PresenceController struct {
	presenceService *service.PresenceService
}

func NewPresenceController(presenceService *service.PresenceService) *PresenceController {
	return &PresenceController{
		presenceService: presenceService,
	}
}

// GetPresence reports the latest online-user count. Count is zero until the
// first online-users event arrives; Connected disambiguates "zero users" from
// "no data yet".
func (c *PresenceController) GetPresence(w http.ResponseWriter, r *http.Request) {
	count, ok := c.presenceService.Count()

	helper.WriteSuccess(w, model.PresenceResponse{
		Count:     count,
		Connected: c.presenceService.Connected() && ok,
	})
}
