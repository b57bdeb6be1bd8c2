package controller

import (
	"net/http"

	"BoleiaWeb/internal/alert"
	"BoleiaWeb/internal/helper"

	"github.com/go-chi/chi/v5"
)

type AlertController struct {
	toaster *alert.Toaster
}

func NewAlertController(toaster *alert.Toaster) *AlertController {
	return &AlertController{
		toaster: toaster,
	}
}

func (c *AlertController) ListAlerts(w http.ResponseWriter, r *http.Request) {
	helper.WriteSuccess(w, c.toaster.Alerts())
}

func (c *AlertController) DismissAlert(w http.ResponseWriter, r *http.Request) {
	c.toaster.Remove(chi.URLParam(r, "alertID"))
	helper.WriteSuccess(w, true)
}
