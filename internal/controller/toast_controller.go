package controller

import (
	"net/http"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/service"

	"github.com/go-chi/chi/v5"
)

type ToastController struct {
	router *service.NotificationRouter
}

func NewToastController(router *service.NotificationRouter) *ToastController {
	return &ToastController{
		router: router,
	}
}

func (c *ToastController) ListToasts(w http.ResponseWriter, r *http.Request) {
	helper.WriteSuccess(w, c.router.Toasts())
}

// DismissToast is idempotent; dismissing an already expired toast succeeds.
func (c *ToastController) DismissToast(w http.ResponseWriter, r *http.Request) {
	c.router.Dismiss(chi.URLParam(r, "toastID"))
	helper.WriteSuccess(w, true)
}

// OpenToast resolves the toast's navigation target and consumes it.
func (c *ToastController) OpenToast(w http.ResponseWriter, r *http.Request) {
	href, ok := c.router.Open(chi.URLParam(r, "toastID"))
	if !ok {
		helper.WriteError(w, helper.NewNotFoundError("Toast not found"))
		return
	}

	helper.WriteSuccess(w, map[string]string{"href": href})
}
