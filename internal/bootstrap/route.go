package bootstrap

import (
	"net/http"

	"BoleiaWeb/internal/controller"
	"BoleiaWeb/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Route struct {
	chi                *chi.Mux
	rateLimiter        *middleware.RateLimitMiddleware
	inboxController    *controller.InboxController
	threadController   *controller.ThreadController
	presenceController *controller.PresenceController
	toastController    *controller.ToastController
	alertController    *controller.AlertController
}

func NewRoute(chiMux *chi.Mux, rateLimiter *middleware.RateLimitMiddleware, inboxController *controller.InboxController, threadController *controller.ThreadController, presenceController *controller.PresenceController, toastController *controller.ToastController, alertController *controller.AlertController) *Route {
	return &Route{
		chi:                chiMux,
		rateLimiter:        rateLimiter,
		inboxController:    inboxController,
		threadController:   threadController,
		presenceController: presenceController,
		toastController:    toastController,
		alertController:    alertController,
	}
}

func (route *Route) Register() {
	route.chi.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Welcome to BoleiaWeb"))
	})

	route.chi.Handle("/metrics", promhttp.Handler())

	route.chi.Route("/api", func(r chi.Router) {
		r.Use(route.rateLimiter.Limit)

		r.Get("/inbox", route.inboxController.ListConversations)
		r.Post("/inbox/start", route.inboxController.StartChat)

		r.Get("/threads/{chatID}", route.threadController.GetThread)
		r.Post("/threads/{chatID}/messages", route.threadController.SendMessage)

		r.Get("/presence", route.presenceController.GetPresence)

		r.Get("/toasts", route.toastController.ListToasts)
		r.Delete("/toasts/{toastID}", route.toastController.DismissToast)
		r.Post("/toasts/{toastID}/open", route.toastController.OpenToast)

		r.Get("/alerts", route.alertController.ListAlerts)
		r.Delete("/alerts/{alertID}", route.alertController.DismissAlert)
	})
}
