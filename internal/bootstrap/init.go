package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"BoleiaWeb/internal/adapter"
	"BoleiaWeb/internal/alert"
	"BoleiaWeb/internal/config"
	"BoleiaWeb/internal/controller"
	"BoleiaWeb/internal/middleware"
	"BoleiaWeb/internal/observability"
	"BoleiaWeb/internal/realtime"
	"BoleiaWeb/internal/service"
	"BoleiaWeb/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// App holds the long-lived pieces that need an orderly shutdown.
type App struct {
	router   *service.NotificationRouter
	presence *service.PresenceService
	toaster  *alert.Toaster
	session  *realtime.Session
	offs     []func()
}

func Init(cfg *config.AppConfig, validate *validator.Validate, httpClient *http.Client, chiMux *chi.Mux) *App {
	restAdapter := adapter.NewRestAdapter(cfg, httpClient)
	identity := service.NewIdentity(restAdapter)
	hints := newHintStore(cfg)

	socketClient := realtime.NewSocketClient(cfg.UpstreamSocketURL)
	session := realtime.NewSession(socketClient, restAdapter)

	bus := alert.NewBus()
	toaster := alert.NewToaster(bus)

	conversationService := service.NewConversationService(restAdapter, identity, hints, bus, validate)
	inboxService := service.NewInboxService(restAdapter, identity, hints, validate)

	// The open thread consumes both message feeds; the shapes overlap and the
	// merge is idempotent, so double delivery is harmless.
	offs := []func(){
		socketClient.On(realtime.EventMessage, func(payload interface{}) {
			observability.RealtimeEventsTotal.WithLabelValues(realtime.EventMessage).Inc()
			conversationService.HandleRealtimeEvent(payload)
		}),
		socketClient.On(realtime.EventReceiveMessage, conversationService.HandleRealtimeEvent),
	}

	notificationRouter := service.NewNotificationRouter(identity, conversationService.ActiveChatID)
	notificationRouter.Start(socketClient)

	presenceService := service.NewPresenceService(session)
	presenceService.Start(context.Background())

	inboxController := controller.NewInboxController(inboxService, conversationService)
	threadController := controller.NewThreadController(conversationService)
	presenceController := controller.NewPresenceController(presenceService)
	toastController := controller.NewToastController(notificationRouter)
	alertController := controller.NewAlertController(toaster)

	rateLimiter := middleware.NewRateLimitMiddleware(cfg)

	route := NewRoute(chiMux, rateLimiter, inboxController, threadController, presenceController, toastController, alertController)
	route.Register()

	return &App{
		router:   notificationRouter,
		presence: presenceService,
		toaster:  toaster,
		session:  session,
		offs:     offs,
	}
}

func newHintStore(cfg *config.AppConfig) store.ReceiverHintStore {
	if cfg.RedisEnabled() {
		redisStore, err := store.NewRedisHintStore(cfg)
		if err != nil {
			slog.Error("Failed to connect to Redis, falling back to in-memory hint store", "error", err)
			return store.NewMemoryHintStore()
		}
		return redisStore
	}
	return store.NewMemoryHintStore()
}

func (a *App) Close() {
	for _, off := range a.offs {
		off()
	}
	a.router.Close()
	a.presence.Close()
	a.toaster.Close()
	a.session.Close()
}
