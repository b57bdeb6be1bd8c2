package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "boleia_web", Name: "realtime_events_total", Help: "Realtime events received, by event name"},
		[]string{"event"},
	)
	ToastsPushedTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "boleia_web", Name: "toasts_pushed_total", Help: "Toasts shown to the user"},
	)
	ToastsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "boleia_web", Name: "toasts_suppressed_total", Help: "Incoming events suppressed before toasting, by reason"},
		[]string{"reason"},
	)
	MessagesMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "boleia_web", Name: "messages_merged_total", Help: "Messages merged into an open conversation"},
	)
	UsersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{Namespace: "boleia_web", Name: "users_online", Help: "Latest online user count reported upstream"},
	)
)
