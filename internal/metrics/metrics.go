package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "redemptions_total", Help: "Redemption attempts by outcome",
	}, []string{"outcome"})
	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "sessions_created_total", Help: "Sessions created",
	})
	NotificationsFanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "notifications_fanned_total", Help: "Notifications written by the fan-out",
	})
)

func init() {
	prometheus.MustRegister(Redemptions, SessionsCreated, NotificationsFanned)
}

// Handler exposes the metrics endpoint.
func Handler() http.Handler { return promhttp.Handler() }
