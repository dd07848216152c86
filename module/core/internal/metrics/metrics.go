package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PositionSamplesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_position_samples_total",
		Help: "Position samples received by tracking sessions",
	}, []string{"source"})
	PositionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_position_errors_total",
		Help: "Position errors reported by sources, by code",
	}, []string{"code"})
	RedZoneAlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "touristsafety_red_zone_alerts_total",
		Help: "Red zone entries that fired an alert",
	})
	AlertPublishFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "touristsafety_alert_publish_fail_total",
		Help: "Alert side effects that returned an error",
	})
	PositionWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_position_writes_total",
		Help: "Debounced directory position writes by result",
	}, []string{"result"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "touristsafety_tracking_sessions_active",
		Help: "Tracking sessions currently subscribed to a position source",
	})
	ExternalDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "touristsafety_external_duration_ms",
		Help:    "External API call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	}, []string{"service"})
	ExternalFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_external_fail_total",
		Help: "External API call failures",
	}, []string{"service"})
	PlacesCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_places_cache_total",
		Help: "Nearest place cache lookups by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(PositionSamplesTotal)
	prometheus.MustRegister(PositionErrorsTotal)
	prometheus.MustRegister(RedZoneAlertsTotal)
	prometheus.MustRegister(AlertPublishFailTotal)
	prometheus.MustRegister(PositionWritesTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(ExternalDurationMs)
	prometheus.MustRegister(ExternalFailTotal)
	prometheus.MustRegister(PlacesCacheTotal)
}

// Handler serves every registered collector for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
