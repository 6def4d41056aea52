package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhunt_agent_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	NotificationsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhunt_agent_notifications_received_total",
			Help: "Total number of notifications decoded from the websocket channel.",
		},
		[]string{"topic"},
	)
	NotificationsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhunt_agent_notifications_dropped_total",
			Help: "Total number of websocket frames dropped while decoding.",
		},
		[]string{"reason"},
	)
	WebsocketReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhunt_agent_websocket_reconnects_total",
			Help: "Total number of scheduled websocket reconnects.",
		},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devhunt_agent_api_request_duration_seconds",
			Help:    "Duration of DevHunt REST API requests in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method"},
	)
	ResourceOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhunt_agent_resource_operations_total",
			Help: "Total number of reference data operations by result.",
		},
		[]string{"resource", "operation", "result"},
	)
)

func StartMetricsServer(address string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(NotificationsReceived)
	prometheus.MustRegister(NotificationsDropped)
	prometheus.MustRegister(WebsocketReconnects)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(ResourceOperations)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, mux))
	}()
}
