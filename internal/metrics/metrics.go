package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "padsync_active_rooms",
		Help: "Number of rooms with at least one participant.",
	})

	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "padsync_active_clients",
		Help: "Number of open websocket connections.",
	})

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padsync_rooms_created_total",
		Help: "Rooms successfully created.",
	})

	RoomsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padsync_rooms_deleted_total",
		Help: "Rooms garbage-collected after their last participant left.",
	})

	DocumentUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padsync_document_updates_total",
		Help: "Document updates applied and broadcast.",
	})

	RejectedUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padsync_rejected_updates_total",
		Help: "Document updates dropped by the access policy.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
