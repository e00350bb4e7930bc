package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kuji_rooms_created_total",
		Help: "Total number of rooms created",
	})

	ParticipantsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kuji_participants_joined_total",
		Help: "Total number of successful joins",
	})

	SelectionsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kuji_selections_total",
		Help: "Total number of draws run",
	})

	RoomsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kuji_rooms_expired_total",
		Help: "Total number of rooms removed by the expiry sweep",
	})

	BroadcastsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuji_broadcasts_published_total",
		Help: "Events accepted onto the broadcast queue, by event type",
	}, []string{"type"})

	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kuji_broadcasts_dropped_total",
		Help: "Events dropped because the broadcast queue was full",
	})

	ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kuji_active_websocket_subscribers",
		Help: "Currently connected push subscribers",
	})
)
