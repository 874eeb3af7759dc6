package signal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "switchboard_participants",
		Help: "Currently registered participants.",
	})
	metricPartitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "switchboard_partitions",
		Help: "Currently active room partitions.",
	})
	metricRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switchboard_messages_routed_total",
		Help: "Signaling messages routed by inbound type.",
	}, []string{"type"})
	metricDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switchboard_messages_dropped_total",
		Help: "Signaling messages dropped as malformed, unknown, or untargeted.",
	})
)
