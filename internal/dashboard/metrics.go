package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_dashboard_connected_clients",
		Help: "Number of websocket clients currently subscribed to the dashboard feed",
	})

	MessagesBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_dashboard_messages_broadcast_total",
		Help: "Total number of dashboard messages broadcast, by type",
	}, []string{"type"})

	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_dashboard_messages_dropped_total",
		Help: "Total number of dashboard messages dropped because a subscriber's buffer was full",
	}, []string{"type"})

	SubscribeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_dashboard_subscription_duration_seconds",
		Help:    "How long a websocket dashboard subscription stayed open",
		Buckets: prometheus.DefBuckets,
	})
)
