package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Websocket clients currently connected",
		},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_published_total",
			Help: "Task events fanned out by the hub",
		},
		[]string{"event"},
	)
	FramesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_frames_dropped_total",
			Help: "Frames dropped because a client buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(FramesDropped)
}
