package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictacgo_api_requests_total",
			Help: "Requests sent to the game server",
		},
		[]string{"endpoint", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tictacgo_api_request_duration_seconds",
			Help:    "Game server request latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)
	RelayFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictacgo_relay_frames_total",
			Help: "Push frames received, by outcome",
		},
		[]string{"result"},
	)
	RelayConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tictacgo_relay_connections",
			Help: "Open push relay connections",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictacgo_games_finished_total",
			Help: "Finished games counted into local stats",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(APIRequests, APIRequestDuration)
	prometheus.MustRegister(RelayFrames, RelayConnections)
	prometheus.MustRegister(GamesFinished)
}
