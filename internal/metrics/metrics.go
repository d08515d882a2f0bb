// Package metrics exposes the mixer's prometheus instrumentation: no
// per-source or per-channel labels, so cardinality stays bounded
// regardless of how many sounds get played.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gomixer_active_channels",
		Help: "Number of mixer channels currently playing a sound",
	})

	underrunTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gomixer_underrun_total",
		Help: "Number of times the sink requested audio faster than the mixer could produce it",
	})

	pullDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gomixer_pull_duration_seconds",
		Help:    "Time spent producing one audio-callback block",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	playTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gomixer_play_total",
		Help: "Total number of Play calls accepted",
	})

	playRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomixer_play_rejected_total",
		Help: "Play calls rejected, by reason",
	}, []string{"reason"}) // bounded: "no_free_channel", "channel_out_of_range", "errored"

	masterVolume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gomixer_master_volume",
		Help: "Current master volume target",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomixer_http_requests_total",
		Help: "Total control API HTTP requests",
	}, []string{"method", "endpoint", "status"})
)

// SetActiveChannels records the current active-channel count.
func SetActiveChannels(n int) { activeChannels.Set(float64(n)) }

// IncUnderrun records one audio-callback underrun.
func IncUnderrun() { underrunTotal.Inc() }

// ObservePull records how long one audio-callback block took to produce.
func ObservePull(d time.Duration) { pullDuration.Observe(d.Seconds()) }

// IncPlay records an accepted Play call.
func IncPlay() { playTotal.Inc() }

// IncPlayRejected records a rejected Play call. reason must be one of
// "no_free_channel", "channel_out_of_range", "errored".
func IncPlayRejected(reason string) { playRejectedTotal.WithLabelValues(reason).Inc() }

// SetMasterVolume records the current master volume target.
func SetMasterVolume(v float32) { masterVolume.Set(float64(v)) }

// RecordHTTPRequest records one control API request.
func RecordHTTPRequest(method, endpoint, status string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
