package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"msgworker/internal/events"
)

const namespace = "msgworker"

// Collector turns worker events into Prometheus metrics.
type Collector struct {
	handled    *prometheus.CounterVec
	failed     *prometheus.CounterVec
	iterations *prometheus.CounterVec
	stopped    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var (
	_ events.MessageHandledSubscriber = (*Collector)(nil)
	_ events.MessageFailedSubscriber  = (*Collector)(nil)
	_ events.WorkerRunningSubscriber  = (*Collector)(nil)
	_ events.WorkerStoppedSubscriber  = (*Collector)(nil)
)

// NewCollector registers the worker metrics on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_handled_total",
			Help:      "Messages handled and acknowledged.",
		}, []string{"receiver"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_failed_total",
			Help:      "Messages whose handler returned an error.",
		}, []string{"receiver"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_running_iterations_total",
			Help:      "Worker loop iterations.",
		}, []string{"idle"}),
		stopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_stopped_total",
			Help:      "Times a worker loop exited.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_handle_duration_seconds",
			Help:      "Time spent handling a message.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"receiver"}),
	}

	for _, collector := range []prometheus.Collector{c.handled, c.failed, c.iterations, c.stopped, c.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Collector) OnMessageHandled(e *events.MessageHandledEvent) {
	c.handled.WithLabelValues(e.ReceiverName).Inc()
	c.duration.WithLabelValues(e.ReceiverName).Observe(e.Duration.Seconds())
}

func (c *Collector) OnMessageFailed(e *events.MessageFailedEvent) {
	c.failed.WithLabelValues(e.ReceiverName).Inc()
}

func (c *Collector) OnWorkerRunning(e *events.WorkerRunningEvent) {
	c.iterations.WithLabelValues(strconv.FormatBool(e.Idle)).Inc()
}

func (c *Collector) OnWorkerStopped(e *events.WorkerStoppedEvent) {
	c.stopped.WithLabelValues(e.Reason).Inc()
}
