// Package metrics holds the Prometheus instruments of the consumer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Results reported through RateFetch.
const (
	ResultSuccess       = "success"
	ResultProviderError = "provider_error"
	ResultStoreError    = "store_error"
)

type Metrics struct {
	jobsReserved  prometheus.Counter
	jobsFinished  prometheus.Counter
	jobsBuried    prometheus.Counter
	jobsRequeued  prometheus.Counter
	jobsRejected  prometheus.Counter
	rateFetch     *prometheus.CounterVec
	queueRetries  *prometheus.CounterVec
	queueFailures *prometheus.CounterVec
	workersActive prometheus.Gauge
}

// New creates the instruments and registers them on reg. A nil reg leaves
// them unregistered, which is what tests that only read values want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxworker_jobs_reserved_total",
			Help: "Total number of jobs reserved from the queue",
		}),
		jobsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxworker_jobs_finished_total",
			Help: "Total number of jobs deleted after reaching the success threshold",
		}),
		jobsBuried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxworker_jobs_buried_total",
			Help: "Total number of jobs buried after reaching the failure threshold",
		}),
		jobsRequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxworker_jobs_requeued_total",
			Help: "Total number of jobs put back with updated counters",
		}),
		jobsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxworker_jobs_rejected_total",
			Help: "Total number of jobs buried because their payload could not be decoded",
		}),
		rateFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxworker_rate_fetch_total",
			Help: "Total number of rate acquisitions by result",
		}, []string{"result"}),
		queueRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxworker_queue_op_retries_total",
			Help: "Total number of failed queue mutation attempts that were retried",
		}, []string{"op"}),
		queueFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxworker_queue_op_failures_total",
			Help: "Total number of queue mutations that exhausted their retries",
		}, []string{"op"}),
		workersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxworker_workers_active",
			Help: "Number of workers currently running their loop",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.jobsReserved,
			m.jobsFinished,
			m.jobsBuried,
			m.jobsRequeued,
			m.jobsRejected,
			m.rateFetch,
			m.queueRetries,
			m.queueFailures,
			m.workersActive,
		)
	}
	return m
}

func (m *Metrics) JobReserved() { m.jobsReserved.Inc() }
func (m *Metrics) JobFinished() { m.jobsFinished.Inc() }
func (m *Metrics) JobBuried()   { m.jobsBuried.Inc() }
func (m *Metrics) JobRequeued() { m.jobsRequeued.Inc() }
func (m *Metrics) JobRejected() { m.jobsRejected.Inc() }

func (m *Metrics) RateFetch(result string) {
	m.rateFetch.WithLabelValues(result).Inc()
}

// QueueRetry implements queue.RetryObserver.
func (m *Metrics) QueueRetry(op string, _ int, _ error) {
	m.queueRetries.WithLabelValues(op).Inc()
}

// QueueFailure implements queue.RetryObserver.
func (m *Metrics) QueueFailure(op string) {
	m.queueFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) WorkerStarted() { m.workersActive.Inc() }
func (m *Metrics) WorkerStopped() { m.workersActive.Dec() }
