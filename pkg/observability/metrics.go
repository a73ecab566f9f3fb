package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/reachflow/funnel/pkg/domain"
)

// Metrics groups the collectors exported by the service.
type Metrics struct {
	StepVisits     *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	GatewayResults *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_step_visits_total",
				Help: "Total number of step displays",
			},
			[]string{"funnel", "step"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_submissions_total",
				Help: "Submission attempts by outcome and reason",
			},
			[]string{"funnel", "outcome", "reason"},
		),
		GatewayResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_gateway_resolutions_total",
				Help: "Backend answers by outcome, reason and strength",
			},
			[]string{"outcome", "reason", "weak"},
		),
		GatewayLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "funnel_gateway_duration_seconds",
				Help:    "Duration of backend calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.StepVisits, m.Submissions, m.GatewayResults, m.GatewayLatency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveGateway records one backend answer.
func (m *Metrics) ObserveGateway(result domain.SubmissionResult, took time.Duration) {
	m.GatewayResults.WithLabelValues(string(result.Outcome), result.Reason, strconv.FormatBool(result.Weak)).Inc()
	m.GatewayLatency.WithLabelValues(string(result.Outcome)).Observe(took.Seconds())
}
