package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ats"

	evaluationsTotal   = "evaluations_total"
	notificationsTotal = "notifications_total"
	resumeScore        = "resume_score"

	// Labels
	outcomeLabel = "outcome"
	resultLabel  = "result"
)

// Recorder collects pipeline metrics. The zero value is not usable, use NewRecorder.
type Recorder struct {
	evaluations   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	scores        prometheus.Histogram
}

// NewRecorder creates the pipeline collectors and registers them with reg when it is not nil.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      evaluationsTotal,
				Help:      "number of evaluated resumes partitioned by outcome",
			},
			[]string{outcomeLabel},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      notificationsTotal,
				Help:      "number of pass notifications partitioned by delivery result",
			},
			[]string{resultLabel},
		),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      resumeScore,
			Help:      "distribution of resume scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(r.Collectors()...)
	}

	return r
}

// ObserveEvaluation counts one finished item.
func (r *Recorder) ObserveEvaluation(outcome string, score *int, notification string) {
	r.evaluations.With(prometheus.Labels{outcomeLabel: outcome}).Inc()

	if score != nil {
		r.scores.Observe(float64(*score))
	}

	if notification != "" && notification != "none" {
		r.notifications.With(prometheus.Labels{resultLabel: notification}).Inc()
	}
}

// Collectors returns the collectors for a custom registry.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.evaluations, r.notifications, r.scores}
}
