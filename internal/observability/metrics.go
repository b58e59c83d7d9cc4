package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/signup/internal/domain"
)

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "signups_total",
		Help:      "Number of successful signups per activity.",
	}, []string{"activity"})
	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "unregistrations_total",
		Help:      "Number of successful unregistrations per activity.",
	}, []string{"activity"})
	rejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "rejections_total",
		Help:      "Number of rejected roster operations grouped by operation and reason.",
	}, []string{"operation", "reason"})
	participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, rejectionCounter, participantsGauge)
}

// RegistryRecorder implements domain.Recorder on top of the package metrics.
type RegistryRecorder struct{}

// NewRegistryRecorder primes the participants gauge for every activity so
// empty rosters are exported as zero instead of being absent.
func NewRegistryRecorder(activities []domain.Activity) RegistryRecorder {
	for _, a := range activities {
		participantsGauge.WithLabelValues(a.Name).Set(float64(len(a.Participants)))
	}
	return RegistryRecorder{}
}

// RecordSignup counts a signup and grows the roster size. Recording happens
// outside the roster lock, so the gauge only ever moves by deltas.
func (RegistryRecorder) RecordSignup(activity domain.Activity) {
	signupCounter.WithLabelValues(activity.Name).Inc()
	participantsGauge.WithLabelValues(activity.Name).Inc()
}

// RecordUnregister counts an unregistration and shrinks the roster size.
func (RegistryRecorder) RecordUnregister(activity domain.Activity) {
	unregisterCounter.WithLabelValues(activity.Name).Inc()
	participantsGauge.WithLabelValues(activity.Name).Dec()
}

// RecordRejection counts a rejected operation. Unknown activity names are not
// used as labels to keep cardinality bounded.
func (RegistryRecorder) RecordRejection(operation string, err error) {
	rejectionCounter.WithLabelValues(operation, RejectionReason(err)).Inc()
}

// RejectionReason maps a domain error onto a stable metric label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, domain.ErrActivityFull):
		return "activity_full"
	case errors.Is(err, domain.ErrEmailRequired):
		return "email_required"
	default:
		return "other"
	}
}
