package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"example.com/signup/internal/domain"
)

func TestRegistryRecorderTracksRoster(t *testing.T) {
	rec := NewRegistryRecorder([]domain.Activity{{Name: "Metrics Club", Participants: []string{"a@x.edu"}}})
	require.Equal(t, 1.0, testutil.ToFloat64(participantsGauge.WithLabelValues("Metrics Club")))

	before := testutil.ToFloat64(signupCounter.WithLabelValues("Metrics Club"))
	rec.RecordSignup(domain.Activity{Name: "Metrics Club", Participants: []string{"a@x.edu", "b@x.edu"}})
	require.Equal(t, before+1, testutil.ToFloat64(signupCounter.WithLabelValues("Metrics Club")))
	require.Equal(t, 2.0, testutil.ToFloat64(participantsGauge.WithLabelValues("Metrics Club")))

	beforeUnregister := testutil.ToFloat64(unregisterCounter.WithLabelValues("Metrics Club"))
	rec.RecordUnregister(domain.Activity{Name: "Metrics Club", Participants: []string{"b@x.edu"}})
	require.Equal(t, beforeUnregister+1, testutil.ToFloat64(unregisterCounter.WithLabelValues("Metrics Club")))
	require.Equal(t, 1.0, testutil.ToFloat64(participantsGauge.WithLabelValues("Metrics Club")))
}

func TestParticipantsGaugeMatchesRosterUnderConcurrency(t *testing.T) {
	registry := domain.NewRegistry([]domain.Activity{{Name: "Gauge Club", MaxParticipants: 100}})
	service := domain.NewService(registry, domain.WithRecorder(NewRegistryRecorder(registry.List())))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("s%d@x.edu", i)
			_, _ = service.Signup(ctx, "Gauge Club", email)
			if i%2 == 0 {
				_, _ = service.Unregister(ctx, "Gauge Club", email)
			}
		}(i)
	}
	wg.Wait()

	roster, err := registry.Get("Gauge Club")
	require.NoError(t, err)
	require.Len(t, roster.Participants, 25)
	require.Equal(t, float64(len(roster.Participants)), testutil.ToFloat64(participantsGauge.WithLabelValues("Gauge Club")))
}

func TestRegistryRecorderRejectionsUseReasonLabels(t *testing.T) {
	rec := RegistryRecorder{}
	wrapped := fmt.Errorf("signup %q: %w", "Nope", domain.ErrActivityNotFound)
	rec.RecordRejection("signup", wrapped)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := findMetric(families, "signup_service_registry_rejections_total", map[string]string{
		"operation": "signup",
		"reason":    "not_found",
	})
	require.NotNil(t, found)
	require.GreaterOrEqual(t, found.GetCounter().GetValue(), 1.0)
}

func TestRejectionReason(t *testing.T) {
	cases := map[error]string{
		domain.ErrActivityNotFound: "not_found",
		domain.ErrAlreadySignedUp:  "already_signed_up",
		domain.ErrNotRegistered:    "not_registered",
		domain.ErrActivityFull:     "activity_full",
		domain.ErrEmailRequired:    "email_required",
		errors.New("boom"):         "other",
	}
	for err, want := range cases {
		require.Equal(t, want, RejectionReason(err), err.Error())
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "debug", parseLevel("DEBUG").String())
	require.Equal(t, "warn", parseLevel("warning").String())
	require.Equal(t, "error", parseLevel("error").String())
	require.Equal(t, "info", parseLevel("bogus").String())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(parseLevel("debug")))

	logger, err = NewLogger("warn", "json")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(parseLevel("info")))
}

func findMetric(families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric
			}
		}
	}
	return nil
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if pair.GetValue() != want {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}
