// Package domain defines the business logic for the activity signup service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/signup/internal/events"
)

var (
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already on the roster.
	ErrAlreadySignedUp = errors.New("student already signed up for this activity")
	// ErrNotRegistered is returned when unregistering an email that is not on the roster.
	ErrNotRegistered = errors.New("student is not signed up for this activity")
	// ErrActivityFull is returned when capacity enforcement is on and the roster is full.
	ErrActivityFull = errors.New("activity is full")
	// ErrEmailRequired is returned when a request carries no email parameter.
	ErrEmailRequired = errors.New("email is required")
)

// Publisher receives roster events after a successful mutation. Implementations
// must not block the caller.
type Publisher interface {
	Publish(events.RosterEvent)
}

// Recorder observes registry operations, typically for metrics.
type Recorder interface {
	RecordSignup(activity Activity)
	RecordUnregister(activity Activity)
	RecordRejection(operation string, err error)
}

// Service orchestrates roster changes on top of the Registry.
type Service struct {
	registry  *Registry
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithPublisher routes roster events to p.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithRecorder routes operation outcomes to rec.
func WithRecorder(rec Recorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{
		registry:  registry,
		publisher: discardPublisher{},
		recorder:  discardRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirmation acknowledges a roster change.
type Confirmation struct {
	Activity string
	Email    string
}

// ListActivities returns every activity with its current roster, in catalog order.
func (s *Service) ListActivities(ctx context.Context) []Activity {
	return s.registry.List()
}

// Signup enrols email in the named activity. The email is stored verbatim,
// empty strings included.
func (s *Service) Signup(ctx context.Context, activityName, email string) (Confirmation, error) {
	activity, err := s.registry.Signup(activityName, email)
	if err != nil {
		s.recorder.RecordRejection(events.OperationSignup, err)
		return Confirmation{}, fmt.Errorf("signup %q: %w", activityName, err)
	}

	s.recorder.RecordSignup(activity)
	s.publisher.Publish(s.newEvent(events.RosterSignedUp, activity, email))
	return Confirmation{Activity: activity.Name, Email: email}, nil
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, activityName, email string) (Confirmation, error) {
	activity, err := s.registry.Unregister(activityName, email)
	if err != nil {
		s.recorder.RecordRejection(events.OperationUnregister, err)
		return Confirmation{}, fmt.Errorf("unregister %q: %w", activityName, err)
	}

	s.recorder.RecordUnregister(activity)
	s.publisher.Publish(s.newEvent(events.RosterUnregistered, activity, email))
	return Confirmation{Activity: activity.Name, Email: email}, nil
}

func (s *Service) newEvent(eventType string, activity Activity, email string) events.RosterEvent {
	return events.RosterEvent{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		Activity:         activity.Name,
		Email:            email,
		ParticipantCount: len(activity.Participants),
		MaxParticipants:  activity.MaxParticipants,
		OccurredAt:       s.now().UTC(),
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(events.RosterEvent) {}

type discardRecorder struct{}

func (discardRecorder) RecordSignup(Activity) {}
func (discardRecorder) RecordUnregister(Activity) {}
func (discardRecorder) RecordRejection(string, error) {}
