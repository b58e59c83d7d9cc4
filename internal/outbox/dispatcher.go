// Package outbox buffers roster events and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/signup/internal/events"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// DispatcherConfig contains tunables for the Dispatcher.
type DispatcherConfig struct {
	Topic           string
	FlushInterval   time.Duration
	BatchSize       int
	BufferSize      int
	ShutdownTimeout time.Duration
}

// Dispatcher accepts roster events without blocking and delivers them to Kafka in batches.
type Dispatcher struct {
	producer         messageWriter
	cfg              DispatcherConfig
	queue            chan events.RosterEvent
	logger           *zap.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(producer messageWriter, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BufferSize < cfg.BatchSize {
		cfg.BufferSize = cfg.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		producer:         producer,
		cfg:              cfg,
		queue:            make(chan events.RosterEvent, cfg.BufferSize),
		logger:           logger.Named("outbox"),
		shutdownComplete: make(chan struct{}),
	}
}

// Publish enqueues evt. When the buffer is full the event is dropped.
func (d *Dispatcher) Publish(evt events.RosterEvent) {
	select {
	case d.queue <- evt:
		pendingGauge.Inc()
	default:
		droppedCounter.Inc()
		d.logger.Warn("roster event dropped, buffer full",
			zap.String("event_id", evt.EventID),
			zap.String("event_type", evt.EventType),
			zap.String("activity", evt.Activity),
		)
	}
}

// Start launches the delivery loop. It should be called in a goroutine and
// returns after the buffer has been drained once ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	batch := make([]events.RosterEvent, 0, d.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			d.drain(batch)
			return
		case evt := <-d.queue:
			pendingGauge.Dec()
			batch = append(batch, evt)
			if len(batch) >= d.cfg.BatchSize {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// Wait waits until the dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) drain(batch []events.RosterEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
	defer cancel()

	for {
		select {
		case evt := <-d.queue:
			pendingGauge.Dec()
			batch = append(batch, evt)
			if len(batch) >= d.cfg.BatchSize {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		default:
			if len(batch) > 0 {
				d.flush(ctx, batch)
			}
			return
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context, batch []events.RosterEvent) {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	messages := make([]kafka.Message, 0, len(batch))
	for _, evt := range batch {
		msg, err := encodeMessage(evt)
		if err != nil {
			failedCounter.Inc()
			d.logger.Error("encode roster event", zap.String("event_id", evt.EventID), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return
	}

	if err := d.producer.WriteMessages(ctx, d.cfg.Topic, messages...); err != nil {
		failedCounter.Add(float64(len(messages)))
		d.logger.Error("roster event delivery failed",
			zap.String("topic", d.cfg.Topic),
			zap.Int("events", len(messages)),
			zap.Error(err),
		)
		return
	}

	deliveredCounter.Add(float64(len(messages)))
	d.logger.Debug("roster events delivered", zap.String("topic", d.cfg.Topic), zap.Int("events", len(messages)))
}

// encodeMessage renders evt as a Kafka record keyed by activity name.
func encodeMessage(evt events.RosterEvent) (kafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", evt.EventType, err)
	}
	return kafka.Message{
		Key:   []byte(evt.Activity),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: events.HeaderEventType, Value: []byte(evt.EventType)},
			{Key: events.HeaderEventID, Value: []byte(evt.EventID)},
			{Key: events.HeaderContentType, Value: []byte(events.ContentTypeJSON)},
		},
	}, nil
}
