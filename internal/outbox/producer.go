package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// writerBatchTimeout is short because the Dispatcher already batches; the
// kafka-go default of one second would delay every flush.
const writerBatchTimeout = 10 * time.Millisecond

// KafkaProducer delivers roster messages through a single shared writer.
// The writer carries no topic of its own; each message is addressed instead.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer connects a KafkaProducer to brokers. Messages are keyed by
// activity, and hash balancing keeps one activity's events on one partition.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			Compression:            kafka.Snappy,
			BatchTimeout:           writerBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// WriteMessages addresses msgs to topic and writes them synchronously.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	for i := range msgs {
		msgs[i].Topic = topic
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending writes and releases broker connections.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
