package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer writes dispatched events to the club topics. Writers are
// created on first use per topic and reused afterwards; messages are keyed by
// partition key so each club keeps per-partition ordering.
type KafkaProducer struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a producer for the given broker list.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages delivers msgs to topic synchronously. Delivery errors surface
// to the dispatcher, which routes the batch to the DLQ.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	writer, ok := p.writers[topic]
	if !ok {
		writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
			Async:        false,
		}
		p.writers[topic] = writer
	}
	return writer
}

// Close shuts down every topic writer, returning the first error seen.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
