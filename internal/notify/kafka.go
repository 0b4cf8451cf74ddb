package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig holds Kafka dispatcher configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaDispatcher produces notification events to a Kafka topic, where
// the real SMS/email gateway consumes them.
type KafkaDispatcher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaDispatcher creates a Kafka-backed dispatcher.
func NewKafkaDispatcher(cfg KafkaConfig, logger *slog.Logger) (*KafkaDispatcher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &KafkaDispatcher{
		client: client,
		topic:  cfg.Topic,
		logger: logger.With("component", "kafka-dispatcher", "topic", cfg.Topic),
	}, nil
}

// Dispatch produces the event keyed by case ID so all notifications for
// one case land on the same partition in order.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.CaseID),
		Value: payload,
	}

	d.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			d.logger.Error("failed to produce notification event",
				"case_id", event.CaseID,
				"error", err,
			)
		}
	})

	return nil
}

// Close flushes outstanding records and closes the client.
func (d *KafkaDispatcher) Close() {
	_ = d.client.Flush(context.Background())
	d.client.Close()
}
