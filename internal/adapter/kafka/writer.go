package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/ili-nowcast-eval/internal/config"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
)

// Writer publishes nowcast records to a log-compacted Kafka topic. Records are
// keyed by epiweek and location, so compaction keeps the latest value per key.
// It implements pipeline.RecordLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured nowcast topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNowcastTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes records in a single WriteMessages call.
// The hash balancer sends every version of a key to the same partition, which
// keeps the per-key order that compaction relies on.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.NowcastRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write nowcasts to %s: %w", w.writer.Topic, err)
	}
	w.logger.Debug("nowcast batch written", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a NowcastRecord into a Kafka message.
func serializeToMessage(rec domain.NowcastRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize nowcast record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "epiweek", Value: []byte(rec.Week.String())},
			{Key: "location", Value: []byte(rec.Location)},
		},
	}, nil
}
