package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes aggregated months to a Kafka topic, one message per month.
// It implements pipeline.MonthPublisher.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// PublishMonths serializes and publishes every month in a single WriteMessages call.
// Messages are keyed by month.
func (w *Writer) PublishMonths(ctx context.Context, months []domain.MonthEntry) error {
	if len(months) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(months))
	for i := range months {
		msg, err := serializeToMessage(months[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish months to %s: %w", w.topic, err)
	}
	w.logger.Info("published months", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a MonthEntry into a Kafka message.
func serializeToMessage(month domain.MonthEntry) (kafkago.Message, error) {
	data, err := json.Marshal(month)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize month %s: %w", month.Month, err)
	}
	return kafkago.Message{
		Key:   []byte(month.Month),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "month", Value: []byte(month.Month)},
			{Key: "total_reports", Value: []byte(strconv.Itoa(month.TotalReports))},
		},
	}, nil
}
