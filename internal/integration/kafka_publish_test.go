//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-field-reports-aggregated"

// publishedMonth holds a deserialized message read back from the topic.
type publishedMonth struct {
	Month   domain.MonthEntry
	Key     string
	Headers map[string]string
}

func readMonth(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMonth {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var month domain.MonthEntry
	require.NoError(t, json.Unmarshal(msg.Value, &month), "unmarshal month message")

	return publishedMonth{Month: month, Key: string(msg.Key), Headers: headers}
}

func ptr[T any](v T) *T { return &v }

// TestAggregatePublishesMonths runs the aggregate job against a report file with a
// real Kafka writer and checks that every month in the output file arrives on the
// topic, in order, keyed by month.
func TestAggregatePublishesMonths(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	dir := t.TempDir()
	reportStore := jsonfile.NewReportStore(filepath.Join(dir, "field_reports.json"))
	monthStore := jsonfile.NewMonthStore(filepath.Join(dir, "field_reports_aggregated.json"))

	require.NoError(t, reportStore.SaveReports([]domain.Report{
		{ID: ptr(int64(1)), Lat: ptr(9.08), Lon: ptr(7.4), CreatedAt: ptr("2019-05-10T00:00:00Z"), EventName: ptr("Floods"), CountryName: ptr("Nigeria")},
		{ID: ptr(int64(2)), Lat: ptr(9.08), Lon: ptr(7.4), CreatedAt: ptr("2019-05-20T00:00:00Z"), EventName: ptr("Floods"), CountryName: ptr("Nigeria")},
		{ID: ptr(int64(3)), Lat: ptr(23.7), Lon: ptr(90.35), CreatedAt: ptr("2020-07-01T00:00:00Z"), EventName: ptr("Cyclone"), CountryName: ptr("Bangladesh")},
		{ID: ptr(int64(4)), CreatedAt: ptr("2020-07-01T00:00:00Z")},
	}))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	aggregator := pipeline.NewAggregator(reportStore, monthStore, writer, domain.DefaultMaxLocations, discardLogger(), metrics)
	_, err := aggregator.Run(ctx)
	require.NoError(t, err)

	saved, err := monthStore.LoadMonths()
	require.NoError(t, err)
	require.Len(t, saved, 2)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for _, want := range saved {
		got := readMonth(ctx, t, consumer)
		assert.Equal(t, want.Month, got.Key)
		assert.Equal(t, want.Month, got.Headers["month"])
		assert.Equal(t, strconv.Itoa(want.TotalReports), got.Headers["total_reports"])
		if diff := cmp.Diff(want, got.Month); diff != "" {
			t.Fatalf("published month mismatch (-file +topic):\n%s", diff)
		}
	}
}
