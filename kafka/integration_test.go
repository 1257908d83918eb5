//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// setupKafka starts a single-node cluster and returns its broker addresses.
func setupKafka(t *testing.T) []string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.8.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "Failed to start Kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers
}

func createTopic(t *testing.T, broker, topic string, partitions int) {
	t.Helper()
	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}))
}

func TestIntegrationPublishAndDescribe(t *testing.T) {
	brokers := setupKafka(t)
	createTopic(t, brokers[0], "integration_events", 2)

	var (
		publisher Publisher
		topics    TopicLister
	)
	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config { return Config{Brokers: brokers, WriteTimeout: 20 * time.Second} }),
		fx.Populate(&publisher, &topics),
	)
	app.RequireStart()
	defer app.RequireStop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.Eventually(t, func() bool {
		ok, err := topics.ContainsTopic(ctx, "integration_events")
		return err == nil && ok
	}, 30*time.Second, time.Second)

	info, err := topics.TopicInfo(ctx, "integration_events")
	require.NoError(t, err)
	assert.Len(t, info.Partitions, 2)

	err = publisher.Publish(ctx, Batch{
		Topic:           "integration_events",
		KeySerializer:   BytesSerializer{},
		ValueSerializer: BytesSerializer{},
		Records: []Record{
			{Key: "source-1", Value: "first"},
			{Key: "source-1", Value: "second"},
		},
	})
	require.NoError(t, err)

	// both records share a key, so they land on the same partition
	var values []string
	for partition := 0; partition < 2 && len(values) < 2; partition++ {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:   brokers,
			Topic:     "integration_events",
			Partition: partition,
			MaxWait:   time.Second,
		})
		readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
		for len(values) < 2 {
			msg, err := r.ReadMessage(readCtx)
			if err != nil {
				break
			}
			values = append(values, string(msg.Value))
		}
		readCancel()
		_ = r.Close()
	}
	assert.ElementsMatch(t, []string{"first", "second"}, values)
}

func TestIntegrationNewTopicBecomesVisible(t *testing.T) {
	brokers := setupKafka(t)

	admin, err := NewAdmin(Config{Brokers: brokers}, nil)
	require.NoError(t, err)
	defer admin.Close()
	svc := NewTopicService(Config{Brokers: brokers}, admin)
	ctx := context.Background()

	ok, err := svc.ContainsTopic(ctx, "late_topic")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.TopicInfo(ctx, "late_topic")
	assert.Error(t, err)

	createTopic(t, brokers[0], "late_topic", 1)

	require.Eventually(t, func() bool {
		ok, err := svc.ContainsTopic(ctx, "late_topic")
		return err == nil && ok
	}, 20*time.Second, 500*time.Millisecond)
}
