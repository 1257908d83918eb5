package kafka

import (
	"context"
)

// Publisher sends batches of records to Kafka.
//
// This interface is implemented by the concrete *ProducerPool type.
type Publisher interface {
	// Publish serializes and sends every record of batch, returning once all
	// of them are acknowledged. Failures are *apperr.Error values.
	Publish(ctx context.Context, batch Batch) error

	// Close drains the pool, closing every idle producer.
	Close() error
}

// TopicLister answers topic metadata queries from cache.
//
// This interface is implemented by the concrete *TopicService type.
type TopicLister interface {
	// ContainsTopic reports whether topic exists. A miss refreshes the topic
	// list early once the retry window has passed.
	ContainsTopic(ctx context.Context, topic string) (bool, error)

	// Topics returns the sorted names of all topics not prefixed with '_'.
	Topics(ctx context.Context) ([]string, error)

	// TopicInfo describes the partitions of topic.
	TopicInfo(ctx context.Context, topic string) (*TopicInfo, error)
}

// Record is a key and value in goavro native form.
type Record struct {
	Key   interface{}
	Value interface{}
}

// Batch is a set of records bound for one topic, all sharing the same key
// and value serializers.
type Batch struct {
	Topic           string
	KeySerializer   Serializer
	ValueSerializer Serializer
	Records         []Record
}

// TopicInfo is the partition layout of a topic.
type TopicInfo struct {
	Name       string          `json:"name"`
	Partitions []PartitionInfo `json:"partitions"`
}

// PartitionInfo describes one partition of a topic.
type PartitionInfo struct {
	Partition int `json:"partition"`
}
