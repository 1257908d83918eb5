package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// Admin reads topic metadata from the cluster. It never creates topics.
type Admin interface {
	// ListTopics returns the names of every topic in the cluster, internal
	// topics included.
	ListTopics(ctx context.Context) ([]string, error)

	// DescribeTopic returns the partitions of topic, or ErrTopicNotFound.
	DescribeTopic(ctx context.Context, topic string) (*TopicInfo, error)

	Close()
}

// metadataAdmin implements Admin with raw metadata requests.
type metadataAdmin struct {
	client *kgo.Client
	cfg    Config
	logger Logger
}

// NewAdmin creates a metadata client for cfg.Brokers sharing the TLS and
// SASL settings of the producer pool.
func NewAdmin(cfg Config, logger Logger) (Admin, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID("kafka-gateway-admin"),
		kgo.WithLogger(&kgoLogger{logger: logger}),
	}
	if cfg.TLS.Enabled {
		tlsCfg, err := createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	if cfg.SASL.Enabled {
		mechanism, err := createAdminSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		opts = append(opts, kgo.SASL(mechanism))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return &metadataAdmin{client: client, cfg: cfg, logger: logger}, nil
}

func (a *metadataAdmin) metadata(ctx context.Context, topics ...string) (*kmsg.MetadataResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.AdminTimeout)
	defer cancel()

	req := kmsg.NewPtrMetadataRequest()
	req.AllowAutoTopicCreation = false
	for _, name := range topics {
		t := kmsg.NewMetadataRequestTopic()
		t.Topic = kmsg.StringPtr(name)
		req.Topics = append(req.Topics, t)
	}
	return req.RequestWith(ctx, a.client)
}

func (a *metadataAdmin) ListTopics(ctx context.Context) ([]string, error) {
	resp, err := a.metadata(ctx)
	if err != nil {
		return nil, err
	}
	return topicNames(ctx, resp, a.logger), nil
}

// topicNames lists the topics of resp. Topics the brokers report an error
// for are left out so that one broken topic does not hide the others.
func topicNames(ctx context.Context, resp *kmsg.MetadataResponse, logger Logger) []string {
	names := make([]string, 0, len(resp.Topics))
	for _, t := range resp.Topics {
		if t.Topic == nil {
			continue
		}
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			if logger != nil {
				logger.WarnWithContext(ctx, "Skipping topic with metadata error", err, map[string]interface{}{
					"topic": *t.Topic,
				})
			}
			continue
		}
		names = append(names, *t.Topic)
	}
	return names
}

func (a *metadataAdmin) DescribeTopic(ctx context.Context, topic string) (*TopicInfo, error) {
	resp, err := a.metadata(ctx, topic)
	if err != nil {
		return nil, err
	}
	for _, t := range resp.Topics {
		if t.Topic == nil || *t.Topic != topic {
			continue
		}
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			if errors.Is(err, kerr.UnknownTopicOrPartition) {
				return nil, ErrTopicNotFound
			}
			return nil, fmt.Errorf("topic %s: %w", topic, err)
		}
		info := &TopicInfo{Name: topic, Partitions: make([]PartitionInfo, 0, len(t.Partitions))}
		for _, p := range t.Partitions {
			info.Partitions = append(info.Partitions, PartitionInfo{Partition: int(p.Partition)})
		}
		sort.Slice(info.Partitions, func(i, j int) bool {
			return info.Partitions[i].Partition < info.Partitions[j].Partition
		})
		return info, nil
	}
	return nil, ErrTopicNotFound
}

func (a *metadataAdmin) Close() {
	a.client.Close()
}

// kgoLogger forwards franz-go warnings and errors to Logger.
type kgoLogger struct {
	logger Logger
}

func (l *kgoLogger) Level() kgo.LogLevel {
	if l.logger == nil {
		return kgo.LogLevelNone
	}
	return kgo.LogLevelWarn
}

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...interface{}) {
	if l.logger == nil {
		return
	}
	fields := make(map[string]interface{}, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fields[fmt.Sprint(keyvals[i])] = keyvals[i+1]
	}
	if level == kgo.LogLevelError {
		l.logger.ErrorWithContext(context.Background(), msg, nil, fields)
		return
	}
	l.logger.WarnWithContext(context.Background(), msg, nil, fields)
}
