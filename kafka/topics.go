package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/cache"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

// topicSet is one snapshot of the cluster's topic names.
type topicSet struct {
	names  map[string]struct{}
	sorted []string
}

func newTopicSet(names []string) *topicSet {
	s := &topicSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.names[name] = struct{}{}
		if !strings.HasPrefix(name, "_") {
			s.sorted = append(s.sorted, name)
		}
	}
	sort.Strings(s.sorted)
	return s
}

// TopicService answers topic metadata queries from cached admin responses.
// The topic list and each topic's partition layout are cached separately;
// per-topic caches are only created for topics in the topic list.
//
// TopicService implements the TopicLister interface.
type TopicService struct {
	cfg   Config
	admin Admin

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional logging for metadata refresh failures
	logger Logger

	topics *cache.CachedValue[*topicSet]
	infos  *cache.Map[string, *TopicInfo]
}

// NewTopicService creates a service reading metadata through admin.
// The cache options apply to the topic list and to every per-topic cache.
func NewTopicService(cfg Config, admin Admin, opts ...cache.Option) *TopicService {
	cfg = cfg.withDefaults()
	s := &TopicService{cfg: cfg, admin: admin}
	s.topics = cache.New(cfg.TopicListRefresh, cfg.TopicListRetry, s.listTopics, opts...)
	s.infos = cache.NewMap[string, *TopicInfo](cfg.TopicInfoRefresh, cfg.TopicInfoRetry, opts...)
	return s
}

// WithObserver attaches an observer for tracking metadata requests.
func (s *TopicService) WithObserver(observer observability.Observer) *TopicService {
	s.observer = observer
	return s
}

// WithLogger attaches a logger for metadata refresh failures.
func (s *TopicService) WithLogger(logger Logger) *TopicService {
	s.logger = logger
	return s
}

func (s *TopicService) listTopics(ctx context.Context) (*topicSet, error) {
	start := time.Now()
	names, err := s.admin.ListTopics(ctx)
	s.observeOperation("list_topics", "", "", time.Since(start), err, int64(len(names)))
	if err != nil {
		s.logWarn(ctx, "Failed to list Kafka topics", err, nil)
		return nil, unavailable(err)
	}
	return newTopicSet(names), nil
}

// ContainsTopic reports whether topic exists. When the cached list does not
// contain topic it is refreshed at most once per retry window.
func (s *TopicService) ContainsTopic(ctx context.Context, topic string) (bool, error) {
	return cache.Compute(ctx, s.topics,
		func(set *topicSet) bool {
			_, ok := set.names[topic]
			return ok
		},
		func(found bool) bool { return found },
	)
}

// Topics returns the sorted names of all topics that do not start with '_'.
func (s *TopicService) Topics(ctx context.Context) ([]string, error) {
	set, err := s.topics.Get(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, set.sorted...), nil
}

// TopicInfo returns the partition layout of topic, or a 404 error when the
// topic does not exist.
func (s *TopicService) TopicInfo(ctx context.Context, topic string) (*TopicInfo, error) {
	exists, err := s.ContainsTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, topicNotFound(topic, ErrTopicNotFound)
	}
	return s.infos.Get(ctx, topic, func(ctx context.Context) (*TopicInfo, error) {
		return s.describeTopic(ctx, topic)
	})
}

func (s *TopicService) describeTopic(ctx context.Context, topic string) (*TopicInfo, error) {
	start := time.Now()
	info, err := s.admin.DescribeTopic(ctx, topic)
	s.observeOperation("describe_topic", topic, "", time.Since(start), err, 0)
	if errors.Is(err, ErrTopicNotFound) {
		return nil, topicNotFound(topic, err)
	}
	if err != nil {
		s.logWarn(ctx, "Failed to describe Kafka topic", err, map[string]interface{}{"topic": topic})
		return nil, unavailable(err)
	}
	return info, nil
}

// Healthy reports whether the topic list could be read recently.
func (s *TopicService) Healthy(ctx context.Context) error {
	if _, err := s.topics.Get(ctx); err != nil {
		return err
	}
	if s.topics.IsStale() {
		return apperr.ServiceUnavailable("kafka_unavailable", "Kafka topic list is stale")
	}
	return nil
}

func topicNotFound(topic string, err error) *apperr.Error {
	return apperr.NotFound("topic_not_found", fmt.Sprintf("Topic %s does not exist", topic)).WithCause(err)
}

func unavailable(err error) *apperr.Error {
	return apperr.ServiceUnavailable("kafka_unavailable", err.Error()).WithCause(err)
}

func (s *TopicService) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.WarnWithContext(ctx, msg, err, fields)
	}
}
