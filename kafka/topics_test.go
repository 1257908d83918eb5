package kafka

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/cache"
)

type fakeAdmin struct {
	mu            sync.Mutex
	topics        []string
	partitions    map[string]int
	listErr       error
	listCalls     int
	describeCalls int
}

func (a *fakeAdmin) ListTopics(context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listCalls++
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]string{}, a.topics...), nil
}

func (a *fakeAdmin) DescribeTopic(_ context.Context, topic string) (*TopicInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.describeCalls++
	if a.listErr != nil {
		return nil, a.listErr
	}
	n, ok := a.partitions[topic]
	if !ok {
		return nil, ErrTopicNotFound
	}
	info := &TopicInfo{Name: topic}
	for i := 0; i < n; i++ {
		info.Partitions = append(info.Partitions, PartitionInfo{Partition: i})
	}
	return info, nil
}

func (a *fakeAdmin) Close() {}

func (a *fakeAdmin) addTopic(name string, partitions int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.topics = append(a.topics, name)
	if a.partitions == nil {
		a.partitions = map[string]int{}
	}
	a.partitions[name] = partitions
}

func (a *fakeAdmin) calls() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls, a.describeCalls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTopicService(admin *fakeAdmin) (*TopicService, *testClock) {
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewTopicService(Config{}, admin, cache.WithClock(clock.Now)), clock
}

func TestTopicsAreSortedAndHideInternal(t *testing.T) {
	admin := &fakeAdmin{}
	admin.addTopic("b_topic", 1)
	admin.addTopic("__consumer_offsets", 50)
	admin.addTopic("a_topic", 1)
	admin.addTopic("_schemas", 1)
	svc, _ := newTestTopicService(admin)

	topics, err := svc.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a_topic", "b_topic"}, topics)

	// hidden topics still exist
	ok, err := svc.ContainsTopic(context.Background(), "_schemas")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContainsTopicRefreshesEarlyAfterRetryWindow(t *testing.T) {
	admin := &fakeAdmin{}
	admin.addTopic("existing", 1)
	svc, clock := newTestTopicService(admin)
	ctx := context.Background()

	ok, err := svc.ContainsTopic(ctx, "new")
	require.NoError(t, err)
	assert.False(t, ok)

	admin.addTopic("new", 3)

	// within the retry window the miss is served from cache
	clock.Advance(time.Second)
	ok, err = svc.ContainsTopic(ctx, "new")
	require.NoError(t, err)
	assert.False(t, ok)
	list, _ := admin.calls()
	assert.Equal(t, 1, list)

	clock.Advance(time.Second)
	ok, err = svc.ContainsTopic(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
	list, _ = admin.calls()
	assert.Equal(t, 2, list)

	// hits never trigger a refresh before the refresh window
	clock.Advance(5 * time.Second)
	ok, err = svc.ContainsTopic(ctx, "existing")
	require.NoError(t, err)
	assert.True(t, ok)
	list, _ = admin.calls()
	assert.Equal(t, 2, list)
}

func TestTopicListFailureIsMemoized(t *testing.T) {
	admin := &fakeAdmin{listErr: errors.New("no brokers available")}
	svc, clock := newTestTopicService(admin)
	ctx := context.Background()

	_, err := svc.Topics(ctx)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "kafka_unavailable", appErr.Code)
	assert.Equal(t, "no brokers available", appErr.Message)

	_, err = svc.ContainsTopic(ctx, "any")
	require.Error(t, err)
	list, _ := admin.calls()
	assert.Equal(t, 1, list)

	admin.mu.Lock()
	admin.listErr = nil
	admin.mu.Unlock()
	admin.addTopic("any", 1)

	clock.Advance(DefaultTopicListRetry)
	ok, err = svc.ContainsTopic(ctx, "any")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTopicInfo(t *testing.T) {
	admin := &fakeAdmin{}
	admin.addTopic("events", 3)
	svc, clock := newTestTopicService(admin)
	ctx := context.Background()

	info, err := svc.TopicInfo(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, "events", info.Name)
	assert.Equal(t, []PartitionInfo{{Partition: 0}, {Partition: 1}, {Partition: 2}}, info.Partitions)

	again, err := svc.TopicInfo(ctx, "events")
	require.NoError(t, err)
	assert.Same(t, info, again)

	clock.Advance(DefaultTopicInfoRefresh)
	_, err = svc.TopicInfo(ctx, "events")
	require.NoError(t, err)
	_, describe := admin.calls()
	assert.Equal(t, 2, describe)
}

func TestTopicInfoNotFound(t *testing.T) {
	svc, _ := newTestTopicService(&fakeAdmin{})

	_, err := svc.TopicInfo(context.Background(), "missing")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "topic_not_found", appErr.Code)
	assert.Equal(t, "Topic missing does not exist", appErr.Message)
}

func TestTopicInfoUnknownNamesAreNotCached(t *testing.T) {
	admin := &fakeAdmin{}
	admin.addTopic("events", 1)
	svc, _ := newTestTopicService(admin)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := svc.TopicInfo(ctx, name)
		assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
	}
	_, describe := admin.calls()
	assert.Zero(t, describe)
	assert.Zero(t, svc.infos.Len())

	_, err := svc.TopicInfo(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.infos.Len())
}

func TestHealthy(t *testing.T) {
	admin := &fakeAdmin{}
	admin.addTopic("events", 1)
	svc, clock := newTestTopicService(admin)
	ctx := context.Background()

	require.NoError(t, svc.Healthy(ctx))

	admin.mu.Lock()
	admin.listErr = errors.New("connection refused")
	admin.mu.Unlock()
	clock.Advance(DefaultTopicListRefresh)
	assert.Error(t, svc.Healthy(ctx))
}
