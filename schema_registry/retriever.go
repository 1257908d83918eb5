package schema_registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/kafka-gateway/avro"
	"github.com/aalemi-dev/kafka-gateway/cache"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

// ParsedSchema is a registered schema with its compiled codec.
type ParsedSchema struct {
	ID      int
	Version int
	Schema  *avro.Schema
	Codec   *avro.Codec
}

// Subject returns the registry subject of the key or value schema of topic.
func Subject(topic string, ofValue bool) string {
	if ofValue {
		return topic + "-value"
	}
	return topic + "-key"
}

type idKey struct {
	subject string
	id      int
}

type versionKey struct {
	subject string
	version int
}

// Retriever resolves and parses registry schemas, caching each lookup for
// Config.CacheRefresh. Failed lookups, including unknown ids and versions,
// are remembered for Config.CacheRetry.
type Retriever struct {
	registry Registry
	cfg      Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	byID      *cache.Map[idKey, *ParsedSchema]
	byVersion *cache.Map[versionKey, *ParsedSchema]

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRetriever creates a retriever backed by registry.
func NewRetriever(registry Registry, cfg Config, opts ...cache.Option) *Retriever {
	cfg = cfg.withDefaults()
	return &Retriever{
		registry:  registry,
		cfg:       cfg,
		byID:      cache.NewMap[idKey, *ParsedSchema](cfg.CacheRefresh, cfg.CacheRetry, opts...),
		byVersion: cache.NewMap[versionKey, *ParsedSchema](cfg.CacheRefresh, cfg.CacheRetry, opts...),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// WithObserver sets the observer used for cache cleanup events.
func (r *Retriever) WithObserver(observer observability.Observer) *Retriever {
	r.observer = observer
	return r
}

// WithLogger sets the logger used for lookup failures.
func (r *Retriever) WithLogger(logger Logger) *Retriever {
	r.logger = logger
	return r
}

// BySubjectAndID returns the schema with id, which must be registered in the
// key or value subject of topic.
func (r *Retriever) BySubjectAndID(ctx context.Context, topic string, ofValue bool, id int) (*ParsedSchema, error) {
	key := idKey{subject: Subject(topic, ofValue), id: id}
	return r.byID.Get(ctx, key, func(ctx context.Context) (*ParsedSchema, error) {
		return r.fetchByID(ctx, key)
	})
}

// BySubjectAndVersion returns a version of the key or value schema of topic.
// Versions below 1 select the latest version.
func (r *Retriever) BySubjectAndVersion(ctx context.Context, topic string, ofValue bool, version int) (*ParsedSchema, error) {
	if version < 1 {
		version = 0
	}
	key := versionKey{subject: Subject(topic, ofValue), version: version}
	return r.byVersion.Get(ctx, key, func(ctx context.Context) (*ParsedSchema, error) {
		return r.fetchByVersion(ctx, key)
	})
}

func (r *Retriever) fetchByID(ctx context.Context, key idKey) (*ParsedSchema, error) {
	text, err := r.registry.GetSchemaByID(ctx, key.id)
	if err != nil {
		r.logLookupFailure(ctx, key.subject, err)
		return nil, err
	}
	metadata, err := r.registry.LookupSchema(ctx, key.subject, text)
	if err != nil {
		r.logLookupFailure(ctx, key.subject, err)
		return nil, err
	}
	return parse(metadata.ID, metadata.Version, text)
}

func (r *Retriever) fetchByVersion(ctx context.Context, key versionKey) (*ParsedSchema, error) {
	metadata, err := r.registry.GetSchemaByVersion(ctx, key.subject, key.version)
	if err != nil {
		r.logLookupFailure(ctx, key.subject, err)
		return nil, err
	}
	return parse(metadata.ID, metadata.Version, metadata.Schema)
}

func parse(id, version int, text string) (*ParsedSchema, error) {
	codec, err := avro.ParseCodec(text)
	if err != nil {
		return nil, fmt.Errorf("schema %d: %w", id, err)
	}
	return &ParsedSchema{ID: id, Version: version, Schema: codec.Schema(), Codec: codec}, nil
}

// CleanStale removes every cached lookup that has not been refreshed for two
// refresh windows and returns how many were removed.
func (r *Retriever) CleanStale() int {
	start := time.Now()
	removed := r.byID.CleanStale() + r.byVersion.CleanStale()
	r.observeOperation("clean_stale", "retriever", "", time.Since(start), nil, map[string]interface{}{
		"removed": removed,
	})
	return removed
}

// Start runs CleanStale every Config.CleanInterval until Stop is called.
func (r *Retriever) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.cfg.CleanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.CleanStale()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop started by Start and waits for it to exit.
func (r *Retriever) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stop) })
	if !r.started.Load() {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Retriever) logLookupFailure(ctx context.Context, subject string, err error) {
	if r.logger != nil {
		r.logger.WarnWithContext(ctx, "Schema lookup failed", err, map[string]interface{}{
			"subject": subject,
		})
	}
}
