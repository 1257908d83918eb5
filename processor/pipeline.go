package processor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// pendingChecks bounds how far record mapping may run ahead of authorization.
const pendingChecks = 64

// Entry is one mapped record and the identity it claims.
type Entry struct {
	Key      interface{}
	Value    interface{}
	Identity *auth.EntityDetails
}

// Source produces the entries of a request in order. It must stop and return
// the error of yield as soon as yield fails.
type Source func(yield func(Entry) error) error

// Pipeline maps records and authorizes their identities concurrently. Each
// distinct identity is checked once per request.
type Pipeline struct {
	checkSourceID bool

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	tracer tracer.Tracer
}

// NewPipeline creates a pipeline. When checkSourceID is false source ids are
// left out of the authorized identity.
func NewPipeline(checkSourceID bool) *Pipeline {
	return &Pipeline{checkSourceID: checkSourceID}
}

// WithObserver sets the observer used for authorization events.
func (p *Pipeline) WithObserver(observer observability.Observer) *Pipeline {
	p.observer = observer
	return p
}

// WithLogger sets the logger used for rejected records.
func (p *Pipeline) WithLogger(logger Logger) *Pipeline {
	p.logger = logger
	return p
}

// WithTracer wraps every run in a span.
func (p *Pipeline) WithTracer(t tracer.Tracer) *Pipeline {
	p.tracer = t
	return p
}

// Process collects the records of source while checker authorizes their
// identities. Either all records are returned or none: the first mapping or
// authorization failure cancels the other side and is returned.
func (p *Pipeline) Process(ctx context.Context, topic string, checker auth.PermissionChecker, source Source) (records []kafka.Record, err error) {
	start := time.Now()
	checks := 0
	if p.tracer != nil {
		var span tracer.Span
		ctx, span = p.tracer.StartSpan(ctx, "processor.process")
		defer func() {
			span.SetAttributes(map[string]interface{}{
				"messaging.destination": topic,
				"records":               len(records),
				"checks":                checks,
			})
			if err != nil {
				span.RecordError(err)
			}
			span.End()
		}()
	}
	defer func() {
		p.observeOperation("process", topic, time.Since(start), err, int64(len(records)), map[string]interface{}{
			"checks": checks,
		})
	}()

	operation := "POST " + topic
	ids := make(chan auth.AuthID, pendingChecks)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(ids)
		return source(func(e Entry) error {
			records = append(records, kafka.Record{Key: e.Key, Value: e.Value})
			id := e.Identity.ID()
			if !p.checkSourceID {
				id.Source, id.HasSource = "", false
			}
			select {
			case ids <- id:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		seen := make(map[auth.AuthID]struct{})
		for id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			checks++
			if err := checker.CheckPermission(gctx, id.Details(), operation); err != nil {
				if p.logger != nil {
					p.logger.WarnWithContext(ctx, "Record rejected", err, map[string]interface{}{
						"topic":   topic,
						"project": id.Project,
						"user":    id.User,
						"source":  id.Source,
					})
				}
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		records = nil
		return nil, err
	}
	return records, nil
}
