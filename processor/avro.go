package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/avro"
	"github.com/aalemi-dev/kafka-gateway/cache"
	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
)

// mapping converts records written with a client schema into records of the
// latest registered schema.
type mapping struct {
	source *avro.Schema
	target *schema_registry.ParsedSchema
	same   bool
}

func (m *mapping) convert(value interface{}, ctx *avro.ParsingContext) (map[string]interface{}, error) {
	if !m.same {
		if _, err := avro.MapRecord(value, m.source, ctx); err != nil {
			return nil, err
		}
	}
	return avro.MapRecord(value, m.target.Schema, ctx)
}

type idMappingKey struct {
	subject string
	id      int
}

type textMappingKey struct {
	subject string
	text    string
}

// AvroProcessor reads Avro JSON payloads of the form
//
//	{"key_schema_id": 1, "value_schema": "...", "records": [{"key": {...}, "value": {...}}]}
//
// Records are validated against the schema the client names and published
// with the latest schema of the topic.
type AvroProcessor struct {
	schemas  SchemaSource
	pipeline *Pipeline
	cfg      Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	byID   *cache.Map[idMappingKey, *mapping]
	byText *cache.Map[textMappingKey, *mapping]

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewAvroProcessor creates a processor resolving schemas from schemas.
func NewAvroProcessor(cfg Config, schemas SchemaSource, pipeline *Pipeline, opts ...cache.Option) *AvroProcessor {
	cfg = cfg.withDefaults()
	return &AvroProcessor{
		schemas:  schemas,
		pipeline: pipeline,
		cfg:      cfg,
		byID:     cache.NewMap[idMappingKey, *mapping](cfg.MappingRefresh, cfg.MappingRetry, opts...),
		byText:   cache.NewMap[textMappingKey, *mapping](cfg.MappingRefresh, cfg.MappingRetry, opts...),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// WithObserver sets the observer used for processing events.
func (p *AvroProcessor) WithObserver(observer observability.Observer) *AvroProcessor {
	p.observer = observer
	return p
}

// WithLogger sets the logger used for schema resolution failures.
func (p *AvroProcessor) WithLogger(logger Logger) *AvroProcessor {
	p.logger = logger
	return p
}

// Process implements RecordProcessor.
func (p *AvroProcessor) Process(ctx context.Context, topic string, caller *auth.Auth, body io.Reader) (result *Result, err error) {
	start := time.Now()
	defer func() {
		var n int64
		if result != nil {
			n = int64(len(result.Batch.Records))
		}
		p.observeOperation("process_json", topic, time.Since(start), err, n, nil)
	}()

	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	if payload["key_schema_id"] == nil && payload["key_schema"] == nil {
		return nil, apperr.InvalidContent("Missing key schema")
	}
	if payload["value_schema_id"] == nil && payload["value_schema"] == nil {
		return nil, apperr.InvalidContent("Missing value schema")
	}

	var keyMapping, valueMapping *mapping
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		keyMapping, err = p.schemaMapping(gctx, topic, false, payload["key_schema_id"], payload["key_schema"])
		return err
	})
	g.Go(func() (err error) {
		valueMapping, err = p.schemaMapping(gctx, topic, true, payload["value_schema_id"], payload["value_schema"])
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw, ok := payload["records"]
	if !ok || raw == nil {
		return nil, apperr.InvalidContent("Missing records")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, apperr.InvalidContent("Records should be an array")
	}

	records, err := p.pipeline.Process(ctx, topic, caller, func(yield func(Entry) error) error {
		for i, r := range list {
			entry, err := p.mapRecord(i, r, caller, keyMapping, valueMapping)
			if err != nil {
				return err
			}
			if err := yield(entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(topic, keyMapping.target, valueMapping.target, records), nil
}

func decodePayload(body io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var root interface{}
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.BadRequest("missing_body", "Missing contents in body")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.EntityTooLarge("Request body is too large")
		}
		return nil, apperr.BadRequest("malformed_json", "Cannot parse JSON payload").WithCause(err)
	}
	payload, ok := root.(map[string]interface{})
	if !ok {
		return nil, apperr.InvalidContent("Expecting JSON object in payload")
	}
	return payload, nil
}

func (p *AvroProcessor) mapRecord(i int, raw interface{}, caller *auth.Auth, keyMapping, valueMapping *mapping) (Entry, error) {
	ctx := avro.NewContext(avro.Array, fmt.Sprintf("records[%d]", i))
	record, _ := raw.(map[string]interface{})

	key, ok := record["key"]
	if !ok || key == nil {
		return Entry{}, ctx.InvalidContent("Missing key field in record")
	}
	value, ok := record["value"]
	if !ok || value == nil {
		return Entry{}, ctx.InvalidContent("Missing value field in record")
	}

	keyCtx := ctx.Child(avro.Map, "key")
	keyObject, ok := key.(map[string]interface{})
	if !ok {
		return Entry{}, keyCtx.InvalidContent("Field key must be a JSON object")
	}
	identity, err := keyIdentity(keyObject, caller, keyCtx)
	if err != nil {
		return Entry{}, err
	}
	keyRecord, err := keyMapping.convert(keyObject, keyCtx)
	if err != nil {
		return Entry{}, err
	}

	valueCtx := ctx.Child(avro.Map, "value")
	valueObject, ok := value.(map[string]interface{})
	if !ok {
		return Entry{}, valueCtx.InvalidContent("Field value must be a JSON object")
	}
	valueRecord, err := valueMapping.convert(valueObject, valueCtx)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Key: keyRecord, Value: valueRecord, Identity: identity}, nil
}

// keyIdentity reads the identity of a JSON key. A missing project is filled
// in with the default project of caller.
func keyIdentity(key map[string]interface{}, caller *auth.Auth, ctx *avro.ParsingContext) (*auth.EntityDetails, error) {
	d := &auth.EntityDetails{
		UserID:   scalarText(key["userId"]),
		SourceID: scalarText(key["sourceId"]),
	}

	switch project := key["projectId"].(type) {
	case nil:
		if caller != nil && caller.DefaultProject != "" {
			p := caller.DefaultProject
			d.ProjectID = &p
			key["projectId"] = p
		}
	case string:
		d.ProjectID = &project
	case map[string]interface{}:
		s, ok := project["string"].(string)
		if !ok || len(project) != 1 {
			return nil, ctx.Child(avro.Union, "projectId").InvalidContent("Project ID should be wrapped in string union type")
		}
		d.ProjectID = &s
	default:
		return nil, ctx.Child(avro.Union, "projectId").InvalidContent("Project ID should be wrapped in string union type")
	}
	return d, nil
}

// scalarText returns the text of a JSON scalar or single branch union, or
// nil when v is absent or null.
func scalarText(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	case map[string]interface{}:
		if len(t) != 1 {
			return nil
		}
		for _, branch := range t {
			return scalarText(branch)
		}
	default:
		return nil
	}
	return &s
}

func (p *AvroProcessor) schemaMapping(ctx context.Context, topic string, ofValue bool, id, text interface{}) (*mapping, error) {
	subject := schema_registry.Subject(topic, ofValue)

	if n, ok := id.(json.Number); ok {
		schemaID, err := strconv.Atoi(n.String())
		if err != nil {
			return nil, apperr.InvalidContentf("Schema ID %s of %s is not an integer", n, subject)
		}
		return p.byID.Get(ctx, idMappingKey{subject: subject, id: schemaID}, func(ctx context.Context) (*mapping, error) {
			source, err := p.schemas.BySubjectAndID(ctx, topic, ofValue, schemaID)
			if err != nil {
				return nil, p.registryError(ctx, subject, err)
			}
			return p.newMapping(ctx, topic, ofValue, source.Schema, source.ID)
		})
	}

	if s, ok := text.(string); ok {
		return p.byText.Get(ctx, textMappingKey{subject: subject, text: s}, func(ctx context.Context) (*mapping, error) {
			source, err := avro.ParseSchema(s)
			if err != nil {
				return nil, apperr.New(apperr.KindInvalidContent, http.StatusUnprocessableEntity,
					"invalid_schema", fmt.Sprintf("Schema of %s is not a valid Avro schema", subject)).WithCause(err)
			}
			return p.newMapping(ctx, topic, ofValue, source, 0)
		})
	}

	return nil, apperr.InvalidContentf("No schema provided for %s", subject)
}

func (p *AvroProcessor) newMapping(ctx context.Context, topic string, ofValue bool, source *avro.Schema, sourceID int) (*mapping, error) {
	target, err := p.schemas.BySubjectAndVersion(ctx, topic, ofValue, 0)
	if err != nil {
		return nil, p.registryError(ctx, schema_registry.Subject(topic, ofValue), err)
	}
	if target.Schema.Type != avro.Record {
		return nil, apperr.InvalidContentf("Latest schema of %s is not a record", schema_registry.Subject(topic, ofValue))
	}
	return &mapping{
		source: source,
		target: target,
		same:   sourceID == target.ID || source.Text() == target.Schema.Text(),
	}, nil
}

func (p *AvroProcessor) registryError(ctx context.Context, subject string, err error) error {
	if errors.Is(err, schema_registry.ErrSchemaNotFound) {
		return apperr.New(apperr.KindInvalidContent, http.StatusUnprocessableEntity,
			"schema_not_found", "Schema ID not found in subject").WithCause(err)
	}
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}
	if p.logger != nil {
		p.logger.ErrorWithContext(ctx, "Cannot resolve schema", err, map[string]interface{}{
			"subject": subject,
		})
	}
	return apperr.BadGateway("Cannot get data from schema registry").WithCause(err)
}

// CleanStale removes schema mappings that were not used for two refresh
// windows and returns how many were removed.
func (p *AvroProcessor) CleanStale() int {
	start := time.Now()
	removed := p.byID.CleanStale() + p.byText.CleanStale()
	p.observeOperation("clean_stale", "mappings", time.Since(start), nil, int64(removed), nil)
	return removed
}

// Start runs CleanStale every Config.CleanInterval until Stop is called.
func (p *AvroProcessor) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.cfg.CleanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.CleanStale()
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop started by Start and waits for it to exit.
func (p *AvroProcessor) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	if !p.started.Load() {
		return nil
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
