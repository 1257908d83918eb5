package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/recordset"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
)

// BinaryConverter reads binary record sets. The schemas are selected by the
// versions in the record set header; records are published with those
// versions unchanged.
type BinaryConverter struct {
	schemas  SchemaSource
	pipeline *Pipeline
	decoders sync.Pool

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger
}

// NewBinaryConverter creates a converter resolving schemas from schemas.
func NewBinaryConverter(schemas SchemaSource, pipeline *Pipeline) *BinaryConverter {
	return &BinaryConverter{
		schemas:  schemas,
		pipeline: pipeline,
		decoders: sync.Pool{New: func() interface{} { return recordset.NewDecoder() }},
	}
}

// WithObserver sets the observer used for processing events.
func (c *BinaryConverter) WithObserver(observer observability.Observer) *BinaryConverter {
	c.observer = observer
	return c
}

// WithLogger sets the logger used for schema resolution failures.
func (c *BinaryConverter) WithLogger(logger Logger) *BinaryConverter {
	c.logger = logger
	return c
}

// Process implements RecordProcessor. A project or user missing from the
// header is taken from caller.
func (c *BinaryConverter) Process(ctx context.Context, topic string, caller *auth.Auth, body io.Reader) (result *Result, err error) {
	start := time.Now()
	defer func() {
		var n int64
		if result != nil {
			n = int64(len(result.Batch.Records))
		}
		c.observeOperation("process_binary", topic, time.Since(start), err, n)
	}()

	d := c.decoders.Get().(*recordset.Decoder)
	defer func() {
		d.Reset(nil)
		c.decoders.Put(d)
	}()

	header, err := d.Decode(body)
	if err != nil {
		return nil, contentError(err)
	}

	var keySchema, valueSchema *schema_registry.ParsedSchema
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		keySchema, err = c.schemaVersion(gctx, topic, false, header.KeyVersion)
		return err
	})
	g.Go(func() (err error) {
		valueSchema, err = c.schemaVersion(gctx, topic, true, header.ValueVersion)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	identity := &auth.EntityDetails{
		ProjectID: header.ProjectID,
		UserID:    header.UserID,
		SourceID:  &header.SourceID,
	}
	if identity.ProjectID == nil && caller != nil && caller.DefaultProject != "" {
		p := caller.DefaultProject
		identity.ProjectID = &p
	}
	if identity.UserID == nil && caller != nil && caller.UserID != "" {
		u := caller.UserID
		identity.UserID = &u
	}

	if (identity.ProjectID == nil || identity.UserID == nil) && caller != nil {
		// reports the missing identity field before key mapping does
		if err := caller.CheckPermission(ctx, identity, "POST "+topic); err != nil {
			return nil, err
		}
	}

	key, err := recordset.BuildKey(keySchema.Schema, identity.ProjectID, identity.UserID, header.SourceID)
	if err != nil {
		return nil, err
	}

	values, err := d.Records(valueSchema.ID, valueSchema.Codec)
	if err != nil {
		return nil, contentError(err)
	}

	records, err := c.pipeline.Process(ctx, topic, caller, func(yield func(Entry) error) error {
		for values.More() {
			v, err := values.Next()
			if err != nil {
				return contentError(err)
			}
			if err := yield(Entry{Key: key, Value: v, Identity: identity}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(topic, keySchema, valueSchema, records), nil
}

func (c *BinaryConverter) schemaVersion(ctx context.Context, topic string, ofValue bool, version int) (*schema_registry.ParsedSchema, error) {
	s, err := c.schemas.BySubjectAndVersion(ctx, topic, ofValue, version)
	if err == nil {
		return s, nil
	}
	subject := schema_registry.Subject(topic, ofValue)
	if errors.Is(err, schema_registry.ErrSchemaNotFound) {
		return nil, apperr.New(apperr.KindInvalidContent, http.StatusBadRequest, "schema_not_found",
			fmt.Sprintf("Schema version %d not found in subject %s", version, subject)).WithCause(err)
	}
	if appErr, ok := apperr.As(err); ok {
		return nil, appErr
	}
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, "Cannot resolve schema", err, map[string]interface{}{
			"subject": subject,
			"version": version,
		})
	}
	return nil, apperr.BadGateway("Cannot get data from schema registry").WithCause(err)
}

// contentError maps record set framing errors to a 400 response, or to 413
// when the body was cut off by the request size limit.
func contentError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.EntityTooLarge("Request body is too large").WithCause(err)
	}
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}
	return apperr.New(apperr.KindInvalidContent, http.StatusBadRequest, "bad_content",
		"Content is not a valid binary record set").WithCause(err)
}
