package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// ErrSchemaNotFound is wrapped by every lookup that the registry answers with 404.
var ErrSchemaNotFound = errors.New("schema not found")

// Registry provides an interface for interacting with a Confluent Schema Registry.
type Registry interface {
	// GetSchemaByID retrieves a schema by its ID
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// GetSchemaByVersion retrieves a version of a subject. Versions below 1
	// select the latest version.
	GetSchemaByVersion(ctx context.Context, subject string, version int) (*Metadata, error)

	// GetLatestSchema retrieves the latest version of a schema for a subject
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// LookupSchema finds the registered version of schema under subject
	LookupSchema(ctx context.Context, subject, schema string) (*Metadata, error)

	// RegisterSchema registers a new schema for a subject
	RegisterSchema(ctx context.Context, subject, schema string) (int, error)
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
}

// StatusError is returned when the registry answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schema registry returned status %d: %s", e.StatusCode, e.Body)
}

// Is matches ErrSchemaNotFound for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrSchemaNotFound && e.StatusCode == http.StatusNotFound
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
type Client struct {
	url        string
	httpClient *http.Client

	// schema ids are immutable, so both caches only grow
	schemas sync.Map // int -> string
	ids     sync.Map // subject + ":" + schema -> int

	// Authentication
	username string
	password string

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}
	config = config.withDefaults()

	return &Client{
		url: strings.TrimSuffix(config.URL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		username: config.Username,
		password: config.Password,
	}, nil
}

// do sends a request to path and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to reach schema registry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusMetadata(err error, metadata map[string]interface{}) map[string]interface{} {
	var se *StatusError
	if errors.As(err, &se) {
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		metadata["status_code"] = se.StatusCode
	}
	return metadata
}

// GetSchemaByID retrieves a schema from the registry by its ID
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	start := time.Now()
	idStr := strconv.Itoa(id)

	if schema, ok := c.schemas.Load(id); ok {
		c.observeOperation("get_schema_by_id", "registry", idStr, time.Since(start), nil, map[string]interface{}{
			"cache_hit": true,
		})
		return schema.(string), nil
	}

	var result struct {
		Schema string `json:"schema"`
	}
	err := c.do(ctx, http.MethodGet, "/schemas/ids/"+idStr, nil, &result)
	c.observeOperation("get_schema_by_id", "registry", idStr, time.Since(start), err, statusMetadata(err, map[string]interface{}{
		"cache_hit": false,
	}))
	if err != nil {
		return "", err
	}

	c.schemas.Store(id, result.Schema)
	return result.Schema, nil
}

// GetSchemaByVersion retrieves a version of a subject, the latest when version < 1
func (c *Client) GetSchemaByVersion(ctx context.Context, subject string, version int) (*Metadata, error) {
	start := time.Now()
	v := "latest"
	if version > 0 {
		v = strconv.Itoa(version)
	}

	var metadata Metadata
	err := c.do(ctx, http.MethodGet, "/subjects/"+url.PathEscape(subject)+"/versions/"+v, nil, &metadata)
	c.observeOperation("get_schema_by_version", subject, v, time.Since(start), err, statusMetadata(err, nil))
	if err != nil {
		return nil, err
	}
	metadata.Subject = subject

	c.schemas.Store(metadata.ID, metadata.Schema)
	return &metadata, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	return c.GetSchemaByVersion(ctx, subject, 0)
}

// LookupSchema returns the id and version under which schema is registered
// in subject.
func (c *Client) LookupSchema(ctx context.Context, subject, schema string) (*Metadata, error) {
	start := time.Now()

	var metadata Metadata
	err := c.do(ctx, http.MethodPost, "/subjects/"+url.PathEscape(subject), map[string]interface{}{
		"schema": schema,
	}, &metadata)
	c.observeOperation("lookup_schema", subject, "", time.Since(start), err, statusMetadata(err, nil))
	if err != nil {
		return nil, err
	}
	metadata.Subject = subject
	return &metadata, nil
}

// RegisterSchema registers a new Avro schema with the schema registry
func (c *Client) RegisterSchema(ctx context.Context, subject, schema string) (int, error) {
	start := time.Now()

	cacheKey := subject + ":" + schema
	if id, ok := c.ids.Load(cacheKey); ok {
		c.observeOperation("register_schema", subject, strconv.Itoa(id.(int)), time.Since(start), nil, map[string]interface{}{
			"cache_hit": true,
		})
		return id.(int), nil
	}

	var result struct {
		ID int `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/subjects/"+url.PathEscape(subject)+"/versions", map[string]interface{}{
		"schema": schema,
	}, &result)
	c.observeOperation("register_schema", subject, strconv.Itoa(result.ID), time.Since(start), err, statusMetadata(err, map[string]interface{}{
		"cache_hit": false,
	}))
	if err != nil {
		c.logWarn(ctx, "Failed to register schema", err, map[string]interface{}{"subject": subject})
		return 0, err
	}

	c.ids.Store(cacheKey, result.ID)
	return result.ID, nil
}

// WithObserver sets the observer receiving registry request events.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithLogger sets the logger for this client and returns the client for method chaining.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.WarnWithContext(ctx, msg, err, fields)
	}
}
