// Package registrytest provides an in-memory schema registry for tests.
package registrytest

import (
	"context"
	"net/http"
	"sync"

	"github.com/aalemi-dev/kafka-gateway/schema_registry"
)

// Registry is an in-memory schema_registry.Registry. Ids are assigned in
// registration order starting at 1 and shared across subjects, as in a real
// registry.
type Registry struct {
	mu       sync.Mutex
	schemas  []string         // id-1 -> schema text
	subjects map[string][]int // subject -> ids by version-1
	calls    int
}

var _ schema_registry.Registry = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{subjects: make(map[string][]int)}
}

// Add registers schema under subject and returns its id.
func (r *Registry) Add(subject, schema string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(subject, schema)
}

func (r *Registry) addLocked(subject, schema string) int {
	id := 0
	for i, s := range r.schemas {
		if s == schema {
			id = i + 1
			break
		}
	}
	if id == 0 {
		r.schemas = append(r.schemas, schema)
		id = len(r.schemas)
	}
	for _, existing := range r.subjects[subject] {
		if existing == id {
			return id
		}
	}
	r.subjects[subject] = append(r.subjects[subject], id)
	return id
}

// Calls returns how many requests the registry has served.
func (r *Registry) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func notFound() error {
	return &schema_registry.StatusError{StatusCode: http.StatusNotFound, Body: `{"error_code":40403}`}
}

func (r *Registry) GetSchemaByID(_ context.Context, id int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if id < 1 || id > len(r.schemas) {
		return "", notFound()
	}
	return r.schemas[id-1], nil
}

func (r *Registry) GetSchemaByVersion(_ context.Context, subject string, version int) (*schema_registry.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	ids := r.subjects[subject]
	if len(ids) == 0 || version > len(ids) {
		return nil, notFound()
	}
	if version < 1 {
		version = len(ids)
	}
	id := ids[version-1]
	return &schema_registry.Metadata{ID: id, Version: version, Schema: r.schemas[id-1], Subject: subject}, nil
}

func (r *Registry) GetLatestSchema(ctx context.Context, subject string) (*schema_registry.Metadata, error) {
	return r.GetSchemaByVersion(ctx, subject, 0)
}

func (r *Registry) LookupSchema(_ context.Context, subject, schema string) (*schema_registry.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for v, id := range r.subjects[subject] {
		if r.schemas[id-1] == schema {
			return &schema_registry.Metadata{ID: id, Version: v + 1, Schema: schema, Subject: subject}, nil
		}
	}
	return nil, notFound()
}

func (r *Registry) RegisterSchema(_ context.Context, subject, schema string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.addLocked(subject, schema), nil
}
