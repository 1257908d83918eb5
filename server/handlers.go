package server

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/processor"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// Accepted request content types.
const (
	ContentTypeJSON         = "application/json"
	ContentTypeKafkaJSON    = "application/vnd.kafka.v1+json"
	ContentTypeKafkaJSONV2  = "application/vnd.kafka.v2+json"
	ContentTypeAvroJSON     = "application/vnd.kafka.avro.v1+json"
	ContentTypeAvroJSONV2   = "application/vnd.kafka.avro.v2+json"
	ContentTypeBinary       = "application/vnd.radarbase.avro.v1+binary"
	ContentTypeBinaryLegacy = "application/vnd.radarbase.avro+binary"
)

var acceptedTypes = strings.Join([]string{
	ContentTypeAvroJSONV2, ContentTypeAvroJSON, ContentTypeKafkaJSONV2, ContentTypeKafkaJSON,
	ContentTypeJSON, ContentTypeBinary,
}, ", ")

type healthResponse struct {
	Status string `json:"status"`
	Kafka  string `json:"kafka"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "UP", Kafka: "UNKNOWN"})
		return
	}
	if err := s.deps.Health.Healthy(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "DOWN", Kafka: "DOWN", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "UP", Kafka: "UP"})
}

func (s *Server) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.deps.Topics.Topics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) topicInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.deps.Topics.TopicInfo(r.Context(), chi.URLParam(r, "topic"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) topicOptions(w http.ResponseWriter, _ *http.Request) {
	h := w.Header()
	h.Set("Accept", acceptedTypes)
	h.Set("Accept-Encoding", "gzip, lzfse")
	h.Set("Accept-Charset", "utf-8")
	h.Set("Allow", "HEAD, GET, POST, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

// publish converts the body with the processor matching its content type and
// sends the records to Kafka.
func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topic := chi.URLParam(r, "topic")
	caller, ok := auth.FromContext(ctx)
	if !ok {
		s.writeError(w, r, apperr.Unauthorized("token_missing", "No bearer token is provided in the request."))
		return
	}

	proc, err := s.processorFor(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := proc.Process(ctx, topic, caller, r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.send(ctx, result.Batch); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) send(ctx context.Context, batch kafka.Batch) (err error) {
	if len(batch.Records) == 0 {
		return nil
	}
	if s.tracer != nil {
		var span tracer.Span
		ctx, span = s.tracer.StartSpan(ctx, "kafka.publish")
		defer func() {
			span.SetAttributes(map[string]interface{}{
				"messaging.destination": batch.Topic,
				"records":               len(batch.Records),
			})
			if err != nil {
				span.RecordError(err)
			}
			span.End()
		}()
	}
	return s.deps.Publisher.Publish(ctx, batch)
}

func (s *Server) processorFor(contentType string) (processor.RecordProcessor, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case ContentTypeJSON, ContentTypeKafkaJSON, ContentTypeKafkaJSONV2, ContentTypeAvroJSON, ContentTypeAvroJSONV2:
		return s.deps.JSON, nil
	case ContentTypeBinary, ContentTypeBinaryLegacy:
		return s.deps.Binary, nil
	default:
		return nil, apperr.New(apperr.KindBadRequest, http.StatusUnsupportedMediaType, "unsupported_media_type",
			"Content-Type must be one of "+acceptedTypes)
	}
}
