package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aixiansheng/lzfse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

type readCloser struct {
	io.Reader
	io.Closer
}

// authenticate rejects requests without a valid bearer token and attaches
// the caller to the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.deps.Verifier.Authenticate(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), caller)))
	})
}

// requireTopic answers 404 for topics that do not exist in Kafka.
func (s *Server) requireTopic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		ok, err := s.deps.Topics.ContainsTopic(r.Context(), topic)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			s.writeError(w, r, apperr.NotFound("not_found", fmt.Sprintf("Topic %s not present in Kafka.", topic)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decompress unwraps gzip and lzfse request bodies.
func (s *Server) decompress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); encoding {
		case "", "identity":
			next.ServeHTTP(w, r)
			return
		case "gzip":
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				if errors.Is(err, io.EOF) {
					s.writeError(w, r, apperr.BadRequest("missing_body", "Missing contents in body"))
				} else {
					s.writeError(w, r, apperr.BadRequest("bad_content", "Cannot read gzip content").WithCause(err))
				}
				return
			}
			defer zr.Close()
			r.Body = readCloser{Reader: zr, Closer: r.Body}
		case "lzfse":
			r.Body = readCloser{Reader: lzfse.NewReader(r.Body), Closer: r.Body}
		default:
			s.writeError(w, r, apperr.BadRequest("unknown_encoding",
				fmt.Sprintf("Unsupported Content-Encoding %s", encoding)))
			return
		}
		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1
		next.ServeHTTP(w, r)
	})
}

// limitSize bounds the decompressed request body.
func (s *Server) limitSize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > s.cfg.MaxRequestSize {
			s.writeError(w, r, apperr.EntityTooLarge(
				fmt.Sprintf("Request body exceeds %d bytes", s.cfg.MaxRequestSize)))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// traceRequests continues the trace of the caller and starts one span per request.
func (s *Server) traceRequests(next http.Handler) http.Handler {
	if s.tracer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		carrier := make(map[string]string, len(r.Header))
		for name := range r.Header {
			carrier[strings.ToLower(name)] = r.Header.Get(name)
		}
		ctx := s.tracer.SetCarrierOnContext(r.Context(), carrier)
		ctx, span := s.tracer.StartSpan(ctx, "HTTP "+r.Method)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		span.SetAttributes(map[string]interface{}{
			"http.method":      r.Method,
			"http.route":       routePattern(r),
			"http.status_code": ww.Status(),
		})
		if ww.Status() >= http.StatusInternalServerError {
			span.RecordError(fmt.Errorf("HTTP status %d", ww.Status()))
		}
	})
}

// observeRequests writes the access log and request metrics.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.inFlight != nil {
			s.inFlight.Inc()
			defer s.inFlight.Dec()
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		route := routePattern(r)

		if s.requests != nil {
			s.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			s.latency.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		}
		if s.observer != nil {
			var err error
			if status >= http.StatusInternalServerError {
				err = fmt.Errorf("HTTP status %d", status)
			}
			s.observer.ObserveOperation(observability.OperationContext{
				Component: "server",
				Operation: r.Method,
				Resource:  route,
				Duration:  duration,
				Error:     err,
				Size:      int64(ww.BytesWritten()),
				Metadata:  map[string]interface{}{"status": status},
			})
		}
		if s.logger != nil {
			s.logger.InfoWithContext(r.Context(), "HTTP request", nil, map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": duration.Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
				"remote":      r.RemoteAddr,
			})
		}
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
