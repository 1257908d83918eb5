// Package logger is the gateway's structured logger, a thin layer over zap.
//
// Entries are JSON on stderr by default and always carry the service name
// and process id. Fields are passed as maps so components can depend on the
// small Logger interface instead of zap:
//
//	log, err := logger.NewLoggerClient(logger.Config{Level: logger.Info})
//	if err != nil {
//	    return err
//	}
//	log.Named("server").InfoWithContext(ctx, "HTTP request", nil, map[string]interface{}{
//	    "method": "POST",
//	    "route":  "/topics/{topic}",
//	    "status": 204,
//	})
//
// With EnableTracing, the *WithContext methods add trace_id and span_id of
// the span in ctx, which ties access logs to the request span started by the
// HTTP server.
//
// FXModule provides the client and the Logger interface to an fx
// application and syncs buffered entries on shutdown.
package logger
