package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: errMethodNotAllowed})
}

// returnErrorResponse logs err, marks the span failed and writes {"error": message}
func returnErrorResponse(w http.ResponseWriter, r *http.Request, logger *zap.Logger, metrics *CloudWatchMetrics, err error) {
	status := statusFor(err)
	requestID := getRequestID(r.Context())
	span := trace.SpanFromContext(r.Context())
	traceID := span.SpanContext().TraceID().String()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("trace_id", traceID),
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status_code", status),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
		go metrics.sendErrorMetric("backend_error")
	} else {
		logger.Warn("Request rejected", fields...)
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// lastPathSegment returns the trailing segment of the request path. A path
// ending in "/" yields "".
func lastPathSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// identifier returns the trailing path segment unless it names the collection itself.
func identifier(r *http.Request, collection string) string {
	seg := lastPathSegment(r.URL.Path)
	if seg == collection {
		return ""
	}
	return seg
}

// parseID parses a numeric row identifier taken from the path.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid ID")
	}
	return id, nil
}

// decodeJSON decodes the request body into v, rejecting unknown fields when strict is set.
func decodeJSON(r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return tooLarge("File too large")
		case errors.Is(err, io.EOF):
			return badRequest("Request body is empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return badRequest("Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return badRequest("Invalid JSON body")
		}
	}
	return nil
}

// validatePayload runs struct tag validation on a create payload.
func validatePayload(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return badRequest("Missing required fields")
		}
		return err
	}
	return nil
}
