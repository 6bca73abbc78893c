// Package http provides HTTP server and handler implementations.
//
// This file implements the JSON envelopes shared by every endpoint and the
// single place where service errors become HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

const (
	MsgValidationFailed    = "Validation failed"
	MsgInternalServerError = "Internal server error"
	MsgMalformedBody       = "Malformed request body"
	MsgTooManyRequests     = "Too many requests. Please try again later."
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    map[string]any
	raw        any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		payload:    make(map[string]any),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Message sets the "message" member.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Field("message", msg)
}

// Data sets the "data" member.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	return b.Field("data", v)
}

// Field sets an arbitrary top-level member.
func (b *JSONResponseBuilder) Field(name string, v any) *JSONResponseBuilder {
	b.payload[name] = v
	return b
}

// Body replaces the envelope with v, encoded as-is.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.raw = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	var body any = b.payload
	if b.raw != nil {
		body = b.raw
	}
	_ = json.NewEncoder(w).Encode(body)
}

// DataResponse is 200 {data}.
func DataResponse(data any) *JSONResponseBuilder {
	return NewJSONResponse().Data(data)
}

// CreatedResponse is 201 {message, data}.
func CreatedResponse(message string, data any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Message(message).Data(data)
}

// UpdatedResponse is 200 {message, data}.
func UpdatedResponse(message string, data any) *JSONResponseBuilder {
	return NewJSONResponse().Message(message).Data(data)
}

// MessageResponse is {message} with the given status.
func MessageResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// ValidationErrorResponse is 422 {message, errors}.
func ValidationErrorResponse(ve *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Message(MsgValidationFailed).
		Field("errors", ve.Fields)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return MessageResponse(http.StatusNotFound, message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return MessageResponse(http.StatusBadRequest, message)
}

// ErrorWriter maps service errors onto response envelopes. Debug controls
// whether internal error detail reaches the client.
type ErrorWriter struct {
	Debug bool
}

// InternalError creates a 500 {message, error} response.
func (e ErrorWriter) InternalError(message string, err error) *JSONResponseBuilder {
	detail := MsgInternalServerError
	if e.Debug && err != nil {
		detail = err.Error()
	}
	return MessageResponse(http.StatusInternalServerError, message).Field("error", detail)
}

// Write classifies err and writes the matching envelope. notFound is the
// 404 message and failure the 500 message for the calling operation.
func (e ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	var ve *core.ValidationError
	var ce *core.ConflictError

	switch {
	case errors.As(err, &ve):
		ValidationErrorResponse(ve).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFound).Write(w)
	case errors.As(err, &ce):
		BadRequestError(ce.Message).Write(w)
	case errors.Is(err, core.ErrConflict):
		BadRequestError(err.Error()).Write(w)
	default:
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).Error(failure,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		e.InternalError(failure, err).Write(w)
	}
}
