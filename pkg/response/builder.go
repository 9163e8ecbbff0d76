// Package response builds the JSON envelope shared by the gRPC and REST surfaces.
package response

import "net/http"

// Status codes carried in BaseResponse.StatusCode.
const (
	StatusSuccess        = "200"
	StatusCreated        = "201"
	StatusBadRequest     = "400"
	StatusUnauthorized   = "401"
	StatusForbidden      = "403"
	StatusNotFound       = "404"
	StatusConflict       = "409"
	StatusTooManyRequest = "429"
	StatusInternalError  = "500"
	StatusServiceUnavail = "503"
)

// ValidationError is a single field-level problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BaseResponse is the status block of every envelope.
type BaseResponse struct {
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
	StatusCode       string            `json:"status_code"`
	IsSuccess        bool              `json:"is_success"`
	Message          string            `json:"message"`
}

// Envelope wraps a payload together with its status block.
type Envelope struct {
	Base BaseResponse `json:"base"`
	Data interface{}  `json:"data,omitempty"`
}

// Wrap builds an envelope.
func Wrap(base BaseResponse, data interface{}) Envelope {
	return Envelope{Base: base, Data: data}
}

func build(code string, ok bool, message string) BaseResponse {
	return BaseResponse{StatusCode: code, IsSuccess: ok, Message: message}
}

// Success reports a completed operation.
func Success(message string) BaseResponse { return build(StatusSuccess, true, message) }

// Created reports a newly created resource.
func Created(message string) BaseResponse { return build(StatusCreated, true, message) }

// BadRequest reports malformed input.
func BadRequest(message string) BaseResponse { return build(StatusBadRequest, false, message) }

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) BaseResponse { return build(StatusUnauthorized, false, message) }

// Forbidden reports a missing permission.
func Forbidden(message string) BaseResponse { return build(StatusForbidden, false, message) }

// NotFound reports a missing resource.
func NotFound(message string) BaseResponse { return build(StatusNotFound, false, message) }

// Conflict reports a uniqueness or state conflict.
func Conflict(message string) BaseResponse { return build(StatusConflict, false, message) }

// TooManyRequests reports a rate limit rejection.
func TooManyRequests(message string) BaseResponse {
	return build(StatusTooManyRequest, false, message)
}

// InternalError reports an unexpected failure.
func InternalError(message string) BaseResponse { return build(StatusInternalError, false, message) }

// ServiceUnavailable reports a dependency outage.
func ServiceUnavailable(message string) BaseResponse {
	return build(StatusServiceUnavail, false, message)
}

// ValidationFailed reports one or more field errors.
func ValidationFailed(errors []ValidationError) BaseResponse {
	base := build(StatusBadRequest, false, "Validation failed")
	base.ValidationErrors = errors
	return base
}

// HTTPStatus maps the envelope status code to an HTTP status.
func (b BaseResponse) HTTPStatus() int {
	switch b.StatusCode {
	case StatusSuccess:
		return http.StatusOK
	case StatusCreated:
		return http.StatusCreated
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusTooManyRequest:
		return http.StatusTooManyRequests
	case StatusServiceUnavail:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
