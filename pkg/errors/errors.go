package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

// Error codes double as the wire-level error strings the storefront has always
// returned, so the metadata table below is the whole HTTP contract.
const (
	CodeValidation         Code = "missing_fields"
	CodeDuplicateEmail     Code = "email_exists"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeUnauthorized       Code = "auth_required"
	CodeForbidden          Code = "admin_only"
	CodeNotFound           Code = "not_found"
	CodeRateLimit          Code = "too_many_requests"
	CodeInternal           Code = "internal_error"
	CodeDependency         Code = "dependency_error"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:         {HTTPStatus: http.StatusBadRequest, PublicMessage: "missing_fields"},
	CodeDuplicateEmail:     {HTTPStatus: http.StatusBadRequest, PublicMessage: "email_exists"},
	CodeInvalidCredentials: {HTTPStatus: http.StatusBadRequest, PublicMessage: "invalid_credentials"},
	CodeUnauthorized:       {HTTPStatus: http.StatusUnauthorized, PublicMessage: "auth_required"},
	CodeForbidden:          {HTTPStatus: http.StatusForbidden, PublicMessage: "admin_only"},
	CodeNotFound:           {HTTPStatus: http.StatusNotFound, PublicMessage: "not_found"},
	CodeRateLimit:          {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "too_many_requests"},
	CodeInternal:           {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal_error"},
	CodeDependency:         {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "dependency_error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Chain renders the full unwrap chain for structured logging.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = stdErrors.Unwrap(err)
	}
	return chain
}
