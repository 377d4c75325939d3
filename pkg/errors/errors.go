package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeStaleWrite         Code = "STALE_WRITE"
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeSignatureMismatch  Code = "SIGNATURE_MISMATCH"
	CodeRateLimit          Code = "RATE_LIMIT_EXCEEDED"
	CodePaymentGateway     Code = "PAYMENT_GATEWAY_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Metadata describes how a code is surfaced to API clients.
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// ExposeMessage allows the error's own message to replace PublicMessage.
	ExposeMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Invalid data",
		ExposeMessage: true,
	},
	CodeInvalidCredentials: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Invalid credentials",
		ExposeMessage: true,
	},
	CodeUnauthenticated: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Access denied. No token provided.",
		ExposeMessage: true,
	},
	CodeInvalidToken: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Invalid token",
		ExposeMessage: true,
	},
	CodeTokenExpired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Token expired",
		ExposeMessage: true,
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "Access denied",
		ExposeMessage: true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "Resource not found",
		ExposeMessage: true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Resource already exists",
		ExposeMessage: true,
	},
	CodeStaleWrite: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "Resource was modified concurrently",
		ExposeMessage: true,
	},
	CodeEmptyCart: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Cart is empty",
		ExposeMessage: true,
	},
	CodeSignatureMismatch: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Payment verification failed",
		ExposeMessage: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "Too many requests",
		ExposeMessage: false,
	},
	CodePaymentGateway: {
		HTTPStatus:    http.StatusBadGateway,
		PublicMessage: "Payment gateway unavailable",
		ExposeMessage: true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "Server error",
		ExposeMessage: false,
	},
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
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// PublicMessage is the text that may be shown to an API client.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.Code())
	if meta.ExposeMessage && e.Message() != "" {
		return e.Message()
	}
	return meta.PublicMessage
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

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func Internal(err error, message string) *Error {
	return Wrap(CodeInternal, err, message)
}
