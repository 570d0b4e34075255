// Package apperrors describes operational errors: failures that are expected
// during normal operation and are safe to show to the client as is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation            Kind = "validation"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindUnauthenticated       Kind = "unauthenticated"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindEmailDelivery         Kind = "email_delivery"
	KindTooManyRequests       Kind = "too_many_requests"
	KindPayloadTooLarge       Kind = "payload_too_large"
)

var statusByKind = map[Kind]int{
	KindValidation:            http.StatusBadRequest,
	KindInvalidCredentials:    http.StatusUnauthorized,
	KindUnauthenticated:       http.StatusUnauthorized,
	KindForbidden:             http.StatusForbidden,
	KindNotFound:              http.StatusNotFound,
	KindInvalidOrExpiredToken: http.StatusBadRequest,
	KindEmailDelivery:         http.StatusInternalServerError,
	KindTooManyRequests:       http.StatusTooManyRequests,
	KindPayloadTooLarge:       http.StatusRequestEntityTooLarge,
}

type AppError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is сравнивает по Kind, чтобы errors.Is(err, apperrors.Forbidden("")) работал в тестах.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// StatusText - "fail" для 4xx, "error" для 5xx.
func (e *AppError) StatusText() string {
	if e.Status >= 500 {
		return "error"
	}
	return "fail"
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Status: statusByKind[kind], Message: message, Err: err}
}

func Validation(message string) *AppError { return New(KindValidation, message, nil) }

func InvalidCredentials(message string) *AppError {
	return New(KindInvalidCredentials, message, nil)
}

func Unauthenticated(message string, err error) *AppError {
	return New(KindUnauthenticated, message, err)
}

func Forbidden(message string) *AppError { return New(KindForbidden, message, nil) }

func NotFound(message string) *AppError { return New(KindNotFound, message, nil) }

func InvalidOrExpiredToken(message string) *AppError {
	return New(KindInvalidOrExpiredToken, message, nil)
}

func EmailDelivery(message string, err error) *AppError {
	return New(KindEmailDelivery, message, err)
}

func TooManyRequests(message string) *AppError { return New(KindTooManyRequests, message, nil) }

func PayloadTooLarge(message string) *AppError { return New(KindPayloadTooLarge, message, nil) }

// As достаёт AppError из цепочки; ok=false значит непредвиденная ошибка.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
