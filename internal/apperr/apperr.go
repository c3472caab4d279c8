// Package apperr defines the failure taxonomy returned by every public
// booking, settlement, gateway and withdrawal operation.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindAuthorization     Kind = "authorization"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindExternalService   Kind = "external_service"
	KindIntegrity         Kind = "integrity"
	KindInternal          Kind = "internal"
)

// Stable failure codes.
const (
	CodeInvalidDateRange   = "InvalidDateRange"
	CodeInvalidInput       = "InvalidInput"
	CodeRoomUnavailable    = "RoomUnavailable"
	CodeHotelNotApproved   = "HotelNotApproved"
	CodeNotFound           = "NotFound"
	CodeWalletNotFound     = "WalletNotFound"
	CodeForbidden          = "Forbidden"
	CodeUnauthenticated    = "Unauthenticated"
	CodeAlreadyProcessed   = "AlreadyProcessed"
	CodeInsufficientFunds  = "InsufficientFunds"
	CodeConfigMissing      = "ConfigMissing"
	CodeInvalidPercent     = "InvalidPercent"
	CodeInvalidSignature   = "InvalidSignature"
	CodeGatewayUnavailable = "GatewayUnavailable"
	CodeDuplicate          = "Duplicate"
	CodeInternal           = "Internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Forbidden(message string) *Error {
	return New(KindAuthorization, CodeForbidden, message)
}

func Unauthenticated() *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, "authentication required")
}

func InsufficientFunds() *Error {
	return New(KindInsufficientFunds, CodeInsufficientFunds, "insufficient wallet balance")
}

func AlreadyProcessed(what string) *Error {
	return New(KindConflict, CodeAlreadyProcessed, what+" already processed")
}

func WalletNotFound() *Error {
	return New(KindNotFound, CodeWalletNotFound, "wallet not found")
}

func ConfigMissing(message string) *Error {
	return New(KindExternalService, CodeConfigMissing, message)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", err)
}

// As extracts an *Error from err. Unclassified errors come back as Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return As(err).Code
}
