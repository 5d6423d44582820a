package adminauth

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error] for transport-level mapping. Every failure the
// engine surfaces carries exactly one kind.
type Kind int

const (
	// KindInvalidInput marks malformed or missing caller input.
	KindInvalidInput Kind = iota
	// KindConflict marks a uniqueness violation (email already registered).
	KindConflict
	// KindNotFound marks a miss on an account lookup.
	KindNotFound
	// KindUnauthenticated marks credential and token failures.
	KindUnauthenticated
	// KindAlreadyDone marks reuse of a one-shot operation, such as a second
	// verification of the same key. Treated as a client error, never as an
	// idempotent success.
	KindAlreadyDone
	// KindInfrastructure marks store or mail transport failures.
	KindInfrastructure
)

// Stable machine-readable codes. Clients branch on these, never on messages.
const (
	CodeInvalidInput           = "INVALID_INPUT_VALUE"
	CodeEmailFormatInvalid     = "EMAIL_FORMAT_INVALID"
	CodeEmailAlreadyExist      = "EMAIL_ALREADY_EXIST"
	CodeEmailAuthKeyInvalid    = "EMAIL_AUTH_KEY_INVALID"
	CodeAlreadyCompleteAuth    = "ALREADY_COMPLETE_AUTHENTICATION"
	CodeEmailNotVerifiedYet    = "EMAIL_NOT_VERIFIED_YET"
	CodeUserNotFoundByEmail    = "USER_NOT_FOUND_BY_EMAIL"
	CodeUserNotFoundByID       = "USER_NOT_FOUND_BY_ID"
	CodeUserNotFoundByPassword = "USER_NOT_FOUND_BY_PASSWORD"
	CodeInvalidAccessToken     = "INVALID_ACCESS_TOKEN"
	CodeInvalidRefreshToken    = "INVALID_REFRESH_TOKEN"
	CodeExpiredRefreshToken    = "EXPIRED_REFRESH_TOKEN"
	CodeStorageUnavailable     = "STORAGE_UNAVAILABLE"
	CodeMailDeliveryFailed     = "MAIL_DELIVERY_FAILED"
)

// Error is the tagged failure type returned by all Engine operations. A new
// value is constructed per failure; instances are never shared or mutated
// after creation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.Message + ": " + e.err.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Is matches two errors by code, so sentinels built with the same
// constructor compare equal under errors.Is regardless of wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func wrapError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, err: cause}
}

// Fresh constructors, one per failure condition. Each call allocates a new
// value (see Error).

func errEmailFormatInvalid(email string) *Error {
	return newError(KindInvalidInput, CodeEmailFormatInvalid, fmt.Sprintf("email %q is not a valid address", email))
}

func errEmailAlreadyExist() *Error {
	return newError(KindConflict, CodeEmailAlreadyExist, "email is already registered")
}

func errEmailAuthKeyInvalid() *Error {
	return newError(KindInvalidInput, CodeEmailAuthKeyInvalid, "email verification key is not valid")
}

func errAlreadyCompleteAuthentication() *Error {
	return newError(KindAlreadyDone, CodeAlreadyCompleteAuth, "account is already verified")
}

func errEmailNotVerifiedYet() *Error {
	return newError(KindInvalidInput, CodeEmailNotVerifiedYet, "verify your email before logging in")
}

func errUserNotFoundByEmail() *Error {
	return newError(KindNotFound, CodeUserNotFoundByEmail, "no account with that email")
}

func errUserNotFoundByID() *Error {
	return newError(KindNotFound, CodeUserNotFoundByID, "no account with that id")
}

// Deliberately phrased like the by-email miss so a caller cannot tell which
// of the two checks failed.
func errUserNotFoundByPassword() *Error {
	return newError(KindNotFound, CodeUserNotFoundByPassword, "password is not correct")
}

func errInvalidAccessToken() *Error {
	return newError(KindUnauthenticated, CodeInvalidAccessToken, "access token is not valid")
}

func errInvalidRefreshToken() *Error {
	return newError(KindUnauthenticated, CodeInvalidRefreshToken, "refresh token is not valid")
}

func errExpiredRefreshToken() *Error {
	return newError(KindUnauthenticated, CodeExpiredRefreshToken, "refresh token has expired")
}

func errStorageUnavailable(cause error) *Error {
	return wrapError(KindInfrastructure, CodeStorageUnavailable, "token storage unavailable", cause)
}

// KindOf reports the kind of err, or KindInfrastructure when err is not an
// engine [Error]. Unknown failures are treated as infrastructure so the
// transport maps them to a 5xx rather than leaking detail.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// CodeOf reports the stable code of err, or empty when err is not an engine
// [Error].
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
