package services

import (
	"errors"
	"fmt"
)

// Kind classifies every failure that can leave the services layer.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidCredential Kind = "invalid_credential"
	KindForbidden         Kind = "forbidden"
	KindStorage           Kind = "storage"
)

type kindError struct {
	kind Kind
}

func (err *kindError) Error() string {
	return string(err.kind)
}

// Class sentinels. Every concrete error below matches exactly one of them
// through errors.Is.
var (
	ErrValidation        error = &kindError{kind: KindValidation}
	ErrNotFound          error = &kindError{kind: KindNotFound}
	ErrInvalidCredential error = &kindError{kind: KindInvalidCredential}
	ErrForbidden         error = &kindError{kind: KindForbidden}
	ErrStorage           error = &kindError{kind: KindStorage}
)

// Error is a user-facing domain failure with a stable code.
type Error struct {
	kind    Kind
	code    string
	message string
}

func newError(kind Kind, code string, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func (err *Error) Error() string {
	return err.message
}

func (err *Error) Kind() Kind {
	return err.kind
}

func (err *Error) Code() string {
	return err.code
}

func (err *Error) Is(target error) bool {
	class, ok := target.(*kindError)
	return ok && class.kind == err.kind
}

var (
	ErrUsernameLength     = newError(KindValidation, "username_length", "username must be between 3 and 50 characters")
	ErrUsernameCharacters = newError(KindValidation, "username_characters", "username may contain only letters, digits, dot, dash and underscore")
	ErrUsernameTaken      = newError(KindValidation, "username_taken", "username already taken")
	ErrWeakPassword       = newError(KindValidation, "password_length", "password must be between 6 and 100 characters")
	ErrInvalidEmail       = newError(KindValidation, "email_invalid", "email address is invalid")
	ErrFullNameTooLong    = newError(KindValidation, "full_name_length", "full name must be at most 100 characters")
	ErrUnknownRole        = newError(KindValidation, "role_unknown", "role is not recognized")
	ErrPasswordUnchanged  = newError(KindValidation, "password_unchanged", "new password must differ from the current one")

	ErrTaskTitleRequired   = newError(KindValidation, "task_title_required", "task title is required")
	ErrTaskTitleTooLong    = newError(KindValidation, "task_title_length", "task title must be at most 200 characters")
	ErrTaskDescriptionLong = newError(KindValidation, "task_description_length", "task description must be at most 2000 characters")
	ErrTaskStatusInvalid   = newError(KindValidation, "task_status_invalid", "task status must be todo, in_progress or done")
	ErrTaskPriorityInvalid = newError(KindValidation, "task_priority_invalid", "task priority must be low, medium or high")
	ErrTaskDueDateInvalid  = newError(KindValidation, "task_due_date_invalid", "due date must be YYYY-MM-DD or RFC 3339")

	ErrUserNotFound = newError(KindNotFound, "user_not_found", "user not found")
	ErrTaskNotFound = newError(KindNotFound, "task_not_found", "task not found")

	ErrInvalidCredentials = newError(KindInvalidCredential, "invalid_credentials", "invalid username or password")

	ErrAccountInactive        = newError(KindForbidden, "account_inactive", "account is inactive")
	ErrAdministrationDenied   = newError(KindForbidden, "administration_denied", "only the Claim Manager may manage users")
	ErrSelfChangeDenied       = newError(KindForbidden, "self_change_denied", "you cannot change your own role, status or account")
	ErrClaimManagerTaken      = newError(KindForbidden, "claim_manager_taken", "the Claim Manager role is already assigned to another active account")
	ErrTaskOwnershipViolation = newError(KindForbidden, "task_not_owned", "task belongs to another user")
	ErrOwnerMismatch          = newError(KindForbidden, "owner_mismatch", "tasks can only be managed for your own account")
	ErrTooManyAttempts        = newError(KindForbidden, "too_many_attempts", "too many login attempts")
	ErrPasswordChangeRequired = newError(KindForbidden, "password_change_required", "password must be changed before continuing")

	// Returned by the command gateway before any service is reached.
	ErrUnauthenticated    = newError(KindInvalidCredential, "unauthenticated", "sign in required")
	ErrSessionExpired     = newError(KindInvalidCredential, "session_expired", "session expired")
	ErrUnknownOperation   = newError(KindNotFound, "unknown_operation", "unknown operation")
	ErrMalformedArguments = newError(KindValidation, "bad_arguments", "malformed arguments")
)

// KindOf classifies err. Anything unrecognised is treated as a storage failure.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.kind
	}
	var classErr *kindError
	if errors.As(err, &classErr) {
		return classErr.kind
	}
	return KindStorage
}

// CodeOf returns the stable code of a domain error, or the kind for anything else.
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.code
	}
	return string(KindOf(err))
}

func storageFailure(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, operation, err)
}

// Catalog lists every domain error so callers can check that each code has a
// user-facing translation.
func Catalog() []*Error {
	return []*Error{
		ErrUsernameLength, ErrUsernameCharacters, ErrUsernameTaken, ErrWeakPassword,
		ErrInvalidEmail, ErrFullNameTooLong, ErrUnknownRole, ErrPasswordUnchanged,
		ErrTaskTitleRequired, ErrTaskTitleTooLong, ErrTaskDescriptionLong,
		ErrTaskStatusInvalid, ErrTaskPriorityInvalid, ErrTaskDueDateInvalid,
		ErrUserNotFound, ErrTaskNotFound, ErrInvalidCredentials,
		ErrAccountInactive, ErrAdministrationDenied, ErrSelfChangeDenied,
		ErrClaimManagerTaken, ErrTaskOwnershipViolation, ErrOwnerMismatch, ErrTooManyAttempts,
		ErrPasswordChangeRequired, ErrUnauthenticated, ErrSessionExpired,
		ErrUnknownOperation, ErrMalformedArguments,
	}
}
