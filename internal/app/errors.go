package app

import "errors"

// Kind classifies service errors for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidInput     = newError(KindInvalidInput, "invalid input")
	ErrMissingEmail     = newError(KindInvalidInput, "missing email")
	ErrBadEmailFormat   = newError(KindInvalidInput, "bad email format")
	ErrWeakPassword     = newError(KindInvalidInput, "weak password: use at least 10 characters with letters, digits and one of !@#$%^&*()")
	ErrPasswordMismatch = newError(KindInvalidInput, "password mismatch")
	ErrEmailExists      = newError(KindConflict, "email exists")

	ErrInvalidCredential = newError(KindUnauthorized, "invalid email or password")
	ErrUserNotFound      = newError(KindNotFound, "user not found")

	ErrDuplicateNickname = newError(KindInvalidInput, "duplicate nickname: same as the current one")
	ErrDuplicateCareer   = newError(KindInvalidInput, "duplicate career: same as the current one")
	ErrNicknameTaken     = newError(KindConflict, "nickname taken")

	ErrSameEmail  = newError(KindInvalidInput, "new email is the same as the current one")
	ErrEmailInUse = newError(KindConflict, "email in use")

	ErrWrongCurrentPassword = newError(KindInvalidInput, "wrong current password")
	ErrSamePassword         = newError(KindInvalidInput, "new password is the same as the current one")

	ErrProfileUpload = newError(KindInternal, "profile upload failed")

	ErrInvalidCategory        = newError(KindInvalidInput, "invalid category")
	ErrInvalidTransactionType = newError(KindInvalidInput, "invalid transaction type")
	ErrInvalidAmount          = newError(KindInvalidInput, "amount must be positive")
	ErrQuestNotFound          = newError(KindNotFound, "quest not found")
	ErrMissingTitle           = newError(KindInvalidInput, "missing quest title")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
