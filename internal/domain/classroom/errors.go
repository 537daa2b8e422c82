package classroom

import (
	"errors"
	"fmt"
)

// Base error kinds, matched with errors.Is().
var (
	// ErrNotFound marks the absence of a required precondition entity.
	// Operations never treat it as empty success.
	ErrNotFound = errors.New("entity not found")

	// ErrLogic marks a domain-rule violation with a user-facing message.
	ErrLogic = errors.New("logic error")
)

// DomainError is an error with operation context and a base kind so callers
// can branch with errors.Is while the adapter renders Message to the user.
type DomainError struct {
	Op      string // operation that failed, e.g. "AddStudent"
	Kind    error  // base kind for errors.Is()
	Message string // user-facing message
	Err     error  // underlying error, optional
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against both kind and cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a DomainError without an underlying cause.
func NewDomainError(op string, kind error, message string) *DomainError {
	return &DomainError{Op: op, Kind: kind, Message: message}
}

// NotFound family: a required entity is absent, the operation cannot proceed.
var (
	ErrCourseNotFound  = NewDomainError("GetCourse", ErrNotFound, "course not found for this chat")
	ErrStudentNotFound = NewDomainError("GetStudent", ErrNotFound, "student not found")
	ErrLessonNotFound  = NewDomainError("GetLesson", ErrNotFound, "course has no lessons yet")
)

// LogicError family: domain-rule violations.
var (
	ErrTeacherAsStudent = NewDomainError("AddStudent", ErrLogic, "teacher cannot be registered as student")
	ErrNotCourseStudent = NewDomainError("RemoveStudent", ErrLogic, "user is not related to course as student")
	ErrMissingProfile   = NewDomainError("AddStudent", ErrLogic, "cannot add student without username or full name")
	ErrMarkOutOfRange   = NewDomainError("ParseMark", ErrLogic, "grade must be between 0 and 10")
	ErrUnknownMark      = NewDomainError("ParseMark", ErrLogic, "mark must be '+', '-' or a grade between 0 and 10")
)

// IsNotFound reports whether err belongs to the NotFound family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLogic reports whether err belongs to the LogicError family.
func IsLogic(err error) bool {
	return errors.Is(err, ErrLogic)
}
