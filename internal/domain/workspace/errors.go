package workspace

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrValidation indicates tool input was rejected before any remote call.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous indicates a name matched more than one entity in scope.
	ErrAmbiguous = errors.New("ambiguous name")

	// ErrRateLimited indicates the API rejected the call with HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the API rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Candidate is one of several entities matched by an ambiguous name.
type Candidate struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// ResolutionError reports a name that could not be mapped to exactly one entity.
type ResolutionError struct {
	Kind       Kind
	Name       string
	Scope      string
	Candidates []Candidate
	Hint       string
	Err        error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	switch {
	case errors.Is(e.Err, ErrAmbiguous):
		fmt.Fprintf(&b, "%s name %q is ambiguous", e.Kind, e.Name)
		if e.Scope != "" {
			fmt.Fprintf(&b, " in %s", e.Scope)
		}
		paths := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			paths = append(paths, fmt.Sprintf("%s (%s)", c.Path, c.ID))
		}
		fmt.Fprintf(&b, ": %d matches: %s", len(e.Candidates), strings.Join(paths, "; "))
	default:
		fmt.Fprintf(&b, "%s %q not found", e.Kind, e.Name)
		if e.Scope != "" {
			fmt.Fprintf(&b, " in %s", e.Scope)
		}
	}
	if e.Hint != "" {
		b.WriteString(". ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// APIError is a failure reported by the remote API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("clickup: %s (%s, status %d)", msg, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("clickup: %s (status %d)", msg, e.StatusCode)
}

// Is maps well-known status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimited:
		return e.StatusCode == 429
	case ErrUnauthorized:
		return e.StatusCode == 401
	}
	return false
}
