package permission

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnknownSection is returned when a string does not name one of the fixed sections.
	ErrUnknownSection = errors.New("unknown permission section")

	// ErrUnknownAction is returned when a string does not name one of the fixed actions.
	ErrUnknownAction = errors.New("unknown permission action")

	// ErrRoleNotFound is returned when no role with the given id exists.
	ErrRoleNotFound = errors.New("role not found")

	// ErrSystemRole is returned when deleting a system role is attempted.
	ErrSystemRole = errors.New("system roles cannot be deleted")

	// ErrRepositoryNil is returned when a Service is built without a repository.
	ErrRepositoryNil = errors.New("role repository is nil")
)

// ValidationError carries per-field messages of a rejected role form.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}

	return "invalid role: " + strings.Join(msgs, "; ")
}
