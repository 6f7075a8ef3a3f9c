package catalog

import (
	"context"
	"errors"
)

// ErrResourceNotFound is returned when a catalog has no resource with the identifier.
var ErrResourceNotFound = errors.New("resource not found")

// Store loads catalog resources.
type Store interface {
	Resources(ctx context.Context, kind Kind) ([]Resource, error)
	Resource(ctx context.Context, kind Kind, identifier string) (Resource, error)
}
