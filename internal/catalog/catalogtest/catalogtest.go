// Package catalogtest provides catalog fixtures for tests.
package catalogtest

import (
	"context"

	"github.com/corpsite/corpsite/internal/catalog"
)

// Store serves a fixed list of resources.
type Store []catalog.Resource

var _ catalog.Store = Store(nil)

// Defaults returns a store over the seeded catalog.
func Defaults() Store {
	return Store(catalog.DefaultResources())
}

// Resources implements catalog.Store.
func (s Store) Resources(_ context.Context, kind catalog.Kind) ([]catalog.Resource, error) {
	out := make([]catalog.Resource, 0, len(s))

	for _, r := range s {
		if r.Kind == kind {
			out = append(out, r)
		}
	}

	return out, nil
}

// Resource implements catalog.Store.
func (s Store) Resource(_ context.Context, kind catalog.Kind, identifier string) (catalog.Resource, error) {
	for _, r := range s {
		if r.Kind == kind && r.Identifier == identifier {
			return r, nil
		}
	}

	return catalog.Resource{}, catalog.ErrResourceNotFound
}
