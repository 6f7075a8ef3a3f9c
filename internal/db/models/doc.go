// Package models contains database model definitions.
package models

// All returns every model for migration.
func All() []any {
	return []any{
		&Role{},
		&RolePermission{},
		&User{},
		&Resource{},
		&DownloadRequest{},
	}
}
