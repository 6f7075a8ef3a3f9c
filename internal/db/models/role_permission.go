package models

// RolePermission grants one action on one section to a role.
// A section missing from a role has no row at all.
type RolePermission struct {
	RoleID  uint64 `gorm:"primaryKey;autoIncrement:false;column:role_id"`
	Section string `gorm:"primaryKey;size:20"`
	Action  string `gorm:"primaryKey;size:10"`
}

// TableName overrides GORM's default table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
