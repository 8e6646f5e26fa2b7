package models

// Role is a named set of permissions assigned to users.
type Role struct {
	Model
	Name        string `gorm:"uniqueIndex:idx_roles_name,where:deleted_at is NULL"`
	Permissions CommaSeparatedStrings
}
