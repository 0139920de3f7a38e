package role

import "time"

type Role struct {
	ID              int64            `gorm:"primaryKey"`
	Name            string           `gorm:"column:name;uniqueIndex;not null"`
	RolePermissions []RolePermission `gorm:"foreignKey:RoleID"`
	CreatedAt       time.Time        `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;default:now()"`
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

// RolePermission is the explicit role/permission join row with a composite
// key. Either side may be nil on a partial fetch; readers must filter nil
// references instead of dereferencing them.
type RolePermission struct {
	RoleID       int64       `gorm:"column:role_id;primaryKey"`
	PermissionID int64       `gorm:"column:permission_id;primaryKey"`
	Role         *Role       `gorm:"foreignKey:RoleID"`
	Permission   *Permission `gorm:"foreignKey:PermissionID"`
}

func (Role) TableName() string           { return "roles" }
func (Permission) TableName() string     { return "permissions" }
func (RolePermission) TableName() string { return "role_permissions" }
