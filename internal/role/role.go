package role

import "context"

// Role and Permission are the management-side domain models. The join
// rows themselves never leave the repository; callers see resolved
// permission lists with unresolvable sides already filtered.
type Role struct {
	ID          int64
	Name        string
	Permissions []Permission
}

type Permission struct {
	ID          int64
	Name        string
	Description string
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Role, error)
	GetByID(ctx context.Context, id int64) (*Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id int64) error
	GetPermissions(ctx context.Context, roleID int64) ([]Permission, error)
	PermissionExists(ctx context.Context, permissionID int64) (bool, error)
	AssignPermission(ctx context.Context, roleID, permissionID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID int64) error
}
