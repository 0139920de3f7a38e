package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	roleDatamodel "github.com/frahmantamala/auth-service/internal/core/datamodel/role"
	"github.com/frahmantamala/auth-service/internal/role"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) role.Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAll(ctx context.Context) ([]*role.Role, error) {
	var records []roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Preload("RolePermissions.Permission").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	roles := make([]*role.Role, 0, len(records))
	for i := range records {
		roles = append(roles, toDomain(&records[i]))
	}
	return roles, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*role.Role, error) {
	var record roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Preload("RolePermissions.Permission").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role.ErrNotFound
		}
		return nil, err
	}
	return toDomain(&record), nil
}

func (r *Repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, newRole *role.Role) error {
	record := roleDatamodel.Role{Name: newRole.Name}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	newRole.ID = record.ID
	return nil
}

// Delete removes the role and its join rows; user assignments cascade at
// the database level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&roleDatamodel.Role{}, id).Error
	})
}

func (r *Repository) GetPermissions(ctx context.Context, roleID int64) ([]role.Permission, error) {
	var rows []roleDatamodel.RolePermission
	err := r.db.WithContext(ctx).
		Preload("Permission").
		Where("role_id = ?", roleID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	permissions := make([]role.Permission, 0, len(rows))
	for _, rp := range rows {
		if rp.Permission == nil {
			continue
		}
		permissions = append(permissions, role.Permission{
			ID:          rp.Permission.ID,
			Name:        rp.Permission.Name,
			Description: rp.Permission.Description,
		})
	}
	return permissions, nil
}

func (r *Repository) PermissionExists(ctx context.Context, permissionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Permission{}).
		Where("id = ?", permissionID).
		Count(&count).Error
	return count > 0, err
}

// AssignPermission inserts the join row, ignoring the conflict when the
// pair already exists.
func (r *Repository) AssignPermission(ctx context.Context, roleID, permissionID int64) error {
	row := roleDatamodel.RolePermission{RoleID: roleID, PermissionID: permissionID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *Repository) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&roleDatamodel.RolePermission{}).Error
}

func toDomain(record *roleDatamodel.Role) *role.Role {
	domain := &role.Role{
		ID:          record.ID,
		Name:        record.Name,
		Permissions: make([]role.Permission, 0, len(record.RolePermissions)),
	}
	for _, rp := range record.RolePermissions {
		if rp.Permission == nil {
			continue
		}
		domain.Permissions = append(domain.Permissions, role.Permission{
			ID:          rp.Permission.ID,
			Name:        rp.Permission.Name,
			Description: rp.Permission.Description,
		})
	}
	return domain
}
