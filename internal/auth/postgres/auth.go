package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/auth-service/internal/auth"
	roleDatamodel "github.com/frahmantamala/auth-service/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/auth-service/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUsername loads the user with the full role graph: roles, their
// join rows and the permission side of each row.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var record userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Roles.RolePermissions.Permission").
		Where("username = ?", username).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&record), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	var record userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Roles.RolePermissions.Permission").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&record), nil
}

func (r *Repository) GetAll(ctx context.Context) ([]*auth.User, error) {
	var records []userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Roles.RolePermissions.Permission").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	users := make([]*auth.User, 0, len(records))
	for i := range records {
		users = append(users, toDomainUser(&records[i]))
	}
	return users, nil
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// GetRolesByIDs resolves role ids to existing roles. Ids without a row
// are simply not in the result.
func (r *Repository) GetRolesByIDs(ctx context.Context, ids []int64) ([]auth.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Preload("RolePermissions.Permission").
		Where("id IN ?", ids).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	roles := make([]auth.Role, 0, len(records))
	for i := range records {
		roles = append(roles, toDomainRole(&records[i]))
	}
	return roles, nil
}

// Create persists the user and its role associations. A unique-constraint
// violation is translated to auth.ErrDuplicateKey so the service can
// report it as a duplicate identity.
func (r *Repository) Create(ctx context.Context, user *auth.User) error {
	record := toDataModelUser(user)
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.ErrDuplicateKey
		}
		return err
	}
	user.ID = record.ID
	return nil
}

func (r *Repository) Update(ctx context.Context, user *auth.User) error {
	record := toDataModelUser(user)

	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{ID: user.ID}).
		Updates(map[string]interface{}{
			"username": user.Username,
			"email":    user.Email,
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.ErrDuplicateKey
		}
		return err
	}

	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{ID: user.ID}).
		Association("Roles").
		Replace(record.Roles)
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID int64, digest string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("password_hash", digest).Error
}

// ----------------- MAPPING -----------------

func toDomainUser(record *userDatamodel.User) *auth.User {
	user := &auth.User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		IsActive:     record.IsActive,
		EmployeeID:   record.EmployeeID,
		Roles:        make([]auth.Role, 0, len(record.Roles)),
	}
	for i := range record.Roles {
		user.Roles = append(user.Roles, toDomainRole(&record.Roles[i]))
	}
	return user
}

func toDomainRole(record *roleDatamodel.Role) auth.Role {
	role := auth.Role{
		ID:              record.ID,
		Name:            record.Name,
		RolePermissions: make([]auth.RolePermission, 0, len(record.RolePermissions)),
	}
	for _, rp := range record.RolePermissions {
		domainRP := auth.RolePermission{
			RoleID:       rp.RoleID,
			PermissionID: rp.PermissionID,
		}
		if rp.Permission != nil {
			domainRP.Permission = &auth.Permission{
				ID:          rp.Permission.ID,
				Name:        rp.Permission.Name,
				Description: rp.Permission.Description,
			}
		}
		role.RolePermissions = append(role.RolePermissions, domainRP)
	}
	return role
}

func toDataModelUser(user *auth.User) *userDatamodel.User {
	record := &userDatamodel.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		EmployeeID:   user.EmployeeID,
		Roles:        make([]roleDatamodel.Role, 0, len(user.Roles)),
	}
	for _, role := range user.Roles {
		record.Roles = append(record.Roles, roleDatamodel.Role{ID: role.ID, Name: role.Name})
	}
	return record
}
