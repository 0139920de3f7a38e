package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/auth-service/internal"
)

var ErrNotFound = errors.New("role not found")

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListRoles returns all roles with their resolved permissions.
func (s *Service) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("list roles failed", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	responses := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		responses = append(responses, r.ToResponse())
	}
	return responses, nil
}

// CreateRole creates a role and assigns its initial permission set.
// Unknown permission ids are rejected, not silently dropped: the join
// table must only ever reference existing permissions.
func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*RoleResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, dto.Name)
	if err != nil {
		s.logger.Error("create role: name lookup failed", "error", err)
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if exists {
		return nil, internal.NewConflictError(fmt.Sprintf("role %q already exists", dto.Name), internal.ErrCodeDuplicateRole)
	}

	newRole := &Role{Name: dto.Name}
	if err := s.repo.Create(ctx, newRole); err != nil {
		s.logger.Error("create role failed", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	for _, pid := range dto.PermissionIDs {
		if err := s.assignOne(ctx, newRole.ID, pid); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.GetByID(ctx, newRole.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to reload role", err)
	}

	s.logger.Info("role created", "role_id", created.ID, "name", created.Name)

	resp := created.ToResponse()
	return &resp, nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrRoleNotFound
		}
		return internal.NewInternalError("failed to get role", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete role failed", "error", err, "role_id", id)
		return internal.NewInternalError("failed to delete role", err)
	}

	s.logger.Info("role deleted", "role_id", id)
	return nil
}

// GetRolePermissions lists the permissions currently granted to a role.
func (s *Service) GetRolePermissions(ctx context.Context, roleID int64) ([]PermissionResponse, error) {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, internal.NewInternalError("failed to get role", err)
	}

	permissions, err := s.repo.GetPermissions(ctx, roleID)
	if err != nil {
		s.logger.Error("get role permissions failed", "error", err, "role_id", roleID)
		return nil, internal.NewInternalError("failed to get role permissions", err)
	}

	responses := make([]PermissionResponse, 0, len(permissions))
	for _, p := range permissions {
		responses = append(responses, PermissionResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return responses, nil
}

// AssignPermissions grants permissions to a role. Assigning an already
// granted permission is a no-op.
func (s *Service) AssignPermissions(ctx context.Context, roleID int64, dto AssignPermissionsDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrRoleNotFound
		}
		return internal.NewInternalError("failed to get role", err)
	}

	for _, pid := range dto.PermissionIDs {
		if err := s.assignOne(ctx, roleID, pid); err != nil {
			return err
		}
	}

	s.logger.Info("permissions assigned", "role_id", roleID, "count", len(dto.PermissionIDs))
	return nil
}

// RevokePermission removes one permission from a role; revoking a
// permission the role does not hold is a no-op.
func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrRoleNotFound
		}
		return internal.NewInternalError("failed to get role", err)
	}

	if err := s.repo.RevokePermission(ctx, roleID, permissionID); err != nil {
		s.logger.Error("revoke permission failed", "error", err, "role_id", roleID, "permission_id", permissionID)
		return internal.NewInternalError("failed to revoke permission", err)
	}

	s.logger.Info("permission revoked", "role_id", roleID, "permission_id", permissionID)
	return nil
}

func (s *Service) assignOne(ctx context.Context, roleID, permissionID int64) error {
	exists, err := s.repo.PermissionExists(ctx, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to check permission", err)
	}
	if !exists {
		return internal.ErrPermissionNotFound
	}

	if err := s.repo.AssignPermission(ctx, roleID, permissionID); err != nil {
		s.logger.Error("assign permission failed", "error", err, "role_id", roleID, "permission_id", permissionID)
		return internal.NewInternalError("failed to assign permission", err)
	}
	return nil
}
