package role

// CreateRoleDTO accepts a new role with an optional initial permission
// set.
type CreateRoleDTO struct {
	Name          string  `json:"name"`
	PermissionIDs []int64 `json:"permission_ids"`
}

// AssignPermissionsDTO adds permissions to an existing role.
type AssignPermissionsDTO struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

type RoleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Permissions []PermissionResponse `json:"permissions"`
}

type PermissionResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidationError represents a simple validation error from DTO
// validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateRoleDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

func (d AssignPermissionsDTO) Validate() error {
	if len(d.PermissionIDs) == 0 {
		return ValidationError{Msg: "permission_ids is required"}
	}
	return nil
}

func (r *Role) ToResponse() RoleResponse {
	resp := RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: make([]PermissionResponse, 0, len(r.Permissions)),
	}
	for _, p := range r.Permissions {
		resp.Permissions = append(resp.Permissions, PermissionResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return resp
}
