package auth

// LoginDTO is the transport shape used by the HTTP handler to accept
// login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterDTO accepts new user registrations. EmployeeID is optional;
// when present it must validate against the employee directory.
type RegisterDTO struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	IsActive   bool    `json:"is_active"`
	RoleIDs    []int64 `json:"role_ids"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
}

// UpdateUserDTO carries user mutations; the role set replaces the
// existing assignments.
type UpdateUserDTO struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	RoleIDs  []int64 `json:"role_ids"`
}

// UserResponse is the created-user projection. The password digest is
// never part of any response shape.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// TokenResponse is the only thing login returns.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserDetail is the flat projection for user queries. Relationships are
// always serialized through these DTOs, never as the live object graph,
// because User→Role→Permission is cyclic.
type UserDetail struct {
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	IsActive bool          `json:"is_active"`
	Roles    []RoleSummary `json:"roles"`
}

type RoleSummary struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Permissions []PermissionSummary `json:"permissions"`
}

type PermissionSummary struct {
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

func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d UpdateUserDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
	}
}

// ToDetail flattens the role graph, filtering join rows with unresolved
// permission sides.
func (u *User) ToDetail() UserDetail {
	detail := UserDetail{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
		Roles:    make([]RoleSummary, 0, len(u.Roles)),
	}

	for _, role := range u.Roles {
		summary := RoleSummary{
			ID:          role.ID,
			Name:        role.Name,
			Permissions: make([]PermissionSummary, 0, len(role.RolePermissions)),
		}
		for _, rp := range role.RolePermissions {
			if rp.Permission == nil {
				continue
			}
			summary.Permissions = append(summary.Permissions, PermissionSummary{
				ID:          rp.Permission.ID,
				Name:        rp.Permission.Name,
				Description: rp.Permission.Description,
			})
		}
		detail.Roles = append(detail.Roles, summary)
	}

	return detail
}
