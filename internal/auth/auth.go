package auth

import (
	"context"
	"errors"
)

// User is the internal domain model used by the credential service. The
// role graph hangs off Roles; join rows may carry nil Permission sides
// when a fetch is partial.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	EmployeeID   *int64
	Roles        []Role
}

type Role struct {
	ID              int64
	Name            string
	RolePermissions []RolePermission
}

type Permission struct {
	ID          int64
	Name        string
	Description string
}

// RolePermission mirrors the persistence join row. Permission is a
// pointer on purpose: a stale row can reference a permission that is no
// longer resolvable, and resolution must skip it rather than fail.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
	Permission   *Permission
}

// PasswordHasher turns a plaintext credential into a storable digest and
// checks a plaintext against a stored digest. Verify also reports whether
// the digest should be re-hashed under the current scheme (legacy digest
// verified by a hardened hasher).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (ok bool, rehash bool)
}

// TokenIssuer builds and validates signed tokens carrying identity and
// RBAC claims.
type TokenIssuer interface {
	Issue(user *User, claims ResolvedClaims) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims is the flat projection extracted from a validated token.
type TokenClaims struct {
	Username    string
	Email       string
	Roles       []string
	Permissions []string
	EmployeeID  string
}

func (c *TokenClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// DirectoryVerifier checks an employee reference against the external
// employee directory. Implementations are fail-closed: any transport or
// decoding problem reads as "not a valid employee".
type DirectoryVerifier interface {
	IsActiveEmployee(ctx context.Context, employeeID int64) bool
}

// Repository is the persistence boundary for the credential service.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetRolesByIDs(ctx context.Context, ids []int64) ([]Role, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, userID int64, digest string) error
}

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned by repositories when the database
	// unique constraint rejects an insert. It closes the race two
	// concurrent registrations can win against the pre-insert checks.
	ErrDuplicateKey = errors.New("duplicate key")
)
