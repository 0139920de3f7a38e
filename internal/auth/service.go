package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/auth-service/internal"
	"github.com/frahmantamala/auth-service/internal/core/events"
)

// Service orchestrates registration and login: credential hashing and
// verification, employee-directory validation, claim resolution and token
// issuance.
type Service struct {
	repo      Repository
	hasher    PasswordHasher
	tokens    TokenIssuer
	directory DirectoryVerifier
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, directory DirectoryVerifier, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// Register creates a user with hashed credentials and role associations.
// Username and email collisions each get their own message; unknown role
// ids are dropped without complaint.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("register: username lookup failed", "error", err)
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if taken {
		return nil, internal.NewDuplicateUsernameError(dto.Username)
	}

	taken, err = s.repo.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("register: email lookup failed", "error", err)
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if taken {
		return nil, internal.NewDuplicateEmailError(dto.Email)
	}

	if dto.EmployeeID != nil {
		if !s.directory.IsActiveEmployee(ctx, *dto.EmployeeID) {
			s.logger.Warn("register: employee reference rejected",
				"username", dto.Username,
				"employee_id", *dto.EmployeeID)
			return nil, internal.NewInvalidEmployeeError()
		}
	}

	roles, err := s.repo.GetRolesByIDs(ctx, dto.RoleIDs)
	if err != nil {
		s.logger.Error("register: role resolution failed", "error", err)
		return nil, internal.NewInternalError("failed to resolve roles", err)
	}

	digest, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("register: hashing failed", "error", err)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: digest,
		IsActive:     dto.IsActive,
		EmployeeID:   dto.EmployeeID,
		Roles:        roles,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// the unique constraint closes the pre-check race; report it the
		// same way as a pre-check hit
		if errors.Is(err, ErrDuplicateKey) {
			return nil, internal.NewConflictError("username or email is already in use", internal.ErrCodeDuplicateIdentity)
		}
		s.logger.Error("register: persist failed", "error", err, "username", dto.Username)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username,
		"roles", len(user.Roles))

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewUserRegisteredEvent(user.ID, user.Username, user.Email, user.EmployeeID))
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Login verifies credentials and issues a signed token carrying the
// resolved claim sets. Unknown user and wrong password return the same
// error so callers cannot enumerate usernames.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("login: user fetch failed", "error", err)
		}
		return nil, internal.ErrInvalidCredentials
	}

	ok, rehash := s.hasher.Verify(dto.Password, user.PasswordHash)
	if !ok {
		return nil, internal.ErrInvalidCredentials
	}

	if rehash {
		s.upgradeDigest(ctx, user, dto.Password)
	}

	resolved := ResolveClaims(user.Roles)

	token, err := s.tokens.Issue(user, resolved)
	if err != nil {
		s.logger.Error("login: token issuance failed", "error", err, "user_id", user.ID)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in",
		"user_id", user.ID,
		"roles", len(resolved.Roles),
		"permissions", len(resolved.Permissions))

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewUserLoggedInEvent(user.ID, user.Username, resolved.Roles, user.EmployeeID))
	}

	return &TokenResponse{Token: token}, nil
}

// upgradeDigest re-hashes a legacy digest under the current scheme after
// a successful verification. Failures are logged, never surfaced: the
// login already succeeded.
func (s *Service) upgradeDigest(ctx context.Context, user *User, plaintext string) {
	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Warn("digest upgrade: hash failed", "error", err, "user_id", user.ID)
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, digest); err != nil {
		s.logger.Warn("digest upgrade: store failed", "error", err, "user_id", user.ID)
		return
	}
	s.logger.Info("password digest upgraded", "user_id", user.ID)
}

// ValidateToken is used by the transport middleware.
func (s *Service) ValidateToken(tokenString string) (*TokenClaims, error) {
	return s.tokens.Validate(tokenString)
}

// ListUsers returns all users as flat projections.
func (s *Service) ListUsers(ctx context.Context) ([]UserDetail, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	details := make([]UserDetail, 0, len(users))
	for _, u := range users {
		details = append(details, u.ToDetail())
	}
	return details, nil
}

// GetUser returns a single user projection.
func (s *Service) GetUser(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("get user failed", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to get user", err)
	}

	detail := user.ToDetail()
	return &detail, nil
}

// UpdateUser mutates username/email and replaces the role assignment set.
// Unknown role ids are dropped, matching registration.
func (s *Service) UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("failed to get user", err)
	}

	roles, err := s.repo.GetRolesByIDs(ctx, dto.RoleIDs)
	if err != nil {
		return internal.NewInternalError("failed to resolve roles", err)
	}

	user.Username = dto.Username
	user.Email = dto.Email
	user.Roles = roles

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return internal.NewConflictError("username or email is already in use", internal.ErrCodeDuplicateIdentity)
		}
		s.logger.Error("update user failed", "error", err, "user_id", id)
		return internal.NewInternalError("failed to update user", err)
	}

	return nil
}
