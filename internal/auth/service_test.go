package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/auth-service/internal"
)

type mockRepository struct {
	usersByName map[string]*User
	usersByID   map[int64]*User
	rolesByID   map[int64]Role

	createdUsers   []*User
	updatedDigests map[int64]string

	failCreate    error
	failUpdate    error
	failLookup    error
	updateHashErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		usersByName:    map[string]*User{},
		usersByID:      map[int64]*User{},
		rolesByID:      map[int64]Role{},
		updatedDigests: map[int64]string{},
	}
}

func (m *mockRepository) addUser(u *User) {
	m.usersByName[u.Username] = u
	m.usersByID[u.ID] = u
}

func (m *mockRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	if m.failLookup != nil {
		return nil, m.failLookup
	}
	if u, ok := m.usersByName[username]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetAll(_ context.Context) ([]*User, error) {
	users := make([]*User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if m.failLookup != nil {
		return false, m.failLookup
	}
	_, ok := m.usersByName[username]
	return ok, nil
}

func (m *mockRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if m.failLookup != nil {
		return false, m.failLookup
	}
	for _, u := range m.usersByName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) GetRolesByIDs(_ context.Context, ids []int64) ([]Role, error) {
	roles := make([]Role, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.rolesByID[id]; ok {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

func (m *mockRepository) Create(_ context.Context, user *User) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	user.ID = int64(len(m.createdUsers) + 1)
	m.createdUsers = append(m.createdUsers, user)
	m.addUser(user)
	return nil
}

func (m *mockRepository) Update(_ context.Context, user *User) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	m.addUser(user)
	return nil
}

func (m *mockRepository) UpdatePasswordHash(_ context.Context, userID int64, digest string) error {
	if m.updateHashErr != nil {
		return m.updateHashErr
	}
	m.updatedDigests[userID] = digest
	if u, ok := m.usersByID[userID]; ok {
		u.PasswordHash = digest
	}
	return nil
}

type mockDirectory struct {
	activeIDs map[int64]bool
	calls     []int64
}

func (m *mockDirectory) IsActiveEmployee(_ context.Context, employeeID int64) bool {
	m.calls = append(m.calls, employeeID)
	return m.activeIDs[employeeID]
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service   *Service
		repo      *mockRepository
		directory *mockDirectory
		hasher    PasswordHasher
		issuer    *JWTIssuer
		ctx       context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		directory = &mockDirectory{activeIDs: map[int64]bool{}}
		hasher = LegacyHasher{}
		issuer = NewJWTIssuer(internal.SecurityConfig{
			JWTSecret:     "test-secret",
			JWTIssuer:     "auth-service",
			JWTAudience:   "internal-apis",
			TokenDuration: time.Hour,
		})

		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, hasher, issuer, directory, nil, testLogger)
	})

	ginkgo.Describe("Register", func() {
		var dto RegisterDTO

		ginkgo.BeforeEach(func() {
			dto = RegisterDTO{
				Username: "dina",
				Email:    "dina@example.com",
				Password: "secret123",
				IsActive: true,
			}
		})

		ginkgo.It("should create the user with a hashed password", func() {
			resp, err := service.Register(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(resp.Username).To(gomega.Equal("dina"))

			created := repo.createdUsers[0]
			gomega.Expect(created.PasswordHash).ToNot(gomega.Equal("secret123"))
			expected, _ := hasher.Hash("secret123")
			gomega.Expect(created.PasswordHash).To(gomega.Equal(expected))
		})

		ginkgo.It("should reject a taken username with a username-specific conflict", func() {
			repo.addUser(&User{ID: 1, Username: "dina", Email: "other@example.com"})

			_, err := service.Register(ctx, dto)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDuplicateUsername))
		})

		ginkgo.It("should reject a taken email with an email-specific conflict", func() {
			repo.addUser(&User{ID: 1, Username: "other", Email: "dina@example.com"})

			_, err := service.Register(ctx, dto)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDuplicateEmail))
		})

		ginkgo.It("should reject an employee reference the directory does not confirm", func() {
			employeeID := int64(7)
			dto.EmployeeID = &employeeID

			_, err := service.Register(ctx, dto)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidEmployee))
			gomega.Expect(repo.createdUsers).To(gomega.BeEmpty())
		})

		ginkgo.It("should accept a confirmed employee reference", func() {
			employeeID := int64(7)
			dto.EmployeeID = &employeeID
			directory.activeIDs[7] = true

			_, err := service.Register(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(directory.calls).To(gomega.Equal([]int64{7}))
		})

		ginkgo.It("should skip the directory when no employee reference is given", func() {
			_, err := service.Register(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(directory.calls).To(gomega.BeEmpty())
		})

		ginkgo.It("should drop unknown role ids without failing", func() {
			repo.rolesByID[1] = Role{ID: 1, Name: "Admin"}
			dto.RoleIDs = []int64{1, 999}

			_, err := service.Register(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.createdUsers[0].Roles).To(gomega.HaveLen(1))
			gomega.Expect(repo.createdUsers[0].Roles[0].Name).To(gomega.Equal("Admin"))
		})

		ginkgo.It("should map a database duplicate to a conflict", func() {
			repo.failCreate = ErrDuplicateKey

			_, err := service.Register(ctx, dto)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(409))
		})

		ginkgo.It("should reject missing fields before touching the repository", func() {
			_, err := service.Register(ctx, RegisterDTO{Username: "dina"})

			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
			gomega.Expect(repo.createdUsers).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.BeforeEach(func() {
			digest, _ := hasher.Hash("secret123")
			repo.addUser(&User{
				ID:           1,
				Username:     "dina",
				Email:        "dina@example.com",
				PasswordHash: digest,
				IsActive:     true,
				Roles: []Role{
					{ID: 1, Name: "Admin", RolePermissions: []RolePermission{
						{RoleID: 1, PermissionID: 1, Permission: &Permission{ID: 1, Name: "CanEditUsers"}},
					}},
				},
			})
		})

		ginkgo.It("should return a token carrying resolved claims", func() {
			resp, err := service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.Token).ToNot(gomega.BeEmpty())

			claims, err := issuer.Validate(resp.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Username).To(gomega.Equal("dina"))
			gomega.Expect(claims.Roles).To(gomega.Equal([]string{"Admin"}))
			gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"CanEditUsers"}))
		})

		ginkgo.It("should return the same error for unknown user and wrong password", func() {
			_, unknownErr := service.Login(ctx, LoginDTO{Username: "ghost", Password: "secret123"})
			_, wrongErr := service.Login(ctx, LoginDTO{Username: "dina", Password: "wrong"})

			gomega.Expect(unknownErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(wrongErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(unknownErr.Error()).To(gomega.Equal(wrongErr.Error()))
		})

		ginkgo.It("should hide repository failures behind the credential error", func() {
			repo.failLookup = errors.New("connection refused")

			_, err := service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should succeed for a user with no roles and issue empty claim sets", func() {
			digest, _ := hasher.Hash("pw")
			repo.addUser(&User{ID: 2, Username: "norole", Email: "n@example.com", PasswordHash: digest})

			resp, err := service.Login(ctx, LoginDTO{Username: "norole", Password: "pw"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := issuer.Validate(resp.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Roles).To(gomega.BeEmpty())
			gomega.Expect(claims.Permissions).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject an empty password before the repository lookup", func() {
			_, err := service.Login(ctx, LoginDTO{Username: "dina"})

			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.Context("with the bcrypt scheme over a legacy digest", func() {
			ginkgo.BeforeEach(func() {
				testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
				service = NewService(repo, NewBcryptHasher(4), issuer, directory, nil, testLogger)
			})

			ginkgo.It("should upgrade the stored digest on successful login", func() {
				_, err := service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(repo.updatedDigests).To(gomega.HaveKey(int64(1)))
				gomega.Expect(repo.updatedDigests[1]).To(gomega.HavePrefix("$2"))
			})

			ginkgo.It("should still log in when the digest upgrade fails", func() {
				repo.updateHashErr = errors.New("write failed")

				resp, err := service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.Token).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should not rewrite a digest that is already bcrypt", func() {
				_, err := service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				firstUpgrade := repo.updatedDigests[1]

				repo.updatedDigests = map[int64]string{}
				_, err = service.Login(ctx, LoginDTO{Username: "dina", Password: "secret123"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(repo.updatedDigests).To(gomega.BeEmpty())
				gomega.Expect(firstUpgrade).To(gomega.HavePrefix("$2"))
			})
		})
	})

	ginkgo.Describe("GetUser", func() {
		ginkgo.It("should return a flat projection without the password digest", func() {
			repo.addUser(&User{
				ID:           1,
				Username:     "dina",
				Email:        "dina@example.com",
				PasswordHash: "digest",
				IsActive:     true,
				Roles: []Role{
					{ID: 1, Name: "Admin", RolePermissions: []RolePermission{
						{RoleID: 1, PermissionID: 9, Permission: nil},
						{RoleID: 1, PermissionID: 1, Permission: &Permission{ID: 1, Name: "CanEditUsers"}},
					}},
				},
			})

			detail, err := service.GetUser(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(detail.Username).To(gomega.Equal("dina"))
			gomega.Expect(detail.Roles).To(gomega.HaveLen(1))
			gomega.Expect(detail.Roles[0].Permissions).To(gomega.HaveLen(1))
		})

		ginkgo.It("should return not found for an unknown id", func() {
			_, err := service.GetUser(ctx, 99)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})
	})

	ginkgo.Describe("UpdateUser", func() {
		ginkgo.BeforeEach(func() {
			repo.addUser(&User{ID: 1, Username: "dina", Email: "dina@example.com"})
			repo.rolesByID[1] = Role{ID: 1, Name: "Admin"}
		})

		ginkgo.It("should replace the role assignment set", func() {
			err := service.UpdateUser(ctx, 1, UpdateUserDTO{
				Username: "dina",
				Email:    "dina@example.com",
				RoleIDs:  []int64{1, 999},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.usersByID[1].Roles).To(gomega.HaveLen(1))
		})

		ginkgo.It("should return not found for an unknown user", func() {
			err := service.UpdateUser(ctx, 99, UpdateUserDTO{Username: "x", Email: "x@example.com"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("should map a duplicate identity to a conflict", func() {
			repo.failUpdate = ErrDuplicateKey

			err := service.UpdateUser(ctx, 1, UpdateUserDTO{Username: "dina", Email: "taken@example.com"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(409))
		})
	})
})
