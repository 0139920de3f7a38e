package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/auth-service/internal"
	"github.com/frahmantamala/auth-service/internal/transport"
)

type mockServiceAPI struct {
	loginResp    *TokenResponse
	loginErr     error
	registerResp *UserResponse
	registerErr  error
	claims       *TokenClaims
	validateErr  error
}

func (m *mockServiceAPI) Register(_ context.Context, _ RegisterDTO) (*UserResponse, error) {
	return m.registerResp, m.registerErr
}

func (m *mockServiceAPI) Login(_ context.Context, _ LoginDTO) (*TokenResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockServiceAPI) ValidateToken(_ string) (*TokenClaims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.claims, nil
}

func (m *mockServiceAPI) ListUsers(_ context.Context) ([]UserDetail, error) {
	return nil, nil
}

func (m *mockServiceAPI) GetUser(_ context.Context, _ int64) (*UserDetail, error) {
	return nil, internal.ErrUserNotFound
}

func (m *mockServiceAPI) UpdateUser(_ context.Context, _ int64, _ UpdateUserDTO) error {
	return nil
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler *Handler
		mockSvc *mockServiceAPI
	)

	ginkgo.BeforeEach(func() {
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockSvc = &mockServiceAPI{}
		handler = NewHandler(transport.NewBaseHandler(testLogger), mockSvc)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return the token on success", func() {
			mockSvc.loginResp = &TokenResponse{Token: "signed-token"}

			body, _ := json.Marshal(LoginDTO{Username: "dina", Password: "secret123"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var resp TokenResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.Token).To(gomega.Equal("signed-token"))
		})

		ginkgo.It("should return 401 for invalid credentials", func() {
			mockSvc.loginErr = internal.ErrInvalidCredentials

			body, _ := json.Marshal(LoginDTO{Username: "dina", Password: "wrong"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
		})

		ginkgo.It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 400 for a validation failure", func() {
			mockSvc.loginErr = ValidationError{Msg: "username is required"}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("{}")))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should return 201 with the created user", func() {
			mockSvc.registerResp = &UserResponse{ID: 1, Username: "dina", Email: "dina@example.com", IsActive: true}

			body, _ := json.Marshal(RegisterDTO{Username: "dina", Email: "dina@example.com", Password: "secret123"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("password"))
		})

		ginkgo.It("should return 409 for a duplicate username", func() {
			mockSvc.registerErr = internal.NewDuplicateUsernameError("dina")

			body, _ := json.Marshal(RegisterDTO{Username: "dina", Email: "dina@example.com", Password: "secret123"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("DUPLICATE_USERNAME"))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var next http.Handler

		ginkgo.BeforeEach(func() {
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(claims.Username).To(gomega.Equal("dina"))
				w.WriteHeader(http.StatusOK)
			})
		})

		ginkgo.It("should pass validated claims to the next handler", func() {
			mockSvc.claims = &TokenClaims{Username: "dina", Permissions: []string{"CanEditUsers"}}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject a request without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should reject an invalid token", func() {
			mockSvc.validateErr = internal.ErrInvalidToken

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
