package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/auth-service/internal"
)

var _ = ginkgo.Describe("JWTIssuer", func() {
	var (
		issuer *JWTIssuer
		user   *User
	)

	newIssuer := func(ttl time.Duration) *JWTIssuer {
		return NewJWTIssuer(internal.SecurityConfig{
			JWTSecret:     "test-secret",
			JWTIssuer:     "auth-service",
			JWTAudience:   "internal-apis",
			TokenDuration: ttl,
		})
	}

	ginkgo.BeforeEach(func() {
		issuer = newIssuer(time.Hour)
		user = &User{
			ID:       1,
			Username: "dina",
			Email:    "dina@example.com",
		}
	})

	ginkgo.Describe("Issue", func() {
		ginkgo.It("should issue a token that validates back to the same claims", func() {
			resolved := ResolvedClaims{
				Roles:       []string{"Admin", "Auditor"},
				Permissions: []string{"CanEditUsers", "CanViewReports"},
			}

			tokenString, err := issuer.Issue(user, resolved)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokenString).ToNot(gomega.BeEmpty())

			claims, err := issuer.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Username).To(gomega.Equal("dina"))
			gomega.Expect(claims.Email).To(gomega.Equal("dina@example.com"))
			gomega.Expect(claims.Roles).To(gomega.Equal([]string{"Admin", "Auditor"}))
			gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"CanEditUsers", "CanViewReports"}))
		})

		ginkgo.It("should carry the employee id claim as a string", func() {
			employeeID := int64(42)
			user.EmployeeID = &employeeID

			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := issuer.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.EmployeeID).To(gomega.Equal("42"))
		})

		ginkgo.It("should carry an empty employee id claim when the user has none", func() {
			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// the claim must be present, not just absent
			parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			mapClaims := parsed.Claims.(jwt.MapClaims)
			gomega.Expect(mapClaims).To(gomega.HaveKeyWithValue(ClaimEmployeeID, ""))
		})

		ginkgo.It("should emit role and permission claims as arrays even when empty", func() {
			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			mapClaims := parsed.Claims.(jwt.MapClaims)
			gomega.Expect(mapClaims[ClaimRole]).To(gomega.BeAssignableToTypeOf([]interface{}{}))
			gomega.Expect(mapClaims[ClaimPermission]).To(gomega.BeAssignableToTypeOf([]interface{}{}))
		})

		ginkgo.It("should sign with HS256", func() {
			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(parsed.Header["alg"]).To(gomega.Equal("HS256"))
		})
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.It("should reject a token signed with a different secret", func() {
			otherIssuer := NewJWTIssuer(internal.SecurityConfig{
				JWTSecret:     "other-secret",
				JWTIssuer:     "auth-service",
				JWTAudience:   "internal-apis",
				TokenDuration: time.Hour,
			})

			tokenString, err := otherIssuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject garbage input", func() {
			_, err := issuer.Validate("not-a-token")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject an expired token with the expiry error", func() {
			issuer.now = func() time.Time {
				return time.Now().Add(-2 * time.Hour)
			}

			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			issuer.now = time.Now
			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("should accept a token just inside its lifetime", func() {
			issuer.now = func() time.Time {
				return time.Now().Add(-59 * time.Minute)
			}

			tokenString, err := issuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			issuer.now = time.Now
			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a wrong issuer", func() {
			otherIssuer := NewJWTIssuer(internal.SecurityConfig{
				JWTSecret:     "test-secret",
				JWTIssuer:     "someone-else",
				JWTAudience:   "internal-apis",
				TokenDuration: time.Hour,
			})

			tokenString, err := otherIssuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a wrong audience", func() {
			otherIssuer := NewJWTIssuer(internal.SecurityConfig{
				JWTSecret:     "test-secret",
				JWTIssuer:     "auth-service",
				JWTAudience:   "someone-else",
				TokenDuration: time.Hour,
			})

			tokenString, err := otherIssuer.Issue(user, ResolvedClaims{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject an unsigned token", func() {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
				ClaimName: "dina",
				"iss":     "auth-service",
				"aud":     "internal-apis",
				"exp":     jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = issuer.Validate(tokenString)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})
})
