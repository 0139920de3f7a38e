package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/auth-service/internal"
)

// Claim names are part of the wire contract consumed by downstream
// services; the mixed casing is deliberate.
const (
	ClaimName       = "name"
	ClaimEmail      = "email"
	ClaimRole       = "role"
	ClaimPermission = "Permission"
	ClaimEmployeeID = "IdEmpleado"
)

// JWTIssuer signs compact HS256 tokens with a single shared secret.
// Secret, issuer and audience come from startup-validated config, so a
// missing value never reaches per-request code.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewJWTIssuer(cfg internal.SecurityConfig) *JWTIssuer {
	return &JWTIssuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.TokenDuration,
		now:      time.Now,
	}
}

// Issue builds a signed token for the user with the resolved claim sets.
// The employee id claim is always present, empty when the user has none.
func (j *JWTIssuer) Issue(user *User, resolved ResolvedClaims) (string, error) {
	now := j.now()

	employeeID := ""
	if user.EmployeeID != nil {
		employeeID = strconv.FormatInt(*user.EmployeeID, 10)
	}

	roles := resolved.Roles
	if roles == nil {
		roles = []string{}
	}
	permissions := resolved.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	claims := jwt.MapClaims{
		ClaimName:       user.Username,
		ClaimEmail:      user.Email,
		ClaimRole:       roles,
		ClaimPermission: permissions,
		ClaimEmployeeID: employeeID,
		"iss":           j.issuer,
		"aud":           j.audience,
		"iat":           jwt.NewNumericDate(now),
		"exp":           jwt.NewNumericDate(now.Add(j.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, issuer, audience and expiry, and extracts
// the flat claim projection. Validity is time- and signature-based only;
// there is no revocation list.
func (j *JWTIssuer) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.secret, nil
		},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	return &TokenClaims{
		Username:    stringClaim(mapClaims, ClaimName),
		Email:       stringClaim(mapClaims, ClaimEmail),
		Roles:       stringSliceClaim(mapClaims, ClaimRole),
		Permissions: stringSliceClaim(mapClaims, ClaimPermission),
		EmployeeID:  stringClaim(mapClaims, ClaimEmployeeID),
	}, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}

func stringSliceClaim(claims jwt.MapClaims, name string) []string {
	out := []string{}
	switch v := claims[name].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	case string:
		out = append(out, v)
	}
	return out
}
