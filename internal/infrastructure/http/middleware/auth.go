package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// Policy is a named authorization policy over role claims.
type Policy int

const (
	// PolicyUser requires role User.
	PolicyUser Policy = iota
	// PolicyAdmin requires role Admin plus the active-admin requirement.
	PolicyAdmin
	// PolicyAll admits both roles plus the active-admin requirement.
	PolicyAll
)

// AuthValidator validates the bearer JWT and sets the identity in context.
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeAuthErr(w, "missing or invalid authorization")
			return
		}
		claims, err := m.issuer.ValidateAccessToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePolicy enforces a named policy on the identity set by Handler.
func RequirePolicy(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthErr(w, "unauthorized")
				return
			}
			if !policyAllows(policy, id) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden", "code": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func policyAllows(policy Policy, id Identity) bool {
	switch policy {
	case PolicyUser:
		return id.Role == domain.RoleUser
	case PolicyAdmin:
		return id.Role == domain.RoleAdmin && activeAdmin(id)
	case PolicyAll:
		return (id.Role == domain.RoleUser || id.Role == domain.RoleAdmin) && activeAdmin(id)
	}
	return false
}

// activeAdmin is the active-admin requirement: both a subject and a role
// claim must be present on the credential. Today it is only a presence
// check, not a liveness check.
func activeAdmin(id Identity) bool {
	var zero domain.UserID
	return id.UserID != zero && id.Role.String() != ""
}

func writeAuthErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
