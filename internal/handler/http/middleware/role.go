package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
)

func roleFromContext(r *http.Request) (user.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	roleStr, ok := claims["role"].(string)
	if !ok || !user.IsValidRole(roleStr) {
		return "", false
	}
	return user.Role(roleStr), true
}

// AdminOnly gates a route group to ADMIN principals. Services re-check
// the policy; this is only the coarse edge filter.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || role != user.RoleAdmin {
			response.Forbidden(w, "access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ApproverOnly admits MANAGER and ADMIN principals.
func ApproverOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || role == user.RoleEmployee {
			response.Forbidden(w, "access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
