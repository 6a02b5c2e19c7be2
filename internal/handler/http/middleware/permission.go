package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
)

// RequirePermission runs the RBP gate for the caller before the route handler.
// Services check again; this only rejects early.
func RequirePermission(gate rbp.Gate, permission rbp.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.Authorize(r.Context(), permission); err != nil {
				response.HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
