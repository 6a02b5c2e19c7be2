package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token carrying
// user_id and company_id claims.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "missing token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TypeAccess {
			response.HandleError(w, jwt.ErrInvalidTokenType)
			return
		}

		userID, _ := claims["user_id"].(string)
		companyID, _ := claims["company_id"].(string)
		if userID == "" || companyID == "" {
			response.HandleError(w, rbp.ErrMissingClaims)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
