package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/handler/http/response"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type deviceIDKey struct{}

// DeviceID returns the device id of an authenticated request.
func DeviceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey{}).(string)
	return id, ok
}

// DeviceAuth runs after jwtauth.Verifier. A request without a token passes
// unless required is set; a token that is present must always be valid.
func DeviceAuth(svc jwt.Service, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if errors.Is(err, jwtauth.ErrNoTokenFound) && !required {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if svc.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, jwt.ErrTokenRevoked)
				return
			}

			deviceID, err := jwt.DeviceID(token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), deviceIDKey{}, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
