package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/mmynk/booklibrary/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// LibrarianKey is the context key for the authenticated librarian.
	LibrarianKey contextKey = "librarian"
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
)

// GetLibrarian extracts the librarian name from the context.
// Returns empty string if not found.
func GetLibrarian(ctx context.Context) string {
	librarian, _ := ctx.Value(LibrarianKey).(string)
	return librarian
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

func authenticate(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	token, err := bearerToken(header)
	if err != nil {
		return nil, err
	}
	return jwtManager.Validate(token)
}

// RequireLibrarian returns an interceptor that validates librarian tokens on the
// procedures listed in protected. Other procedures pass through untouched.
func RequireLibrarian(jwtManager *auth.JWTManager, protected map[string]bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !protected[req.Spec().Procedure] {
				return next(ctx, req)
			}

			claims, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, LibrarianKey, claims.Librarian)
			return next(ctx, req)
		}
	}
}

// RequireLibrarianHTTP is the REST counterpart of RequireLibrarian: every method other
// than GET, HEAD and OPTIONS needs a valid librarian token.
func RequireLibrarianHTTP(jwtManager *auth.JWTManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authenticate(jwtManager, r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), LibrarianKey, claims.Librarian)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoniter.ConfigFastest.NewEncoder(w).Encode(map[string]string{"error": msg})
}
