package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// MemberIDKey is the context key for the authenticated member id.
	MemberIDKey contextKey = "member_id"
	// RequestIDKey is the context key for the per-call request id.
	RequestIDKey contextKey = "request_id"
)

// GetMemberID extracts the member id from the context.
// Returns empty string if not found.
func GetMemberID(ctx context.Context) string {
	memberID, _ := ctx.Value(MemberIDKey).(string)
	return memberID
}

// WithMemberID returns a context carrying memberID as the caller.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, MemberIDKey, memberID)
}

// GetRequestID extracts the request id from the context.
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

// RequireAuth returns an interceptor that validates the bearer token and
// stores the caller's member id in the context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithMemberID(ctx, claims.MemberID), req)
		}
	}
}
