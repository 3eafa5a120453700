package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mmynk/splitledger/internal/metrics"
)

// RequestIDHeader carries the request id back to the caller. A caller may
// also supply one.
const RequestIDHeader = "X-Request-Id"

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and records its latency. m may be nil.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			requestID := req.Header().Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			ctx = context.WithValue(ctx, RequestIDKey, requestID)

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			} else if resp != nil {
				resp.Header().Set(RequestIDHeader, requestID)
			}
			m.ObserveRPC(procedure, code, elapsed)

			attrs := []any{
				"procedure", procedure,
				"request_id", requestID,
				"duration_ms", elapsed.Milliseconds(),
			}
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal && connectErr.Code() != connect.CodeUnknown {
					slog.WarnContext(ctx, "RPC error", append(attrs,
						"code", connectErr.Code(),
						"error", connectErr.Message())...)
				} else {
					slog.ErrorContext(ctx, "RPC error", append(attrs, "error", err)...)
				}
			} else {
				slog.InfoContext(ctx, "RPC ok", attrs...)
			}

			return resp, err
		}
	}
}
