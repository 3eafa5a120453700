package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
)

type ping struct{}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	token, err := jwtManager.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var seen string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetMemberID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	handler := RequireAuth(jwtManager)(next)

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"valid token", "Bearer " + token, false},
		{"lowercase scheme", "bearer " + token, false},
		{"missing header", "", true},
		{"wrong scheme", "Basic " + token, true},
		{"no token", "Bearer ", true},
		{"bad token", "Bearer not-a-token", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := handler(context.Background(), req)
			if tt.wantErr {
				if connect.CodeOf(err) != connect.CodeUnauthenticated {
					t.Errorf("expected Unauthenticated, got %v", err)
				}
				if seen != "" {
					t.Error("next handler should not run")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != "alice" {
				t.Errorf("member: expected alice, got %q", seen)
			}
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var requestID string
	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		requestID = GetRequestID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	fail := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}

	resp, err := LoggingInterceptor(m)(ok)(context.Background(), connect.NewRequest(&ping{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("request id %q is not a uuid", requestID)
	}
	if got := resp.Header().Get(RequestIDHeader); got != requestID {
		t.Errorf("response header: expected %s, got %s", requestID, got)
	}

	supplied := uuid.NewString()
	req := connect.NewRequest(&ping{})
	req.Header().Set(RequestIDHeader, supplied)
	if _, err := LoggingInterceptor(m)(ok)(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestID != supplied {
		t.Errorf("expected supplied request id %s, got %s", supplied, requestID)
	}

	if _, err := LoggingInterceptor(m)(fail)(context.Background(), connect.NewRequest(&ping{})); connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected the handler error to pass through, got %v", err)
	}

	if n := testutil.CollectAndCount(reg, "splitledger_rpc_duration_seconds"); n != 2 {
		t.Errorf("expected 2 label sets (ok, not_found), got %d", n)
	}
}

func TestLoggingInterceptor_NilMetrics(t *testing.T) {
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}
	if _, err := LoggingInterceptor(nil)(next)(context.Background(), connect.NewRequest(&ping{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
