package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.MemberID != "alice" {
		t.Errorf("MemberID = %q, want alice", claims.MemberID)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want alice", claims.Subject)
	}
}

func TestJWTManager_Generate_RequiresMember(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	if _, err := m.Generate(""); err == nil {
		t.Error("expected error for empty member id")
	}
}

func TestJWTManager_Validate_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	valid, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expired := NewJWTManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	otherKey, err := NewJWTManager("another-secret-9876543210", time.Hour).Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", valid + "x"},
		{"expired", expiredToken},
		{"wrong key", otherKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
