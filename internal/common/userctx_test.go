package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Absent by default
	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}
	if id := ResolveUserID(ctx); id != "" {
		t.Errorf("Expected empty user id, got %q", id)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-123", Role: "admin"})

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "user-123" {
		t.Errorf("Expected user-123, got %s", got.UserID)
	}
	if !got.IsAdmin() {
		t.Error("Expected admin role")
	}
	if id := ResolveUserID(ctx); id != "user-123" {
		t.Errorf("Expected user-123, got %q", id)
	}
}

func TestUserContext_IsAdmin(t *testing.T) {
	var nilCtx *UserContext
	if nilCtx.IsAdmin() {
		t.Error("nil UserContext must not be admin")
	}
	if (&UserContext{Role: "user"}).IsAdmin() {
		t.Error("user role must not be admin")
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abcd1234")
	if got := CorrelationIDFromContext(ctx); got != "abcd1234" {
		t.Errorf("Expected abcd1234, got %q", got)
	}
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
}
