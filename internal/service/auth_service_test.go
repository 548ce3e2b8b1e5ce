package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ewillweb/internal/db"
)

func TestGormAuthenticator(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := db.EnsureUser(gdb, "admin", "secret"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	auth := NewGormAuthenticator(gdb)

	admin, err := auth.Authenticate(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}
	if admin.Username != "admin" || admin.ID == 0 {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if _, err := auth.Authenticate(context.Background(), "admin", "wrong"); !errors.Is(err, db.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestStaticAuthenticator(t *testing.T) {
	auth, err := NewStaticAuthenticator("root", "pw")
	if err != nil {
		t.Fatalf("new static authenticator: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), "root", "pw"); err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), "root", "nope"); !errors.Is(err, db.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	empty, _ := NewStaticAuthenticator("", "")
	if _, err := empty.Authenticate(context.Background(), "", ""); !errors.Is(err, db.ErrInvalidCredentials) {
		t.Fatalf("expected unconfigured authenticator to reject, got %v", err)
	}
}
