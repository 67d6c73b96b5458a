package service

import (
	"context"
	"testing"

	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: " Ann@Example.com ", Password: "secret1", Role: "host"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "ann@example.com" || res.User.Role != domain.RoleHost {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.User.PasswordHash != "" {
		t.Fatal("password hash leaked")
	}
	if res.Token == "" {
		t.Fatal("expected token")
	}

	claims, err := f.auth.TokenManager().ParseToken(res.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != res.User.ID || claims.Role != domain.RoleHost {
		t.Fatalf("unexpected claims %+v", claims)
	}

	login, err := f.auth.Login(ctx, "ANN@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login returned %s", login.User.ID)
	}

	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventUserRegistered {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := map[string]RegisterInput{
		"missing name":   {Email: "b@example.com", Password: "secret"},
		"short password": {Name: "B", Email: "b@example.com", Password: "12345"},
		"admin role":     {Name: "B", Email: "b@example.com", Password: "secret", Role: "admin"},
		"unknown role":   {Name: "B", Email: "b@example.com", Password: "secret", Role: "owner"},
		"duplicate":      {Name: "A2", Email: "A@example.com", Password: "secret"},
	}
	for name, input := range cases {
		_, err := f.auth.Register(ctx, input)
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRegisterDefaultsToGuest(t *testing.T) {
	f := newFixture(t)
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: "G", Email: "g@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Role != domain.RoleGuest {
		t.Fatalf("expected guest, got %s", res.User.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, tc := range []struct{ email, password string }{
		{"a@example.com", "wrong!"},
		{"nobody@example.com", "secret"},
	} {
		_, err := f.auth.Login(ctx, tc.email, tc.password)
		if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
			t.Fatalf("%s: expected unauthenticated, got %v", tc.email, err)
		}
	}
}

func TestLoginUpgradesStaleHashCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale, err := auth.HashPassword("secret", 5)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{Name: "Old", Email: "old@example.com", PasswordHash: stale, Role: domain.RoleGuest}
	if err := f.store.Users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.auth.Login(ctx, "old@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	stored, err := f.store.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if auth.NeedsRehash(stored.PasswordHash, 4) {
		t.Fatal("expected hash to be upgraded to cost 4")
	}
	if _, err := f.auth.Login(ctx, "old@example.com", "secret"); err != nil {
		t.Fatalf("login with upgraded hash: %v", err)
	}
}
