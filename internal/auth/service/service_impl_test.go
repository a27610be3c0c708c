package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"github.com/alphaedge/backend/internal/auth/google"
	authservice "github.com/alphaedge/backend/internal/auth/service"
	"github.com/alphaedge/backend/internal/auth/token"
	"github.com/alphaedge/backend/internal/clock"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	userrepo "github.com/alphaedge/backend/internal/user/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubVerifier struct {
	identity *google.Identity
	err      error
}

func (s *stubVerifier) VerifyIDToken(ctx context.Context, rawToken string) (*google.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type fixture struct {
	db      *gorm.DB
	clk     *clock.FakeClock
	tokens  *token.Manager
	google  *stubVerifier
	authSvc authdomain.Service
}

func newFixture(t *testing.T, nodeID int64) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	tokens := token.NewManager("test-secret", clk)
	verifier := &stubVerifier{err: authdomain.ErrGoogleTokenInvalid}

	authSvc := authservice.NewService(authservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		UserRepo: userrepo.Provide(),
		Tokens:   tokens,
		Google:   verifier,
	})

	return &fixture{db: db, clk: clk, tokens: tokens, google: verifier, authSvc: authSvc}
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30)

	resp, err := f.authSvc.Signup(ctx, authdomain.SignupRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %s", resp.TokenType)
	}
	if resp.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", resp.Email)
	}

	claims, err := f.tokens.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("expected claims email alice@example.com, got %s", claims.Email)
	}

	login, err := f.authSvc.Login(ctx, authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.UserID != resp.UserID {
		t.Fatalf("expected same user, got %s and %s", resp.UserID, login.UserID)
	}

	_, err = f.authSvc.Login(ctx, authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 31)

	req := authdomain.SignupRequest{Email: "bob@example.com", Password: "password-1", Name: "Bob"}
	if _, err := f.authSvc.Signup(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, err := f.authSvc.Signup(ctx, req)
	if !errors.Is(err, userdomain.ErrUserExists) {
		t.Fatalf("expected user exists, got %v", err)
	}
}

func TestGoogleLoginCreatesUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 32)
	f.google.err = nil
	f.google.identity = &google.Identity{
		Subject: "google-sub-1",
		Email:   "carol@example.com",
		Name:    "Carol",
	}

	resp, err := f.authSvc.GoogleLogin(ctx, authdomain.GoogleLoginRequest{IDToken: "stub"})
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if resp.Email != "carol@example.com" {
		t.Fatalf("expected carol@example.com, got %s", resp.Email)
	}

	// Second login resolves to the same account.
	again, err := f.authSvc.GoogleLogin(ctx, authdomain.GoogleLoginRequest{IDToken: "stub"})
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if again.UserID != resp.UserID {
		t.Fatalf("expected same user, got %s and %s", resp.UserID, again.UserID)
	}

	var count int64
	if err := f.db.Raw("SELECT COUNT(1) FROM users").Scan(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestGoogleLoginLinksPasswordAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 33)

	signup, err := f.authSvc.Signup(ctx, authdomain.SignupRequest{
		Email:    "dave@example.com",
		Password: "password-1",
		Name:     "Dave",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	f.google.err = nil
	f.google.identity = &google.Identity{
		Subject: "google-sub-dave",
		Email:   "dave@example.com",
		Name:    "Dave",
	}

	resp, err := f.authSvc.GoogleLogin(ctx, authdomain.GoogleLoginRequest{IDToken: "stub"})
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if resp.UserID != signup.UserID {
		t.Fatalf("expected linked account %s, got %s", signup.UserID, resp.UserID)
	}

	var subject string
	if err := f.db.Raw("SELECT google_subject FROM users WHERE email = ?", "dave@example.com").Scan(&subject).Error; err != nil {
		t.Fatalf("scan subject: %v", err)
	}
	if subject != "google-sub-dave" {
		t.Fatalf("expected linked subject, got %q", subject)
	}
}

func TestGoogleLoginRejectsBadToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 34)

	_, err := f.authSvc.GoogleLogin(ctx, authdomain.GoogleLoginRequest{IDToken: "bad"})
	if !errors.Is(err, authdomain.ErrGoogleTokenInvalid) {
		t.Fatalf("expected google token invalid, got %v", err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT,
			google_subject TEXT,
			active_subscription_id BIGINT,
			subscription_status TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
