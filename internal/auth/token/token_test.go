package token

import (
	"errors"
	"testing"
	"time"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"github.com/alphaedge/backend/internal/clock"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	"github.com/bwmarrin/snowflake"
)

func testUser(t *testing.T) *userdomain.User {
	t.Helper()
	node, err := snowflake.NewNode(20)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return &userdomain.User{
		ID:    node.Generate(),
		Email: "alice@example.com",
		Name:  "Alice",
	}
}

func TestIssueAndVerify(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	manager := NewManager("test-secret", clk)
	user := testUser(t)

	tokenString, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := manager.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email != user.Email {
		t.Fatalf("expected email %s, got %s", user.Email, claims.Email)
	}
	if claims.Name != user.Name {
		t.Fatalf("expected name %s, got %s", user.Name, claims.Name)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	manager := NewManager("test-secret", clk)

	tokenString, err := manager.Issue(testUser(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(23 * time.Hour)
	if _, err := manager.Verify(tokenString); err != nil {
		t.Fatalf("expected token valid before 24h, got %v", err)
	}

	clk.Advance(2 * time.Hour)
	if _, err := manager.Verify(tokenString); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	tokenString, err := NewManager("secret-a", clk).Issue(testUser(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager("secret-b", clk).Verify(tokenString); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected signature rejection, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	manager := NewManager("test-secret", clk)

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := manager.Verify(tokenString); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Fatalf("expected rejection for %q, got %v", tokenString, err)
		}
	}
}
