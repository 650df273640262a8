package testutil

import (
	"context"
	"database/sql"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"

	"deliveryOps/internal/db"
	"deliveryOps/models"
	"deliveryOps/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache keeps the database alive across pooled connections.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SeedUsers inserts users; those with a CognitoSub are linked.
func SeedUsers(t *testing.T, d *sql.DB, users ...models.User) *repository.UserRepository {
	t.Helper()
	repo := repository.NewUserRepository(d)
	ctx := context.Background()
	for _, u := range users {
		if _, err := repo.Create(ctx, u.Email, u.Role); err != nil {
			t.Fatalf("seed %s: %v", u.Email, err)
		}
		if u.CognitoSub == "" {
			continue
		}
		if err := repo.LinkSubject(ctx, u.Email, u.CognitoSub); err != nil {
			t.Fatalf("link %s: %v", u.Email, err)
		}
	}
	return repo
}

// GenerateAccessToken returns an HS256 token shaped like a Cognito access token.
// An empty role omits the custom:role claim.
func GenerateAccessToken(t *testing.T, secret, sub, email, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       sub,
		"email":     email,
		"token_use": "access",
	}
	if role != "" {
		claims["custom:role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
