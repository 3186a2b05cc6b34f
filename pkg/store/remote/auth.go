package remote

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// AuthProvider authenticates the SurrealDB connection and names the owner
// every row is scoped to. The store calls SignIn on connect and once more,
// transparently, when a request fails with an expired session; a second
// failure surfaces as an AuthError.
type AuthProvider interface {
	SignIn(ctx context.Context, db *surrealdb.DB) error

	// Owner returns the tenant key stamped on every row this user writes
	// and filtered on every read.
	Owner() string
}

// Credentials is the basic username/password AuthProvider.
type Credentials struct {
	Username string
	Password string
}

var _ AuthProvider = (*Credentials)(nil)

// SignIn authenticates with the stored credentials.
func (c *Credentials) SignIn(ctx context.Context, db *surrealdb.DB) error {
	if c.Username == "" {
		return nil
	}
	if _, err := db.SignIn(ctx, map[string]any{
		"user": c.Username,
		"pass": c.Password,
	}); err != nil {
		return fmt.Errorf("sign in as %s: %w", c.Username, err)
	}
	return nil
}

// Owner scopes rows by username.
func (c *Credentials) Owner() string { return c.Username }
