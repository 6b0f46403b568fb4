package ports

import (
	"context"
	"time"

	"github.com/agriscience/catalog/internal/core/domain"
)

// AuthService authenticates the operator and verifies issued credentials.
type AuthService interface {
	// Login checks credentials and ownership and returns a signed token.
	Login(ctx context.Context, email, password string) (string, *domain.Session, error)
	// VerifyCredential reports whether token is a valid, unexpired and
	// unrevoked credential. Every failure is folded into ok == false.
	VerifyCredential(ctx context.Context, token string) (*domain.Session, bool)
	IsAuthorizedOwner(email string) bool
	// Logout forgets the session. It is a no-op without a revocation list.
	Logout(ctx context.Context, session *domain.Session) error
}

// RevocationList is the optional denylist consulted during verification.
type RevocationList interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Revoke denies tokenID until the given instant, after which the token
	// would have expired anyway.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}
