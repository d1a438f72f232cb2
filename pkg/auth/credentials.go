package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/courier-chat/courier/pkg/storage"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// CredentialStore is the slice of the user store the verifier depends on.
type CredentialStore interface {
	GetCredential(ctx context.Context, username string) (*storage.Credential, error)
	TouchLastLogin(ctx context.Context, username string) error
}

// Hasher hashes plaintext passwords for storage at registration.
type Hasher struct {
	cost int
}

// NewHasher creates a bcrypt hasher with the given cost. Costs outside the
// bcrypt range fall back to DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verifier checks candidate passwords against stored hashes. Verification is
// pure with respect to stored state; recording a successful login is the
// separate, explicit RecordLogin step.
type Verifier struct {
	store  CredentialStore
	logger *slog.Logger

	// dummyHash is compared against when the username is unknown, so the
	// unknown-user path costs the same as a wrong-password comparison.
	dummyHash []byte
}

// NewVerifier creates a credential verifier backed by the given store.
func NewVerifier(store CredentialStore, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("courier.verifier.dummy"), DefaultBcryptCost)
	if err != nil {
		// GenerateFromPassword only fails on an out-of-range cost.
		panic(fmt.Sprintf("auth: generating dummy hash: %v", err))
	}
	return &Verifier{store: store, logger: logger, dummyHash: dummy}
}

// Verify reports whether candidate matches the stored password for username.
// An unknown username and a wrong password are indistinguishable: both
// return (false, nil). A store infrastructure fault is returned as an error
// and must not be collapsed into an authentication failure by callers.
func (v *Verifier) Verify(ctx context.Context, username, candidate string) (bool, error) {
	cred, err := v.store.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a comparison anyway so timing does not reveal existence.
			bcrypt.CompareHashAndPassword(v.dummyHash, []byte(candidate))
			return false, nil
		}
		return false, fmt.Errorf("looking up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(candidate)); err != nil {
		return false, nil
	}
	return true, nil
}

// RecordLogin updates the user's last-login timestamp after a successful
// verification. The write is best-effort: a failure is logged and swallowed,
// because the authentication result is already decided and a bookkeeping
// fault must not flip it.
func (v *Verifier) RecordLogin(ctx context.Context, username string) {
	if err := v.store.TouchLastLogin(ctx, username); err != nil {
		v.logger.Warn("recording login timestamp failed",
			"username", username,
			"error", err,
		)
	}
}
