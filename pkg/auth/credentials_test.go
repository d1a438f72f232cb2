package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/courier-chat/courier/pkg/storage"
)

// fakeCredentialStore is a test credential store with configurable behavior.
type fakeCredentialStore struct {
	creds     map[string]string
	getErr    error
	touchErr  error
	touched   []string
}

func (f *fakeCredentialStore) GetCredential(_ context.Context, username string) (*storage.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	hash, ok := f.creds[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Credential{Username: username, PasswordHash: hash}, nil
}

func (f *fakeCredentialStore) TouchLastLogin(_ context.Context, username string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, username)
	return nil
}

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	return string(hash)
}

func TestVerifier_CorrectPassword(t *testing.T) {
	store := &fakeCredentialStore{creds: map[string]string{
		"alice": testHash(t, "secret123"),
	}}
	v := NewVerifier(store, slog.Default())

	ok, err := v.Verify(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true")
	}
}

func TestVerifier_WrongPassword(t *testing.T) {
	store := &fakeCredentialStore{creds: map[string]string{
		"alice": testHash(t, "secret123"),
	}}
	v := NewVerifier(store, slog.Default())

	ok, err := v.Verify(context.Background(), "alice", "wrong")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("Verify = true, want false")
	}
}

func TestVerifier_UnknownUser(t *testing.T) {
	store := &fakeCredentialStore{creds: map[string]string{}}
	v := NewVerifier(store, slog.Default())

	// An unknown user is a plain rejection, not an error: callers cannot
	// tell it apart from a wrong password.
	ok, err := v.Verify(context.Background(), "nobody", "whatever")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("Verify = true, want false")
	}
}

func TestVerifier_StoreFaultIsError(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &fakeCredentialStore{getErr: storeErr}
	v := NewVerifier(store, slog.Default())

	ok, err := v.Verify(context.Background(), "alice", "secret123")
	if err == nil {
		t.Fatal("Verify should return an error on a store fault")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("Verify error = %v, want wrapped %v", err, storeErr)
	}
	if ok {
		t.Error("Verify = true on error, want false")
	}
}

func TestVerifier_RecordLogin(t *testing.T) {
	store := &fakeCredentialStore{creds: map[string]string{}}
	v := NewVerifier(store, slog.Default())

	v.RecordLogin(context.Background(), "alice")

	if len(store.touched) != 1 || store.touched[0] != "alice" {
		t.Errorf("touched = %v, want [alice]", store.touched)
	}
}

func TestVerifier_RecordLoginSwallowsFailure(t *testing.T) {
	store := &fakeCredentialStore{touchErr: errors.New("write failed")}
	v := NewVerifier(store, slog.Default())

	// Must not panic or propagate: bookkeeping never flips an auth result.
	v.RecordLogin(context.Background(), "alice")
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Error("hash equals plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")); err != nil {
		t.Errorf("CompareHashAndPassword: %v", err)
	}
}

func TestHasher_ClampsInvalidCost(t *testing.T) {
	h := NewHasher(99)
	if h.cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", h.cost, DefaultBcryptCost)
	}

	h = NewHasher(-1)
	if h.cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", h.cost, DefaultBcryptCost)
	}
}
