package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPinMismatch = errors.New("step-up pin does not match")
	ErrWeakPin     = errors.New("step-up pin must be at least 4 digits")
	ErrNoPinSet    = errors.New("no step-up pin provisioned for member")
)

// PinStore is the persistence contract for step-up PIN hashes.
// Both ledger stores implement it.
type PinStore interface {
	SetPinHash(ctx context.Context, memberID string, hash []byte) error
	GetPinHash(ctx context.Context, memberID string) ([]byte, error)
}

// PinVerifier checks step-up verification PINs against bcrypt hashes.
// Plaintext PINs are never stored.
type PinVerifier struct {
	store PinStore
}

// NewPinVerifier creates a verifier backed by the given store.
func NewPinVerifier(store PinStore) *PinVerifier {
	return &PinVerifier{store: store}
}

// Provision hashes and stores a member's PIN, replacing any previous one.
func (v *PinVerifier) Provision(ctx context.Context, memberID, pin string) error {
	if len(pin) < 4 {
		return ErrWeakPin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	if err := v.store.SetPinHash(ctx, memberID, hash); err != nil {
		return fmt.Errorf("failed to store pin hash: %w", err)
	}
	return nil
}

// Verify compares a presented PIN against the member's stored hash.
// Returns ErrNoPinSet when the member has none, ErrPinMismatch on a wrong
// PIN, nil on success.
func (v *PinVerifier) Verify(ctx context.Context, memberID, pin string) error {
	hash, err := v.store.GetPinHash(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoPinSet, err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(pin)); err != nil {
		return ErrPinMismatch
	}
	return nil
}
