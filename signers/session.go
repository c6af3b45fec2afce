package signers

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// ErrRejected means the user declined to sign. Terminal: the
// orchestrator surfaces it immediately and never retries or falls back
// to the service-custody path.
var ErrRejected = errors.New("user rejected signature")

// ErrProviderUnavailable means the wallet provider could not be
// reached. Retryable after the session reconnects.
var ErrProviderUnavailable = errors.New("wallet provider unavailable")

// ApproveFunc asks the user's wallet provider to sign tx in place.
// Implementations bridge to whatever surface holds the user's key
// (browser extension, mobile wallet); the secret key never crosses
// this boundary. An approval has exactly three outcomes: the
// transaction comes back signed, the user declines (ErrRejected), or
// the provider is unreachable (ErrProviderUnavailable).
type ApproveFunc func(ctx context.Context, tx *solana.Transaction) error

// Session is the user-custody strategy: a read reference to a
// connected wallet session. It holds the user's public key and a
// capability to request signatures, never the secret key itself.
type Session struct {
	publicKey solana.PublicKey
	approve   ApproveFunc
}

// NewSession builds a session from the connected wallet's public key
// and its approval capability.
func NewSession(publicKey solana.PublicKey, approve ApproveFunc) (*Session, error) {
	if publicKey.IsZero() {
		return nil, errors.New("session public key is required")
	}
	if approve == nil {
		return nil, errors.New("approval capability is required")
	}
	return &Session{publicKey: publicKey, approve: approve}, nil
}

// Connected reports whether the session can request signatures.
func (s *Session) Connected() bool {
	return s != nil && s.approve != nil && !s.publicKey.IsZero()
}

// PublicKey returns the user wallet's public key.
func (s *Session) PublicKey() solana.PublicKey {
	return s.publicKey
}

// SignTransaction delegates signing to the wallet provider. The
// provider may prompt the user and may be declined; rejection comes
// back as ErrRejected, not as control flow.
func (s *Session) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if !s.Connected() {
		return ErrProviderUnavailable
	}

	if err := s.approve(ctx, tx); err != nil {
		if errors.Is(err, ErrRejected) || errors.Is(err, ErrProviderUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// A provider that returns without attaching a signature is broken,
	// not declined.
	accountIndex, err := tx.GetAccountIndex(s.publicKey)
	if err != nil {
		return fmt.Errorf("session key %s is not a transaction account: %w", s.publicKey, err)
	}
	if len(tx.Signatures) <= int(accountIndex) || tx.Signatures[accountIndex].IsZero() {
		return fmt.Errorf("%w: provider returned an unsigned transaction", ErrProviderUnavailable)
	}
	return nil
}
