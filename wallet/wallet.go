// Package wallet owns the service-custody keypair: loaded once from a
// solana-keygen file at startup, read-only afterwards.
package wallet

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/signers"
)

// ErrNotConfigured means no usable keypair file was found. Fatal for
// the mint path; the health endpoint still reports it so operators can
// detect the state.
var ErrNotConfigured = errors.New("wallet not configured")

// Store holds the fee-payer keypair for the service-custody path. The
// key is immutable after Load and safe to share across concurrent
// mint attempts.
type Store struct {
	key solana.PrivateKey
}

// Load reads a solana-keygen keypair file (JSON array of 64 secret key
// bytes). A missing or corrupt file surfaces as ErrNotConfigured; the
// store is never regenerated implicitly.
func Load(path string) (*Store, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotConfigured, path, err)
	}
	return &Store{key: key}, nil
}

// PublicKey returns the wallet's public key.
func (s *Store) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Signer returns the service-custody signing strategy over this
// wallet's key.
func (s *Store) Signer() (*signers.Local, error) {
	return signers.NewLocal(s.key)
}

// Balance queries the wallet's lamport balance. The result is
// best-effort: it is re-queried per use, never cached for correctness
// decisions.
func (s *Store) Balance(ctx context.Context, rpc chain.Client) (uint64, error) {
	return rpc.Balance(ctx, s.PublicKey())
}
