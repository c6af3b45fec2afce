// Package signers provides the two interchangeable signing strategies
// for mint transactions: an in-process keypair (service custody) and a
// delegated user wallet session (user custody).
//
// Both strategies sign the same serialized message, so the memo bytes
// on chain are byte-identical regardless of who held the key.
package signers

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// Signer attaches a fee-payer signature to an assembled transaction.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// attachSignature places sig at the signature slot belonging to signer
// within tx.
func attachSignature(tx *solana.Transaction, signer solana.PublicKey, sig solana.Signature) error {
	accountIndex, err := tx.GetAccountIndex(signer)
	if err != nil {
		return fmt.Errorf("signer %s is not a transaction account: %w", signer, err)
	}

	if len(tx.Signatures) <= int(accountIndex) {
		grown := make([]solana.Signature, accountIndex+1)
		copy(grown, tx.Signatures)
		tx.Signatures = grown
	}
	tx.Signatures[accountIndex] = sig
	return nil
}

// signMessage serializes the transaction message and signs it with key.
func signMessage(key solana.PrivateKey, tx *solana.Transaction) error {
	messageBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	sig, err := key.Sign(messageBytes)
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}

	return attachSignature(tx, key.PublicKey(), sig)
}

// Local is the service-custody strategy: it signs synchronously with
// an in-process secret key. The key is read-only after construction
// and safe to share across concurrent mint attempts. It is never
// logged or serialized.
type Local struct {
	key solana.PrivateKey
}

// NewLocal wraps key in a Local signer.
func NewLocal(key solana.PrivateKey) (*Local, error) {
	if len(key) == 0 {
		return nil, errors.New("private key is required")
	}
	return &Local{key: key}, nil
}

// PublicKey returns the keypair's public half.
func (l *Local) PublicKey() solana.PublicKey {
	return l.key.PublicKey()
}

// SignTransaction signs tx with the in-process key.
func (l *Local) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	return signMessage(l.key, tx)
}
