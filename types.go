// Package mint anchors datacenter feasibility records on Solana as
// memo transactions and returns a verifiable transaction signature.
//
// The pipeline is: encode the request into canonical memo bytes, fetch
// a fresh blockhash, build a single-instruction transaction, sign it
// under one of two custody modes, then submit and await confirmation.
package mint

import (
	"fmt"

	"github.com/orbital-atlas/mint/memo"
	"github.com/orbital-atlas/mint/signers"
	"github.com/orbital-atlas/mint/wallet"
)

// Request is the feasibility/inventory event to anchor on chain.
type Request = memo.Request

// Result is the terminal state of one successful mint attempt. The
// signature doubles as the on-chain lookup key; the memo record is
// echoed back so callers can verify what was anchored.
type Result struct {
	Signature   string      `json:"signature"`
	ExplorerURL string      `json:"explorer_url"`
	Memo        memo.Record `json:"memo_content"`
}

// ExplorerURL returns the block-explorer link for a signature on the
// given cluster.
func ExplorerURL(signature, cluster string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", signature, cluster)
}

// CustodyMode selects who holds the signing key for a mint attempt.
// It is a closed variant: ServiceCustody or UserCustody, nothing else.
// The two modes differ only in key custody; the memo bytes they commit
// to chain are byte-identical.
type CustodyMode interface {
	signer() (signers.Signer, error)
}

// ServiceCustody signs with the service-held wallet.
type ServiceCustody struct {
	Wallet *wallet.Store
}

func (c ServiceCustody) signer() (signers.Signer, error) {
	if c.Wallet == nil {
		return nil, wallet.ErrNotConfigured
	}
	return c.Wallet.Signer()
}

// UserCustody delegates signing to a connected user wallet session.
type UserCustody struct {
	Session *signers.Session
}

func (c UserCustody) signer() (signers.Signer, error) {
	if !c.Session.Connected() {
		return nil, signers.ErrProviderUnavailable
	}
	return c.Session, nil
}
