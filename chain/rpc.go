// Package chain assembles, submits, and confirms the memo
// transactions that anchor feasibility records on Solana.
package chain

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Blockhash pairs a recent blockhash with the last block height at
// which the ledger will still accept a transaction built on it. A
// transaction built on an expired blockhash can never confirm and
// must be rebuilt, never resubmitted.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// SignatureStatus is the subset of a transaction's status the
// confirmation loop inspects.
type SignatureStatus struct {
	// Confirmed is true once the transaction reached at least
	// "confirmed" commitment.
	Confirmed bool
	// Err carries the ledger's execution error verbatim; nil means the
	// transaction executed successfully.
	Err interface{}
}

// Client is the minimal RPC surface the minting flow needs. It exists
// as an interface so tests can substitute a fake endpoint and count
// network calls.
type Client interface {
	LatestBlockhash(ctx context.Context) (Blockhash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus returns nil (and no error) while the ledger has
	// not yet observed the signature.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

// RPCError wraps a transport or node failure from the RPC endpoint.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string { return fmt.Sprintf("solana rpc: %s: %v", e.Op, e.Err) }
func (e *RPCError) Unwrap() error { return e.Err }

// rpcClient adapts the solana-go RPC client to the Client interface.
type rpcClient struct {
	c *rpc.Client
}

// NewRPCClient returns a Client backed by the JSON-RPC node at
// endpoint.
func NewRPCClient(endpoint string) Client {
	return &rpcClient{c: rpc.New(endpoint)}
}

func (r *rpcClient) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	out, err := r.c.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return Blockhash{}, &RPCError{Op: "getLatestBlockhash", Err: err}
	}
	return Blockhash{
		Hash:                 out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

func (r *rpcClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := r.c.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, &RPCError{Op: "sendTransaction", Err: err}
	}
	return sig, nil
}

func (r *rpcClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	out, err := r.c.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, &RPCError{Op: "getSignatureStatuses", Err: err}
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	st := out.Value[0]
	confirmed := st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		st.ConfirmationStatus == rpc.ConfirmationStatusFinalized
	return &SignatureStatus{Confirmed: confirmed, Err: st.Err}, nil
}

func (r *rpcClient) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := r.c.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, &RPCError{Op: "getBalance", Err: err}
	}
	return out.Value, nil
}

func (r *rpcClient) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := r.c.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, &RPCError{Op: "getBlockHeight", Err: err}
	}
	return height, nil
}
