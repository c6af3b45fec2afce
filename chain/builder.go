package chain

import (
	"errors"

	solana "github.com/gagliardetto/solana-go"
)

// MemoProgramID is the fixed, publicly known memo program every record
// is written through. Client and service share this constant so both
// custody paths produce ledger-compatible instructions.
var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// BuildMemoTransaction assembles an unsigned transaction carrying a
// single memo instruction: memoData as instruction data, the fee payer
// as the only (signing) account.
//
// The blockhash must be freshly fetched for every call; it is the
// ledger's replay protection and bounds the transaction's lifetime.
func BuildMemoTransaction(feePayer solana.PublicKey, memoData []byte, recent Blockhash) (*solana.Transaction, error) {
	if feePayer.IsZero() {
		return nil, errors.New("fee payer is required")
	}
	if len(memoData) == 0 {
		return nil, errors.New("memo data is empty")
	}

	ix := solana.NewInstruction(
		MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(feePayer).SIGNER()},
		memoData,
	)

	return solana.NewTransactionBuilder().
		AddInstruction(ix).
		SetRecentBlockHash(recent.Hash).
		SetFeePayer(feePayer).
		Build()
}
