package mint

import (
	"errors"

	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/memo"
	"github.com/orbital-atlas/mint/signers"
	"github.com/orbital-atlas/mint/wallet"
)

// Error codes for every way a mint attempt can fail. Collaborators
// receive these as structured (code + message) values, never raw
// internal errors, so they can decide whether a retry affordance makes
// sense.
const (
	ErrCodeWalletNotConfigured = "wallet_not_configured"
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodePayloadTooLarge     = "payload_too_large"
	ErrCodeInsufficientBalance = "insufficient_balance"
	ErrCodeRPCUnavailable      = "rpc_unavailable"
	ErrCodeBlockhashExpired    = "blockhash_expired"
	ErrCodeConfirmationTimeout = "confirmation_timeout"
	ErrCodeUserRejected        = "user_rejected_signature"
	ErrCodeProviderUnavailable = "provider_unavailable"
	ErrCodeTransactionFailed   = "transaction_failed"
	ErrCodeInternal            = "internal_error"
)

// ErrInsufficientBalance is returned by the pre-submit balance check.
var ErrInsufficientBalance = errors.New("insufficient fee payer balance")

// MintError is the structured form of a mint failure.
type MintError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	cause error
}

func (e *MintError) Error() string { return e.Code + ": " + e.Message }
func (e *MintError) Unwrap() error { return e.cause }

// AsMintError classifies any error from the mint pipeline into a
// MintError. Errors that already carry a code pass through unchanged.
func AsMintError(err error) *MintError {
	if err == nil {
		return nil
	}

	var me *MintError
	if errors.As(err, &me) {
		return me
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(err, wallet.ErrNotConfigured):
		code = ErrCodeWalletNotConfigured
	case errors.Is(err, memo.ErrMissingLocationID):
		code = ErrCodeInvalidRequest
	case errors.Is(err, memo.ErrTooLarge):
		code = ErrCodePayloadTooLarge
	case errors.Is(err, ErrInsufficientBalance):
		code = ErrCodeInsufficientBalance
	case errors.Is(err, signers.ErrRejected):
		code = ErrCodeUserRejected
	case errors.Is(err, signers.ErrProviderUnavailable):
		code = ErrCodeProviderUnavailable
	case errors.Is(err, chain.ErrBlockhashExpired):
		code = ErrCodeBlockhashExpired
	case errors.Is(err, chain.ErrConfirmationTimeout):
		code = ErrCodeConfirmationTimeout
	default:
		var txErr *chain.TxFailedError
		var rpcErr *chain.RPCError
		if errors.As(err, &txErr) {
			code = ErrCodeTransactionFailed
		} else if errors.As(err, &rpcErr) {
			code = ErrCodeRPCUnavailable
		}
	}

	return &MintError{Code: code, Message: err.Error(), cause: err}
}

// NewMintError builds a MintError directly, for failures that
// originate outside the pipeline (e.g. request validation at the HTTP
// boundary).
func NewMintError(code, message string) *MintError {
	return &MintError{Code: code, Message: message}
}
