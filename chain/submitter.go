package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// ErrBlockhashExpired means the transaction's blockhash validity
// window elapsed before confirmation. The caller must rebuild with a
// fresh blockhash; resubmitting the same bytes can never succeed.
var ErrBlockhashExpired = errors.New("blockhash expired before confirmation")

// ErrConfirmationTimeout means the confirmation deadline elapsed with
// the outcome unknown. The transaction may still land; callers should
// re-check by signature rather than assume failure.
var ErrConfirmationTimeout = errors.New("confirmation deadline exceeded; transaction may still land")

// TxFailedError means the ledger accepted the transaction but rejected
// it during execution. Resubmitting identical bytes would fail
// identically, so this is never retried.
type TxFailedError struct {
	Reason string
}

func (e *TxFailedError) Error() string { return fmt.Sprintf("transaction failed on chain: %s", e.Reason) }

// AttemptState tracks one mint attempt through its lifecycle.
type AttemptState int

const (
	StateBuilt AttemptState = iota
	StateSigned
	StateSubmitted
	StateConfirmed
	StateFailed
	StateExpired
)

func (s AttemptState) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Submitter broadcasts signed transactions and awaits confirmation.
type Submitter struct {
	rpc Client
	log zerolog.Logger

	// SubmitRetries bounds resends of the same bytes on transient RPC
	// failures. Retrying here is safe: the ledger deduplicates by
	// signature within the blockhash window.
	SubmitRetries int
	SubmitTimeout time.Duration

	// ConfirmTimeout is the overall confirmation deadline; the poll
	// interval backs off from PollInterval up to MaxPollInterval.
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// NewSubmitter returns a Submitter with devnet-appropriate defaults.
func NewSubmitter(rpc Client, log zerolog.Logger) *Submitter {
	return &Submitter{
		rpc:             rpc,
		log:             log,
		SubmitRetries:   2,
		SubmitTimeout:   15 * time.Second,
		ConfirmTimeout:  60 * time.Second,
		PollInterval:    500 * time.Millisecond,
		MaxPollInterval: 4 * time.Second,
	}
}

// Submit broadcasts tx and returns its signature. Transient RPC
// failures are retried with backoff up to SubmitRetries times; any
// other failure surfaces immediately.
func (s *Submitter) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, s.SubmitTimeout)
	defer cancel()

	delay := s.PollInterval
	var lastErr error
	for attempt := 0; attempt <= s.SubmitRetries; attempt++ {
		sig, err := s.rpc.SendTransaction(ctx, tx)
		if err == nil {
			s.log.Debug().Str("signature", sig.String()).Str("state", StateSubmitted.String()).Msg("transaction submitted")
			return sig, nil
		}
		lastErr = err

		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) {
			return solana.Signature{}, err
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("submit failed, retrying")

		select {
		case <-ctx.Done():
			return solana.Signature{}, fmt.Errorf("submit: %w", lastErr)
		case <-time.After(delay):
		}
		delay = backoff(delay, s.MaxPollInterval)
	}
	return solana.Signature{}, fmt.Errorf("submit: %w", lastErr)
}

// Confirm polls the signature's status until it confirms, fails, or
// the blockhash window closes.
//
// Status-poll RPC failures are tolerated until the deadline: a flaky
// poll says nothing about the transaction's fate, so they surface as
// ErrConfirmationTimeout rather than a failure.
func (s *Submitter) Confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ctx, cancel := context.WithTimeout(ctx, s.ConfirmTimeout)
	defer cancel()

	delay := s.PollInterval
	for {
		status, err := s.rpc.SignatureStatus(ctx, sig)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("signature", sig.String()).Msg("status poll failed")
		case status != nil && status.Err != nil:
			s.log.Error().Str("signature", sig.String()).Str("state", StateFailed.String()).
				Interface("reason", status.Err).Msg("transaction rejected by ledger")
			return &TxFailedError{Reason: fmt.Sprintf("%v", status.Err)}
		case status != nil && status.Confirmed:
			s.log.Info().Str("signature", sig.String()).Str("state", StateConfirmed.String()).Msg("transaction confirmed")
			return nil
		case status == nil:
			// Not yet observed by the ledger. If the blockhash window
			// has closed the transaction can never land.
			height, herr := s.rpc.BlockHeight(ctx)
			if herr == nil && height > lastValidBlockHeight {
				s.log.Warn().Str("signature", sig.String()).Str("state", StateExpired.String()).
					Uint64("block_height", height).Uint64("last_valid", lastValidBlockHeight).
					Msg("blockhash window closed")
				return ErrBlockhashExpired
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrConfirmationTimeout, sig)
		case <-time.After(delay):
		}
		delay = backoff(delay, s.MaxPollInterval)
	}
}

func backoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}
