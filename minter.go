package mint

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"

	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/memo"
)

// DefaultCluster is the network every knob defaults to.
const DefaultCluster = "devnet"

// DefaultMaxBuildAttempts bounds the rebuild loop after blockhash
// expiry so a persistently slow network cannot loop forever.
const DefaultMaxBuildAttempts = 3

// Minter runs the encode → build → sign → submit → confirm pipeline.
// Mint attempts are independent: nothing is serialized across
// concurrent calls, and the ledger's own blockhash/replay protection
// is what prevents conflicting state.
type Minter struct {
	rpc       chain.Client
	submitter *chain.Submitter
	encoder   *memo.Encoder
	log       zerolog.Logger

	cluster          string
	maxBuildAttempts int
	minBalance       uint64
}

// MinterOption configures a Minter.
type MinterOption func(*Minter)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) MinterOption {
	return func(m *Minter) { m.log = log }
}

// WithClock injects the clock used to stamp memo timestamps.
func WithClock(clk clock.Clock) MinterOption {
	return func(m *Minter) { m.encoder = memo.NewEncoderWithClock(clk) }
}

// WithCluster sets the network name used in explorer URLs.
func WithCluster(cluster string) MinterOption {
	return func(m *Minter) { m.cluster = cluster }
}

// WithMaxBuildAttempts bounds the rebuild-after-expiry loop.
func WithMaxBuildAttempts(n int) MinterOption {
	return func(m *Minter) {
		if n > 0 {
			m.maxBuildAttempts = n
		}
	}
}

// WithMinBalance enables the pre-submit fee-payer balance check, in
// lamports. Zero disables it; the ledger's own fee-payer check still
// applies either way.
func WithMinBalance(lamports uint64) MinterOption {
	return func(m *Minter) { m.minBalance = lamports }
}

// WithSubmitter replaces the default submitter, e.g. to tune timeouts.
func WithSubmitter(s *chain.Submitter) MinterOption {
	return func(m *Minter) { m.submitter = s }
}

// NewMinter builds a Minter over the given RPC client.
func NewMinter(rpc chain.Client, opts ...MinterOption) *Minter {
	m := &Minter{
		rpc:              rpc,
		encoder:          memo.NewEncoder(),
		log:              zerolog.Nop(),
		cluster:          DefaultCluster,
		maxBuildAttempts: DefaultMaxBuildAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.submitter == nil {
		m.submitter = chain.NewSubmitter(rpc, m.log)
	}
	return m
}

// Mint anchors req on chain under the given custody mode and returns
// the confirmed transaction's signature, explorer URL, and the decoded
// memo record.
//
// Validation failures (missing location_id, oversized payload) are
// resolved locally, before any network call. On blockhash expiry the
// whole build is retried with a fresh blockhash, bounded by
// maxBuildAttempts; every other failure surfaces on the first
// occurrence.
func (m *Minter) Mint(ctx context.Context, custody CustodyMode, req Request) (*Result, error) {
	rec, data, err := m.encoder.Encode(req)
	if err != nil {
		return nil, AsMintError(err)
	}

	signer, err := custody.signer()
	if err != nil {
		return nil, AsMintError(err)
	}
	feePayer := signer.PublicKey()

	if m.minBalance > 0 {
		balance, err := m.rpc.Balance(ctx, feePayer)
		if err != nil {
			return nil, AsMintError(fmt.Errorf("balance check: %w", err))
		}
		if balance < m.minBalance {
			return nil, AsMintError(fmt.Errorf("%w: %d lamports, need %d", ErrInsufficientBalance, balance, m.minBalance))
		}
	}

	log := m.log.With().Str("location_id", req.LocationID).Str("fee_payer", feePayer.String()).Logger()

	var lastErr error
	for attempt := 1; attempt <= m.maxBuildAttempts; attempt++ {
		// A blockhash is single-use state: fetched fresh per build,
		// never reused across attempts.
		recent, err := m.rpc.LatestBlockhash(ctx)
		if err != nil {
			return nil, AsMintError(err)
		}

		tx, err := chain.BuildMemoTransaction(feePayer, data, recent)
		if err != nil {
			return nil, AsMintError(fmt.Errorf("build transaction: %w", err))
		}

		if err := signer.SignTransaction(ctx, tx); err != nil {
			return nil, AsMintError(err)
		}

		sig, err := m.submitter.Submit(ctx, tx)
		if err != nil {
			return nil, AsMintError(err)
		}

		err = m.submitter.Confirm(ctx, sig, recent.LastValidBlockHeight)
		if errors.Is(err, chain.ErrBlockhashExpired) {
			log.Warn().Int("attempt", attempt).Msg("blockhash expired, rebuilding")
			lastErr = err
			continue
		}
		if err != nil {
			return nil, AsMintError(err)
		}

		log.Info().Str("signature", sig.String()).Int("attempt", attempt).Msg("record minted")
		return &Result{
			Signature:   sig.String(),
			ExplorerURL: ExplorerURL(sig.String(), m.cluster),
			Memo:        rec,
		}, nil
	}

	return nil, AsMintError(fmt.Errorf("gave up after %d build attempts: %w", m.maxBuildAttempts, lastErr))
}
