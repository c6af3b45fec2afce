package mint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/memo"
	"github.com/orbital-atlas/mint/signers"
)

// WalletStatus describes the orchestrator's current user wallet
// session, if any.
type WalletStatus struct {
	Connected bool   `json:"connected"`
	PublicKey string `json:"public_key,omitempty"`
}

// Orchestrator unifies the two custody paths behind one Mint call.
// With a connected user wallet session it builds and signs locally
// against a public RPC endpoint; otherwise it calls the Mint Service
// API and lets the service-held wallet pay. Callers get the same
// Result shape either way.
type Orchestrator struct {
	serviceURL string
	rpcURL     string
	cluster    string
	session    *signers.Session
	httpClient *http.Client
	log        zerolog.Logger

	// newRPC is swappable so tests can run the wallet path against a
	// fake endpoint.
	newRPC func(endpoint string) chain.Client
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRPCEndpoint sets the public RPC endpoint for the user-custody
// path.
func WithRPCEndpoint(url string) OrchestratorOption {
	return func(o *Orchestrator) { o.rpcURL = url }
}

// WithOrchestratorCluster sets the network name used in explorer URLs.
func WithOrchestratorCluster(cluster string) OrchestratorOption {
	return func(o *Orchestrator) { o.cluster = cluster }
}

// WithHTTPClient replaces the HTTP client used to reach the service.
func WithHTTPClient(c *http.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.httpClient = c }
}

// WithOrchestratorLogger sets the structured logger.
func WithOrchestratorLogger(log zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = log }
}

// WithRPCFactory replaces the RPC client constructor.
func WithRPCFactory(f func(endpoint string) chain.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.newRPC = f }
}

// NewOrchestrator builds an orchestrator that reaches the Mint Service
// API at serviceURL.
func NewOrchestrator(serviceURL string, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		serviceURL: serviceURL,
		rpcURL:     "https://api.devnet.solana.com",
		cluster:    DefaultCluster,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        zerolog.Nop(),
		newRPC:     chain.NewRPCClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ConnectWallet attaches a user wallet session. Subsequent Mint calls
// take the user-custody path until DisconnectWallet.
func (o *Orchestrator) ConnectWallet(session *signers.Session) {
	o.session = session
}

// DisconnectWallet drops the user wallet session.
func (o *Orchestrator) DisconnectWallet() {
	o.session = nil
}

// WalletStatus reports the current session state.
func (o *Orchestrator) WalletStatus() WalletStatus {
	if !o.session.Connected() {
		return WalletStatus{}
	}
	return WalletStatus{Connected: true, PublicKey: o.session.PublicKey().String()}
}

// Mint anchors req on chain. The only branching here is custody
// selection: a connected session means the user signs and pays,
// otherwise the service does. A user rejection surfaces as-is and
// never silently falls back to the service path.
func (o *Orchestrator) Mint(ctx context.Context, req Request) (*Result, error) {
	if o.session.Connected() {
		return o.MintViaWallet(ctx, req)
	}
	return o.MintViaService(ctx, req)
}

// MintViaWallet runs the user-custody path: build locally against the
// public RPC endpoint, sign through the wallet session.
func (o *Orchestrator) MintViaWallet(ctx context.Context, req Request) (*Result, error) {
	minter := NewMinter(o.newRPC(o.rpcURL),
		WithCluster(o.cluster),
		WithLogger(o.log),
	)
	return minter.Mint(ctx, UserCustody{Session: o.session}, req)
}

// serviceMintResponse mirrors the Mint Service API's response body.
type serviceMintResponse struct {
	Success     bool         `json:"success"`
	TxHash      string       `json:"tx_hash,omitempty"`
	ExplorerURL string       `json:"explorer_url,omitempty"`
	MemoContent *memo.Record `json:"memo_content,omitempty"`
	Code        string       `json:"code,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// MintViaService runs the service-custody path by calling POST /mint
// on the Mint Service API.
func (o *Orchestrator) MintViaService(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal mint request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.serviceURL+"/mint", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build mint request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewMintError(ErrCodeRPCUnavailable, fmt.Sprintf("mint service unreachable: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mint response: %w", err)
	}

	var out serviceMintResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode mint response (status %d): %w", resp.StatusCode, err)
	}

	if !out.Success {
		code := out.Code
		if code == "" {
			code = ErrCodeInternal
		}
		return nil, NewMintError(code, out.Error)
	}

	result := &Result{
		Signature:   out.TxHash,
		ExplorerURL: out.ExplorerURL,
	}
	if out.MemoContent != nil {
		result.Memo = *out.MemoContent
	}
	return result, nil
}
