package mint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/memo"
	"github.com/orbital-atlas/mint/signers"
)

func signingSession(t *testing.T) *signers.Session {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	session, err := signers.NewSession(key.PublicKey(), func(_ context.Context, tx *solana.Transaction) error {
		local, err := signers.NewLocal(key)
		if err != nil {
			return err
		}
		return local.SignTransaction(context.Background(), tx)
	})
	require.NoError(t, err)
	return session
}

func TestOrchestratorMintViaService(t *testing.T) {
	var serviceCalls atomic.Int64
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceCalls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/mint", r.URL.Path)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "reykjavik-01", req.LocationID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(serviceMintResponse{
			Success:     true,
			TxHash:      "5fakeSigna",
			ExplorerURL: "https://explorer.solana.com/tx/5fakeSigna?cluster=devnet",
			MemoContent: &memo.Record{Type: memo.RecordType, Version: 1, LocationID: "reykjavik-01"},
		})
	}))
	defer svc.Close()

	o := NewOrchestrator(svc.URL)

	result, err := o.Mint(context.Background(), Request{LocationID: "reykjavik-01"})
	require.NoError(t, err)
	assert.Equal(t, "5fakeSigna", result.Signature)
	assert.Equal(t, memo.RecordType, result.Memo.Type)
	assert.EqualValues(t, 1, serviceCalls.Load())
}

func TestOrchestratorServiceErrorsKeepTheirCode(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(serviceMintResponse{
			Success: false,
			Code:    ErrCodePayloadTooLarge,
			Error:   "memo payload too large",
		})
	}))
	defer svc.Close()

	_, err := NewOrchestrator(svc.URL).Mint(context.Background(), Request{LocationID: "x"})
	require.Error(t, err)
	assert.Equal(t, ErrCodePayloadTooLarge, AsMintError(err).Code)
}

func TestOrchestratorServiceUnreachable(t *testing.T) {
	_, err := NewOrchestrator("http://127.0.0.1:1").Mint(context.Background(), Request{LocationID: "x"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeRPCUnavailable, AsMintError(err).Code)
}

func TestOrchestratorPrefersConnectedWallet(t *testing.T) {
	var serviceCalls atomic.Int64
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer svc.Close()

	fake := newFakeChain()
	o := NewOrchestrator(svc.URL,
		WithRPCFactory(func(string) chain.Client { return fake }),
	)
	o.ConnectWallet(signingSession(t))

	result, err := o.Mint(context.Background(), Request{LocationID: "reykjavik-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Signature)

	// The user signed and paid; the service never saw the request.
	assert.EqualValues(t, 0, serviceCalls.Load())
	assert.EqualValues(t, 1, fake.sendCalls.Load())
}

func TestOrchestratorRejectionDoesNotFallBack(t *testing.T) {
	var serviceCalls atomic.Int64
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceCalls.Add(1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(serviceMintResponse{Success: true, TxHash: "sig"})
	}))
	defer svc.Close()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	session, err := signers.NewSession(key.PublicKey(), func(context.Context, *solana.Transaction) error {
		return signers.ErrRejected
	})
	require.NoError(t, err)

	fake := newFakeChain()
	o := NewOrchestrator(svc.URL,
		WithRPCFactory(func(string) chain.Client { return fake }),
	)
	o.ConnectWallet(session)

	_, err = o.Mint(context.Background(), Request{LocationID: "reykjavik-01"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUserRejected, AsMintError(err).Code)

	// A decline is the user's answer, not a routing hint.
	assert.EqualValues(t, 0, serviceCalls.Load())
}

func TestOrchestratorWalletStatus(t *testing.T) {
	o := NewOrchestrator("http://localhost:3001")
	assert.False(t, o.WalletStatus().Connected)

	session := signingSession(t)
	o.ConnectWallet(session)
	status := o.WalletStatus()
	assert.True(t, status.Connected)
	assert.Equal(t, session.PublicKey().String(), status.PublicKey)

	o.DisconnectWallet()
	assert.False(t, o.WalletStatus().Connected)
}
