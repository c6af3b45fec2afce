// Package server exposes the Mint Service API: POST /mint for the
// service-custody path and GET /health for liveness checks.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	mint "github.com/orbital-atlas/mint"
	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/memo"
	"github.com/orbital-atlas/mint/wallet"
)

// mintRequestSchema validates the POST /mint body before it is
// decoded. Missing location_id is a client error, never retried.
const mintRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["location_id"],
  "properties": {
    "location_id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "capacity_mw": {"type": "number"},
    "grade": {"type": "string"},
    "report_hash": {"type": "string"}
  },
  "additionalProperties": false
}`

// Minter is what the HTTP layer needs from the mint pipeline.
type Minter interface {
	Mint(ctx context.Context, custody mint.CustodyMode, req mint.Request) (*mint.Result, error)
}

// Server wires the minter, wallet store, and RPC client behind the
// HTTP surface. Wallet may be nil when no keypair loaded at startup:
// /health reports the degraded state and /mint refuses with 503.
type Server struct {
	minter Minter
	wallet *wallet.Store
	rpc    chain.Client
	log    zerolog.Logger

	// ConfirmBudget caps how long a /mint call keeps confirming after
	// the client disconnects. Once broadcast, a transaction is the
	// ledger's problem, not the caller's.
	ConfirmBudget time.Duration

	schema *gojsonschema.Schema
}

// New builds a Server. Panics if the embedded request schema does not
// compile, which is a programming error.
func New(minter Minter, w *wallet.Store, rpc chain.Client, log zerolog.Logger) *Server {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(mintRequestSchema))
	if err != nil {
		panic("server: invalid mint request schema: " + err.Error())
	}
	return &Server{
		minter:        minter,
		wallet:        w,
		rpc:           rpc,
		log:           log,
		ConfirmBudget: 90 * time.Second,
		schema:        schema,
	}
}

// Router returns the configured gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(permissiveCORS())

	r.GET("/health", s.handleHealth)
	r.POST("/mint", s.handleMint)
	return r
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		start := time.Now()
		c.Next()

		s.log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func permissiveCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type healthResponse struct {
	WalletLoaded    bool    `json:"wallet_loaded"`
	Wallet          string  `json:"wallet,omitempty"`
	BalanceLamports *uint64 `json:"balance_lamports"`
}

// handleHealth reports wallet-loaded state and last-observed balance.
// It never fails the process: a balance fetch error just leaves the
// balance null.
func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{WalletLoaded: s.wallet != nil}
	if s.wallet != nil {
		resp.Wallet = s.wallet.PublicKey().String()
		if balance, err := s.wallet.Balance(c.Request.Context(), s.rpc); err == nil {
			resp.BalanceLamports = &balance
		}
	}
	c.JSON(http.StatusOK, resp)
}

type mintResponse struct {
	Success     bool         `json:"success"`
	TxHash      string       `json:"tx_hash,omitempty"`
	ExplorerURL string       `json:"explorer_url,omitempty"`
	MemoContent *memo.Record `json:"memo_content,omitempty"`
	Code        string       `json:"code,omitempty"`
	Error       string       `json:"error,omitempty"`
}

func (s *Server) handleMint(c *gin.Context) {
	if s.wallet == nil {
		s.writeError(c, mint.NewMintError(mint.ErrCodeWalletNotConfigured, "no wallet loaded; mint path unavailable"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.writeError(c, mint.NewMintError(mint.ErrCodeInvalidRequest, "unreadable request body"))
		return
	}

	validation, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		s.writeError(c, mint.NewMintError(mint.ErrCodeInvalidRequest, "request body is not valid JSON"))
		return
	}
	if !validation.Valid() {
		s.writeError(c, mint.NewMintError(mint.ErrCodeInvalidRequest, validation.Errors()[0].String()))
		return
	}

	var req mint.Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(c, mint.NewMintError(mint.ErrCodeInvalidRequest, "request body is not valid JSON"))
		return
	}

	// A client disconnect must not cancel a broadcast in flight:
	// confirmation continues on a detached context up to the server's
	// own budget, and the result is simply discarded if nobody is left
	// to read it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.ConfirmBudget)
	defer cancel()

	result, err := s.minter.Mint(ctx, mint.ServiceCustody{Wallet: s.wallet}, req)
	if err != nil {
		s.writeError(c, mint.AsMintError(err))
		return
	}

	c.JSON(http.StatusCreated, mintResponse{
		Success:     true,
		TxHash:      result.Signature,
		ExplorerURL: result.ExplorerURL,
		MemoContent: &result.Memo,
	})
}

func (s *Server) writeError(c *gin.Context, err *mint.MintError) {
	s.log.Error().Str("code", err.Code).Str("error", err.Message).Str("path", c.Request.URL.Path).Msg("mint request failed")
	c.JSON(statusForCode(err.Code), mintResponse{
		Success: false,
		Code:    err.Code,
		Error:   err.Message,
	})
}

// statusForCode maps the error taxonomy onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case mint.ErrCodeWalletNotConfigured:
		return http.StatusServiceUnavailable
	case mint.ErrCodeInvalidRequest, mint.ErrCodePayloadTooLarge:
		return http.StatusBadRequest
	case mint.ErrCodeInsufficientBalance:
		return http.StatusPaymentRequired
	case mint.ErrCodeRPCUnavailable, mint.ErrCodeTransactionFailed:
		return http.StatusBadGateway
	case mint.ErrCodeBlockhashExpired, mint.ErrCodeConfirmationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
