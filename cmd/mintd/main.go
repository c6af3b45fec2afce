// Command mintd runs the record-minting service: POST /mint anchors a
// feasibility record on chain with the service-held wallet, GET
// /health reports wallet and balance state.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	mint "github.com/orbital-atlas/mint"
	"github.com/orbital-atlas/mint/chain"
	"github.com/orbital-atlas/mint/config"
	"github.com/orbital-atlas/mint/server"
	"github.com/orbital-atlas/mint/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	rpc := chain.NewRPCClient(cfg.RPCURL)

	// A missing wallet is not fatal for the process: /health keeps
	// reporting the failure state while /mint refuses to serve.
	w, err := wallet.Load(cfg.WalletPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.WalletPath).
			Msg("wallet load failed; serving in degraded mode")
		w = nil
	} else {
		log.Info().Str("wallet", w.PublicKey().String()).Msg("wallet loaded")
	}

	submitter := chain.NewSubmitter(rpc, log)
	submitter.SubmitTimeout = cfg.SubmitTimeout
	submitter.ConfirmTimeout = cfg.ConfirmTimeout

	minter := mint.NewMinter(rpc,
		mint.WithLogger(log),
		mint.WithCluster(cfg.Cluster),
		mint.WithMaxBuildAttempts(cfg.MaxBuildAttempts),
		mint.WithMinBalance(cfg.MinBalanceLamports),
		mint.WithSubmitter(submitter),
	)

	srv := server.New(minter, w, rpc, log)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Str("rpc_url", cfg.RPCURL).Str("cluster", cfg.Cluster).
		Msg("mint service listening")
	if err := srv.Router().Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
