// Package service wires the concrete clients into the analysis pipeline and
// exposes the operations shared by the CLI and the HTTP server.
package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/ai"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
	"github.com/yeetorjeet/yeetorjeet/internal/pipeline"
)

// Service owns the long-lived clients. Construct once per process; every
// analysis request gets fresh request-scoped state from the pipeline.
type Service struct {
	cfg      *config.Config
	log      zerolog.Logger
	pipeline *pipeline.Pipeline
	dex      *dataflows.DexScreenerClient
	insight  *dataflows.InsightClient
	cielo    *dataflows.CieloClient
}

// NewLogger builds the process logger from the configured level.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// New constructs every upstream client and assembles the pipeline.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := NewLogger(cfg)

	claude := ai.NewClaudeClient(cfg)
	perplexity, err := ai.NewPerplexityClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build Perplexity client: %w", err)
	}
	nebula := ai.NewNebulaClient(cfg)

	gecko := dataflows.NewGeckoTerminalClient(cfg)
	dex := dataflows.NewDexScreenerClient(cfg)
	abi := dataflows.NewABIClient(cfg)
	insight := dataflows.NewInsightClient(cfg)

	var cielo *dataflows.CieloClient
	var analytics pipeline.WalletAnalytics
	if cfg.CieloAPIKey != "" {
		cielo = dataflows.NewCieloClient(cfg)
		analytics = cielo
	} else {
		log.Warn().Msg("CIELO_API_KEY not set, wallet analytics disabled")
	}

	p := pipeline.New(cfg, log, claude, gecko, dex, abi, insight, analytics, nebula, perplexity)

	return &Service{
		cfg:      cfg,
		log:      log,
		pipeline: p,
		dex:      dex,
		insight:  insight,
		cielo:    cielo,
	}, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.cfg }

// Logger returns the process logger.
func (s *Service) Logger() zerolog.Logger { return s.log }

// Analyze runs one full token analysis.
func (s *Service) Analyze(ctx context.Context, chainID int, tokenAddress, walletAddress string) (*pipeline.TokenAnalysis, error) {
	return s.pipeline.Analyze(ctx, chainID, tokenAddress, walletAddress)
}

// TopTokens lists the highest-volume tokens for a chain, for the picker grid.
func (s *Service) TopTokens(ctx context.Context, chainID, limit int) ([]dataflows.DexScreenerToken, error) {
	chain, ok := chains.Lookup(chainID)
	if !ok {
		return nil, pipeline.ErrUnsupportedChain
	}
	return s.dex.TopTokens(ctx, chain, limit)
}

// WalletStats returns aggregate P&L for a wallet on a chain.
func (s *Service) WalletStats(ctx context.Context, chainID int, walletAddress string, timeframe dataflows.Timeframe) (*dataflows.WalletStats, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, pipeline.ErrInvalidWalletAddress
	}
	chain, ok := chains.Lookup(chainID)
	if !ok {
		return nil, pipeline.ErrUnsupportedChain
	}
	if s.cielo == nil {
		return nil, fmt.Errorf("wallet analytics not configured")
	}
	return s.cielo.WalletStats(ctx, walletAddress, chain.CieloSlug, timeframe)
}

// WalletTokens lists the ERC-20 balances of a wallet.
func (s *Service) WalletTokens(ctx context.Context, chainID int, walletAddress string) ([]dataflows.UserToken, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, pipeline.ErrInvalidWalletAddress
	}
	if !chains.IsSupported(chainID) {
		return nil, pipeline.ErrUnsupportedChain
	}
	return s.insight.Erc20Tokens(ctx, chainID, walletAddress)
}
