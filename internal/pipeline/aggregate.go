package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/analysis"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

// GatherStartingData issues the four independent fetches concurrently and
// assembles the request snapshot. Each fetch degrades to absent on failure;
// only the market-data policy can fail the aggregation as a whole. Nothing is
// cached — every call re-fetches everything.
func (p *Pipeline) GatherStartingData(ctx context.Context, chain chains.Chain, tokenAddress, walletAddress string) (*StartingData, error) {
	data := &StartingData{
		ChainID:           chain.ID,
		TokenAddress:      dataflows.NormalizeAddress(tokenAddress),
		UserWalletAddress: dataflows.NormalizeAddress(walletAddress),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		abi, err := p.abi.ContractABI(gctx, chain.ID, data.TokenAddress)
		if err != nil {
			p.log.Warn().Err(err).Msg("ABI lookup failed")
			return nil
		}
		data.ContractABI = abi
		return nil
	})

	g.Go(func() error {
		gecko, err := p.market.TokenWithPools(gctx, chain, data.TokenAddress)
		if err != nil {
			p.log.Warn().Err(err).Msg("primary market lookup failed")
			return nil
		}
		data.GeckoTerminalData = gecko
		return nil
	})

	g.Go(func() error {
		dex, err := p.fallback.TokenInfo(gctx, chain, data.TokenAddress)
		if err != nil {
			p.log.Warn().Err(err).Msg("fallback market lookup failed")
			return nil
		}
		data.DexScreenerData = dex
		return nil
	})

	g.Go(func() error {
		counts, err := p.transfers.HourlyTransferCounts(gctx, chain.ID, data.TokenAddress)
		if err != nil {
			p.log.Warn().Err(err).Msg("transfer count lookup failed")
			return nil
		}
		data.HourlyTransferCounts = counts
		return nil
	})

	// Goroutines swallow their own errors, so Wait only fails on a context
	// cancellation propagated through gctx.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkMarketData(p.policy, data); err != nil {
		return nil, err
	}

	sortTransferCounts(data.HourlyTransferCounts)
	data.GrowthScore = analysis.GrowthScore(data.HourlyTransferCounts)

	return data, nil
}

// checkMarketData applies the configured source-requirement policy: "any"
// needs at least one of the two market sources, "all" needs both.
func checkMarketData(policy config.MarketDataPolicy, data *StartingData) error {
	hasGecko := data.GeckoTerminalData != nil
	hasDex := data.DexScreenerData != nil

	switch policy {
	case config.MarketDataAll:
		if !hasGecko || !hasDex {
			return fmt.Errorf("market data policy %q requires both sources (gecko=%t dex=%t)", policy, hasGecko, hasDex)
		}
	default:
		if !hasGecko && !hasDex {
			return fmt.Errorf("no market data source succeeded for token")
		}
	}

	return nil
}

func sortTransferCounts(counts []dataflows.TransferCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		ti, erri := dataflows.ParseDateString(counts[i].Date)
		tj, errj := dataflows.ParseDateString(counts[j].Date)
		if erri != nil || errj != nil {
			return erri != nil && errj == nil
		}
		return ti.Before(tj)
	})
}
