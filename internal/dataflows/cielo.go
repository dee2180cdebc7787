package dataflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
)

// CieloClient handles Cielo wallet-analytics API operations
type CieloClient struct {
	client *resty.Client
	apiKey string
}

// NewCieloClient creates a new Cielo client
func NewCieloClient(cfg *config.Config) *CieloClient {
	client := resty.New()
	client.SetBaseURL(cfg.CieloBaseURL)
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetHeader("accept", "application/json")

	return &CieloClient{
		client: client,
		apiKey: cfg.CieloAPIKey,
	}
}

type cieloStatsResponse struct {
	Status string      `json:"status"`
	Data   WalletStats `json:"data"`
}

type cieloTokenPnLResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items  []TokenPnL `json:"items"`
		Paging struct {
			TotalRowsInPage int    `json:"total_rows_in_page"`
			HasNextPage     bool   `json:"has_next_page"`
			NextObject      string `json:"next_object"`
		} `json:"paging"`
	} `json:"data"`
}

// WalletStats fetches aggregate P&L statistics for a wallet, scoped to a chain
// slug and timeframe.
func (cc *CieloClient) WalletStats(ctx context.Context, walletAddress, chainSlug string, timeframe Timeframe) (*WalletStats, error) {
	if cc.apiKey == "" {
		return nil, fmt.Errorf("Cielo API key not configured")
	}
	if timeframe == "" {
		timeframe = TimeframeMax
	}

	address := NormalizeAddress(walletAddress)

	req := cc.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", cc.apiKey).
		SetQueryParam("timeframe", string(timeframe))
	if chainSlug != "" {
		req.SetQueryParam("chains", chainSlug)
	}

	resp, err := req.Get(fmt.Sprintf("/%s/pnl/total-stats", address))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet stats for %s: %w", address, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data cieloStatsResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse wallet stats response: %w", err)
	}

	return &data.Data, nil
}

// TokenPnL fetches per-token trading performance for a (wallet, token) pair.
// A wallet with no history for the token returns (nil, nil).
func (cc *CieloClient) TokenPnL(ctx context.Context, walletAddress, tokenAddress, chainSlug string, timeframe Timeframe) (*TokenPnL, error) {
	if cc.apiKey == "" {
		return nil, fmt.Errorf("Cielo API key not configured")
	}
	if timeframe == "" {
		timeframe = TimeframeMax
	}

	address := NormalizeAddress(walletAddress)

	req := cc.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", cc.apiKey).
		SetQueryParam("timeframe", string(timeframe)).
		SetQueryParam("token", NormalizeAddress(tokenAddress))
	if chainSlug != "" {
		req.SetQueryParam("chains", chainSlug)
	}

	resp, err := req.Get(fmt.Sprintf("/%s/pnl/tokens", address))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token PnL for %s: %w", address, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data cieloTokenPnLResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse token PnL response: %w", err)
	}

	if len(data.Data.Items) == 0 {
		return nil, nil
	}

	return &data.Data.Items[0], nil
}
