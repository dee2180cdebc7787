package dataflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
)

// geckoAPIVersion pins the GeckoTerminal response schema via the Accept header.
const geckoAPIVersion = "20230302"

// GeckoTerminalClient handles GeckoTerminal API operations
type GeckoTerminalClient struct {
	client *resty.Client
}

// NewGeckoTerminalClient creates a new GeckoTerminal client
func NewGeckoTerminalClient(cfg *config.Config) *GeckoTerminalClient {
	client := resty.New()
	client.SetBaseURL(cfg.GeckoTerminalURL)
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetHeader("Accept", fmt.Sprintf("application/json;version=%s", geckoAPIVersion))

	return &GeckoTerminalClient{client: client}
}

// GeckoTxStats counts trades over one window of a pool.
type GeckoTxStats struct {
	Buys    int `json:"buys"`
	Sells   int `json:"sells"`
	Buyers  int `json:"buyers"`
	Sellers int `json:"sellers"`
}

// GeckoPoolData is one pool entry from the included section of a token lookup.
type GeckoPoolData struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		BaseTokenPriceUSD     string `json:"base_token_price_usd"`
		QuoteTokenPriceUSD    string `json:"quote_token_price_usd"`
		Address               string `json:"address"`
		Name                  string `json:"name"`
		PoolCreatedAt         string `json:"pool_created_at"`
		TokenPriceUSD         string `json:"token_price_usd"`
		FdvUSD                string `json:"fdv_usd"`
		MarketCapUSD          string `json:"market_cap_usd"`
		PriceChangePercentage struct {
			M5  string `json:"m5"`
			H1  string `json:"h1"`
			H6  string `json:"h6"`
			H24 string `json:"h24"`
		} `json:"price_change_percentage"`
		Transactions struct {
			M5  GeckoTxStats `json:"m5"`
			H1  GeckoTxStats `json:"h1"`
			H24 GeckoTxStats `json:"h24"`
		} `json:"transactions"`
		VolumeUSD struct {
			M5  string `json:"m5"`
			H1  string `json:"h1"`
			H6  string `json:"h6"`
			H24 string `json:"h24"`
		} `json:"volume_usd"`
		ReserveInUSD string `json:"reserve_in_usd"`
	} `json:"attributes"`
}

// GeckoTerminalData is a token document with its top pools included.
type GeckoTerminalData struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Name              string `json:"name"`
			Address           string `json:"address"`
			Symbol            string `json:"symbol"`
			Decimals          int    `json:"decimals"`
			ImageURL          string `json:"image_url"`
			CoingeckoCoinID   string `json:"coingecko_coin_id"`
			TotalSupply       string `json:"total_supply"`
			PriceUSD          string `json:"price_usd"`
			FdvUSD            string `json:"fdv_usd"`
			TotalReserveInUSD string `json:"total_reserve_in_usd"`
			VolumeUSD         struct {
				H24 string `json:"h24"`
			} `json:"volume_usd"`
			MarketCapUSD string `json:"market_cap_usd"`
		} `json:"attributes"`
	} `json:"data"`
	Included []GeckoPoolData `json:"included"`
}

// TokenWithPools fetches a token document with its top pools for one chain.
func (gc *GeckoTerminalClient) TokenWithPools(ctx context.Context, chain chains.Chain, tokenAddress string) (*GeckoTerminalData, error) {
	address := NormalizeAddress(tokenAddress)

	resp, err := gc.client.R().
		SetContext(ctx).
		SetQueryParam("include", "top_pools").
		Get(fmt.Sprintf("/networks/%s/tokens/%s", chain.GeckoSlug, address))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch token %s on %s: %w", address, chain.GeckoSlug, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var result GeckoTerminalData
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if result.Data.Attributes.Name == "" && result.Data.Attributes.Symbol == "" {
		return nil, fmt.Errorf("token %s not found on %s", address, chain.GeckoSlug)
	}

	return &result, nil
}
