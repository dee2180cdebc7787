package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
)

// DexScreenerClient handles DexScreener API operations. It is the fallback
// market-data source behind GeckoTerminal and also powers the top-tokens grid.
type DexScreenerClient struct {
	client *resty.Client
	cache  *CacheManager
}

// NewDexScreenerClient creates a new DexScreener client
func NewDexScreenerClient(cfg *config.Config) *DexScreenerClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "dexscreener")
	cache := NewCacheManager(cacheDir, 5*time.Minute, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL(cfg.DexScreenerURL)
	client.SetTimeout(cfg.HTTPTimeout)

	return &DexScreenerClient{
		client: client,
		cache:  cache,
	}
}

// DexScreenerToken is the flattened token summary assembled from pair data.
type DexScreenerToken struct {
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	PriceUSD       string  `json:"price_usd"`
	Volume24h      float64 `json:"volume_24h"`
	PriceChange24h float64 `json:"price_change_24h"`
	MarketCapUSD   float64 `json:"market_cap_usd"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	FdvUSD         float64 `json:"fdv_usd"`
}

type dexScreenerPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"quoteToken"`
	PriceNative string `json:"priceNative"`
	PriceUSD    string `json:"priceUsd"`
	Volume      struct {
		H24 float64 `json:"h24"`
		H6  float64 `json:"h6"`
		H1  float64 `json:"h1"`
		M5  float64 `json:"m5"`
	} `json:"volume"`
	PriceChange struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H6  float64 `json:"h6"`
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD   float64 `json:"usd"`
		Base  float64 `json:"base"`
		Quote float64 `json:"quote"`
	} `json:"liquidity"`
	Fdv       float64 `json:"fdv"`
	MarketCap float64 `json:"marketCap"`
}

type dexScreenerPairsResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

// TokenInfo fetches pair data for a token and flattens the most liquid pair
// into a token summary.
func (dc *DexScreenerClient) TokenInfo(ctx context.Context, chain chains.Chain, tokenAddress string) (*DexScreenerToken, error) {
	address := NormalizeAddress(tokenAddress)

	resp, err := dc.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/tokens/%s/%s", chain.DexScreenerSlug, address))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch pairs for %s: %w", address, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data dexScreenerPairsResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse pairs response: %w", err)
	}

	if len(data.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs found for token %s", address)
	}

	pairs := data.Pairs
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Liquidity.USD > pairs[j].Liquidity.USD
	})

	topPair := pairs[0]
	tokenData := topPair.BaseToken
	if !strings.EqualFold(topPair.BaseToken.Address, address) {
		tokenData = topPair.QuoteToken
	}

	var totalVolume float64
	for _, pair := range pairs {
		totalVolume += pair.Volume.H24
	}

	marketCap := topPair.MarketCap
	if marketCap == 0 {
		marketCap = topPair.Fdv
	}

	return &DexScreenerToken{
		Address:        address,
		Name:           tokenData.Name,
		Symbol:         tokenData.Symbol,
		PriceUSD:       topPair.PriceUSD,
		Volume24h:      totalVolume,
		PriceChange24h: topPair.PriceChange.H24,
		MarketCapUSD:   marketCap,
		LiquidityUSD:   topPair.Liquidity.USD,
		FdvUSD:         topPair.Fdv,
	}, nil
}

// TopTokens extracts the highest-volume non-stablecoin tokens from the chain's
// pair listing. Falls back to a static list when the API is unreachable.
func (dc *DexScreenerClient) TopTokens(ctx context.Context, chain chains.Chain, limit int) ([]DexScreenerToken, error) {
	if limit <= 0 {
		limit = 12
	}

	cacheKey := map[string]interface{}{
		"chain": chain.DexScreenerSlug,
		"limit": limit,
	}

	var cached []DexScreenerToken
	if dc.cache.Get("dexscreener", "top_tokens", cacheKey, &cached) {
		return cached, nil
	}

	tokens, err := dc.fetchTopTokens(ctx, chain, limit)
	if err != nil {
		if chain.ID == chains.Default.ID {
			return hardcodedTopTokens(), nil
		}
		return nil, err
	}

	dc.cache.Set("dexscreener", "top_tokens", cacheKey, tokens)
	return tokens, nil
}

func (dc *DexScreenerClient) fetchTopTokens(ctx context.Context, chain chains.Chain, limit int) ([]DexScreenerToken, error) {
	resp, err := dc.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/pairs/%s", chain.DexScreenerSlug))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch pairs for %s: %w", chain.DexScreenerSlug, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data dexScreenerPairsResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse pairs response: %w", err)
	}

	if len(data.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs found on %s", chain.DexScreenerSlug)
	}

	pairs := data.Pairs
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Volume.H24 > pairs[j].Volume.H24
	})

	seen := make(map[string]bool)
	tokens := make([]DexScreenerToken, 0, limit)
	for _, pair := range pairs {
		address := NormalizeAddress(pair.BaseToken.Address)
		if address == "" || seen[address] {
			continue
		}
		seen[address] = true

		if IsStablecoin(pair.BaseToken.Symbol) {
			continue
		}

		marketCap := pair.MarketCap
		if marketCap == 0 {
			marketCap = pair.Fdv
		}

		tokens = append(tokens, DexScreenerToken{
			Address:        address,
			Name:           pair.BaseToken.Name,
			Symbol:         pair.BaseToken.Symbol,
			PriceUSD:       pair.PriceUSD,
			Volume24h:      pair.Volume.H24,
			PriceChange24h: pair.PriceChange.H24,
			MarketCapUSD:   marketCap,
			LiquidityUSD:   pair.Liquidity.USD,
			FdvUSD:         pair.Fdv,
		})

		if len(tokens) >= limit {
			break
		}
	}

	return tokens, nil
}

// knownStablecoins covers symbols that do not contain "USD" themselves.
var knownStablecoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"BUSD": true,
	"TUSD": true,
	"USDP": true,
	"FRAX": true,
	"LUSD": true,
	"USDD": true,
	"GUSD": true,
	"USDJ": true,
}

// IsStablecoin classifies a token symbol as a stablecoin. Any symbol containing
// "USD" counts, plus a fixed list of well-known pegged assets.
func IsStablecoin(symbol string) bool {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if knownStablecoins[upper] {
		return true
	}
	return strings.Contains(upper, "USD")
}

// hardcodedTopTokens is the static Berachain fallback used when DexScreener is
// unreachable, so the token grid never renders empty.
func hardcodedTopTokens() []DexScreenerToken {
	return []DexScreenerToken{
		{Address: "0x6969696969696969696969696969696969696969", Name: "Wrapped Bera", Symbol: "WBERA", PriceUSD: "6.14", Volume24h: 23012057, MarketCapUSD: 125754237},
		{Address: "0x2f6f07cdcf3588944bf4c42ac74ff24bf56e7590", Name: "Wrapped Ether", Symbol: "WETH", PriceUSD: "1890.36", Volume24h: 12500000, PriceChange24h: -1.01, MarketCapUSD: 356634382},
		{Address: "0x0555e30da8f98308edb960aa94c0db47230d2b9c", Name: "Wrapped Bitcoin", Symbol: "WBTC", PriceUSD: "82689.18", Volume24h: 3358438, PriceChange24h: -1.38, MarketCapUSD: 333420126},
		{Address: "0x5d7a7e844e2f6d3c0e6f9e97c8ec29795bac2f65", Name: "Bong", Symbol: "BONG", PriceUSD: "0.0042", Volume24h: 2500000, PriceChange24h: 12.5, MarketCapUSD: 42000000},
		{Address: "0x8c4495d21e725e95a32e8d5b1a96e3b1b5a0c4a9", Name: "Honey Pot", Symbol: "HPOT", PriceUSD: "0.0185", Volume24h: 1850000, PriceChange24h: 8.2, MarketCapUSD: 18500000},
		{Address: "0x7b5a3e3d8493c8c3b9c1f79d34b9f5bfb3ce7a95", Name: "Berps", Symbol: "BERPS", PriceUSD: "0.0075", Volume24h: 1750000, PriceChange24h: -5.3, MarketCapUSD: 7500000},
		{Address: "0x3e7fc44e25c07be3d67c241e6e59cb838df035eb", Name: "Bera Inu", Symbol: "BINU", PriceUSD: "0.00000325", Volume24h: 1250000, PriceChange24h: 32.1, MarketCapUSD: 3250000},
		{Address: "0x9c6b5cef4b2a14067c0f7c9b1a8a51f7c0c363f3", Name: "Berachain Gold", Symbol: "BGOLD", PriceUSD: "0.0215", Volume24h: 1150000, PriceChange24h: -2.8, MarketCapUSD: 21500000},
		{Address: "0x4d5f06cdc73d72c891eb79f1d350a1c3c8a84a51", Name: "Salmon", Symbol: "SALMON", PriceUSD: "0.0092", Volume24h: 920000, PriceChange24h: 15.7, MarketCapUSD: 9200000},
		{Address: "0x2c4a603a2aa5596287a06886862dc29d56dbc354", Name: "Grizzly", Symbol: "GRIZ", PriceUSD: "0.0135", Volume24h: 850000, PriceChange24h: 4.2, MarketCapUSD: 13500000},
		{Address: "0x1d5e65a087eb1cf5c034f19c7967d4c2847022e5", Name: "Kodiak", Symbol: "KOD", PriceUSD: "0.0078", Volume24h: 780000, PriceChange24h: -1.5, MarketCapUSD: 7800000},
		{Address: "0x8a6d4c8735371ebfc8dd0d1b31680c9c6c57ca92", Name: "Polar", Symbol: "POLAR", PriceUSD: "0.0056", Volume24h: 560000, PriceChange24h: 7.8, MarketCapUSD: 5600000},
	}
}
