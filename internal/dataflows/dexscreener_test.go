package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		GeckoTerminalURL:  baseURL,
		DexScreenerURL:    baseURL,
		ContractLookupURL: baseURL,
		CieloBaseURL:      baseURL,
		DataCacheDir:      t.TempDir(),
		CacheEnabled:      false,
		CieloAPIKey:       "test-key",
		HTTPTimeout:       5 * time.Second,
	}
}

func TestIsStablecoin(t *testing.T) {
	stable := []string{"USDT", "usdc", "DAI", "BUSD", "HONEYUSD", "xUSD", "frax", "LUSD"}
	for _, symbol := range stable {
		if !IsStablecoin(symbol) {
			t.Errorf("%q should be a stablecoin", symbol)
		}
	}

	volatile := []string{"WETH", "BERA", "WBERA", "WBTC", "BONG", ""}
	for _, symbol := range volatile {
		if IsStablecoin(symbol) {
			t.Errorf("%q should not be a stablecoin", symbol)
		}
	}
}

func TestTokenInfoPicksMostLiquidPair(t *testing.T) {
	const token = "0xacfe4511ce883c14c4ea40563f176c3c09b421bf"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/berachain/"+token {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"pairs": [
			{"baseToken": {"address": "` + token + `", "name": "Test", "symbol": "TEST"},
			 "quoteToken": {"address": "0xquote", "symbol": "WBERA"},
			 "priceUsd": "0.50", "volume": {"h24": 1000}, "liquidity": {"usd": 5000}, "marketCap": 100000},
			{"baseToken": {"address": "` + token + `", "name": "Test", "symbol": "TEST"},
			 "quoteToken": {"address": "0xquote", "symbol": "WETH"},
			 "priceUsd": "0.52", "volume": {"h24": 9000}, "liquidity": {"usd": 80000}, "fdv": 120000}
		]}`))
	}))
	defer server.Close()

	client := NewDexScreenerClient(testConfig(t, server.URL))
	info, err := client.TokenInfo(context.Background(), chains.Default, token)
	if err != nil {
		t.Fatalf("TokenInfo failed: %v", err)
	}

	if info.PriceUSD != "0.52" {
		t.Errorf("should take price from most liquid pair, got %q", info.PriceUSD)
	}
	if info.Volume24h != 10000 {
		t.Errorf("volume should sum across pairs, got %v", info.Volume24h)
	}
	if info.MarketCapUSD != 120000 {
		t.Errorf("missing market cap should fall back to FDV, got %v", info.MarketCapUSD)
	}
	if info.Symbol != "TEST" {
		t.Errorf("unexpected symbol %q", info.Symbol)
	}
}

func TestTokenInfoNoPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": []}`))
	}))
	defer server.Close()

	client := NewDexScreenerClient(testConfig(t, server.URL))
	if _, err := client.TokenInfo(context.Background(), chains.Default, "0xabc"); err == nil {
		t.Error("expected error for token with no pairs")
	}
}

func TestTopTokensFallsBackOnDefaultChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewDexScreenerClient(testConfig(t, server.URL))
	tokens, err := client.TopTokens(context.Background(), chains.Default, 12)
	if err != nil {
		t.Fatalf("TopTokens should fall back on the default chain: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("fallback list is empty")
	}
	for _, token := range tokens {
		if IsStablecoin(token.Symbol) {
			t.Errorf("fallback list contains stablecoin %q", token.Symbol)
		}
	}
}

func TestTopTokensSkipsStablecoins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [
			{"baseToken": {"address": "0x1", "name": "Honey USD", "symbol": "HONEYUSD"}, "volume": {"h24": 90000}},
			{"baseToken": {"address": "0x2", "name": "Wrapped Bera", "symbol": "WBERA"}, "volume": {"h24": 50000}},
			{"baseToken": {"address": "0x2", "name": "Wrapped Bera", "symbol": "WBERA"}, "volume": {"h24": 40000}},
			{"baseToken": {"address": "0x3", "name": "Bong", "symbol": "BONG"}, "volume": {"h24": 10000}}
		]}`))
	}))
	defer server.Close()

	client := NewDexScreenerClient(testConfig(t, server.URL))
	tokens, err := client.TopTokens(context.Background(), chains.Default, 12)
	if err != nil {
		t.Fatalf("TopTokens failed: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens after dedupe and stablecoin filter, got %d", len(tokens))
	}
	if tokens[0].Symbol != "WBERA" || tokens[1].Symbol != "BONG" {
		t.Errorf("unexpected order: %q, %q", tokens[0].Symbol, tokens[1].Symbol)
	}
}
