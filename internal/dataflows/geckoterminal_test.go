package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yeetorjeet/yeetorjeet/internal/chains"
)

func TestTokenWithPools(t *testing.T) {
	const token = "0xacfe4511ce883c14c4ea40563f176c3c09b421bf"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept"), "version=20230302") {
			t.Errorf("missing versioned Accept header: %q", r.Header.Get("Accept"))
		}
		if r.URL.Query().Get("include") != "top_pools" {
			t.Errorf("missing include=top_pools, got %q", r.URL.RawQuery)
		}
		if r.URL.Path != "/networks/berachain/tokens/"+token {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"data": {"id": "berachain_` + token + `", "attributes": {
				"name": "Test Token", "symbol": "TEST", "price_usd": "1.23", "market_cap_usd": "1000000"
			}},
			"included": [{"id": "pool1", "attributes": {"name": "TEST / WBERA", "reserve_in_usd": "50000"}}]
		}`))
	}))
	defer server.Close()

	client := NewGeckoTerminalClient(testConfig(t, server.URL))
	data, err := client.TokenWithPools(context.Background(), chains.Default, token)
	if err != nil {
		t.Fatalf("TokenWithPools failed: %v", err)
	}

	if data.Data.Attributes.Symbol != "TEST" {
		t.Errorf("unexpected symbol %q", data.Data.Attributes.Symbol)
	}
	if len(data.Included) != 1 || data.Included[0].Attributes.Name != "TEST / WBERA" {
		t.Errorf("pools not parsed: %+v", data.Included)
	}
}

func TestTokenWithPoolsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some gateways return an empty document instead of a 404.
		w.Write([]byte(`{"data": {"attributes": {}}}`))
	}))
	defer server.Close()

	client := NewGeckoTerminalClient(testConfig(t, server.URL))
	if _, err := client.TokenWithPools(context.Background(), chains.Default, "0xdead"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestTokenWithPoolsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeckoTerminalClient(testConfig(t, server.URL))
	_, err := client.TokenWithPools(context.Background(), chains.Default, "0xdead")
	if err == nil || !strings.Contains(err.Error(), "API error 429") {
		t.Errorf("expected API error, got %v", err)
	}
}
