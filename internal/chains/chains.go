// Package chains holds the registry of blockchain networks the analyzer
// understands. Each upstream provider names networks differently, so a chain
// carries every slug we need alongside its numeric ID.
package chains

// Chain describes one supported blockchain network.
type Chain struct {
	ID           int
	Name         string
	NativeSymbol string
	// GeckoSlug is the network identifier used by the GeckoTerminal API.
	GeckoSlug string
	// DexScreenerSlug is the chain identifier used by the DexScreener API.
	DexScreenerSlug string
	// CieloSlug is the chain identifier used by the Cielo wallet-analytics API.
	CieloSlug string
	Explorer  string
}

var berachain = Chain{
	ID:              80094,
	Name:            "Berachain",
	NativeSymbol:    "BERA",
	GeckoSlug:       "berachain",
	DexScreenerSlug: "berachain",
	CieloSlug:       "berachain",
	Explorer:        "https://berascan.com",
}

var ethereum = Chain{
	ID:              1,
	Name:            "Ethereum",
	NativeSymbol:    "ETH",
	GeckoSlug:       "eth",
	DexScreenerSlug: "ethereum",
	CieloSlug:       "ethereum",
	Explorer:        "https://etherscan.io",
}

var base = Chain{
	ID:              8453,
	Name:            "Base",
	NativeSymbol:    "ETH",
	GeckoSlug:       "base",
	DexScreenerSlug: "base",
	CieloSlug:       "base",
	Explorer:        "https://basescan.org",
}

// Supported lists every chain the pipeline accepts, default first.
var Supported = []Chain{berachain, ethereum, base}

// Default is the chain used when the caller does not pick one.
var Default = berachain

// Lookup returns the chain for a numeric ID.
func Lookup(chainID int) (Chain, bool) {
	for _, c := range Supported {
		if c.ID == chainID {
			return c, true
		}
	}
	return Chain{}, false
}

// IsSupported reports whether a chain ID is in the registry.
func IsSupported(chainID int) bool {
	_, ok := Lookup(chainID)
	return ok
}
