package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MarketDataPolicy controls how many market-data sources must succeed before an
// aggregation is considered usable.
type MarketDataPolicy string

const (
	// MarketDataAny accepts a snapshot when at least one of GeckoTerminal or
	// DexScreener returned data.
	MarketDataAny MarketDataPolicy = "any"
	// MarketDataAll requires both market-data sources to succeed.
	MarketDataAll MarketDataPolicy = "all"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	CacheEnabled bool   `json:"cache_enabled"`

	// AI provider keys
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	PerplexityAPIKey string `json:"perplexity_api_key"`

	// Thirdweb (Nebula, contract ABI, Insight indexer)
	ThirdwebSecretKey string `json:"thirdweb_secret_key"`
	ThirdwebClientID  string `json:"thirdweb_client_id"`

	// Wallet analytics
	CieloAPIKey string `json:"cielo_api_key"`

	// Upstream base URLs, overridable for testing
	AnthropicBaseURL   string `json:"anthropic_base_url"`
	PerplexityBaseURL  string `json:"perplexity_base_url"`
	NebulaBaseURL      string `json:"nebula_base_url"`
	GeckoTerminalURL   string `json:"geckoterminal_base_url"`
	DexScreenerURL     string `json:"dexscreener_base_url"`
	ContractLookupURL  string `json:"contract_lookup_base_url"`
	InsightURLTemplate string `json:"insight_url_template"`
	CieloBaseURL       string `json:"cielo_base_url"`

	// Models
	ClaudeModel     string `json:"claude_model"`
	PerplexityModel string `json:"perplexity_model"`
	MaxOutputTokens int    `json:"max_output_tokens"`

	// Pipeline behavior
	MarketDataPolicy MarketDataPolicy `json:"market_data_policy"`
	HTTPTimeout      time.Duration    `json:"http_timeout"`
	LLMTimeout       time.Duration    `json:"llm_timeout"`

	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`

	// HTTP server
	ListenAddr string `json:"listen_addr"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		CacheEnabled: true,

		AnthropicBaseURL:   "https://api.anthropic.com",
		PerplexityBaseURL:  "https://api.perplexity.ai",
		NebulaBaseURL:      "https://nebula-api.thirdweb.com",
		GeckoTerminalURL:   "https://api.geckoterminal.com/api/v2",
		DexScreenerURL:     "https://api.dexscreener.com/latest/dex",
		ContractLookupURL:  "https://contract.thirdweb.com",
		InsightURLTemplate: "https://%d.insight.thirdweb.com",
		CieloBaseURL:       "https://feed-api.cielo.finance/api/v1",

		ClaudeModel:     "claude-3-5-sonnet-latest",
		PerplexityModel: "sonar-pro",
		MaxOutputTokens: 4096,

		MarketDataPolicy: MarketDataAny,
		HTTPTimeout:      30 * time.Second,
		LLMTimeout:       3 * time.Minute,

		LogLevel:   "info",
		ListenAddr: ":8080",
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}

	if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		c.AnthropicAPIKey = val
	}
	if val := os.Getenv("PERPLEXITY_API_KEY"); val != "" {
		c.PerplexityAPIKey = val
	}
	if val := os.Getenv("THIRDWEB_SECRET_KEY"); val != "" {
		c.ThirdwebSecretKey = val
	}
	if val := os.Getenv("THIRDWEB_CLIENT_ID"); val != "" {
		c.ThirdwebClientID = val
	}
	if val := os.Getenv("CIELO_API_KEY"); val != "" {
		c.CieloAPIKey = val
	}

	if val := os.Getenv("ANTHROPIC_BASE_URL"); val != "" {
		c.AnthropicBaseURL = val
	}
	if val := os.Getenv("PERPLEXITY_BASE_URL"); val != "" {
		c.PerplexityBaseURL = val
	}
	if val := os.Getenv("NEBULA_BASE_URL"); val != "" {
		c.NebulaBaseURL = val
	}
	if val := os.Getenv("GECKOTERMINAL_BASE_URL"); val != "" {
		c.GeckoTerminalURL = val
	}
	if val := os.Getenv("DEXSCREENER_BASE_URL"); val != "" {
		c.DexScreenerURL = val
	}
	if val := os.Getenv("CONTRACT_LOOKUP_BASE_URL"); val != "" {
		c.ContractLookupURL = val
	}
	if val := os.Getenv("INSIGHT_URL_TEMPLATE"); val != "" {
		c.InsightURLTemplate = val
	}
	if val := os.Getenv("CIELO_BASE_URL"); val != "" {
		c.CieloBaseURL = val
	}

	if val := os.Getenv("CLAUDE_MODEL"); val != "" {
		c.ClaudeModel = val
	}
	if val := os.Getenv("PERPLEXITY_MODEL"); val != "" {
		c.PerplexityModel = val
	}
	if val := os.Getenv("MAX_OUTPUT_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxOutputTokens = v
		}
	}

	if val := os.Getenv("MARKET_DATA_POLICY"); val != "" {
		switch MarketDataPolicy(strings.ToLower(val)) {
		case MarketDataAny, MarketDataAll:
			c.MarketDataPolicy = MarketDataPolicy(strings.ToLower(val))
		}
	}
	if val := os.Getenv("HTTP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.HTTPTimeout = d
		}
	}
	if val := os.Getenv("LLM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.LLMTimeout = d
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("YEETORJEET_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
}

// Validate reports the API keys the pipeline cannot run without. Cielo is
// optional: wallet analytics degrade to absence when the key is missing.
func (c *Config) Validate() error {
	var missing []string
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if c.PerplexityAPIKey == "" {
		missing = append(missing, "PERPLEXITY_API_KEY")
	}
	if c.ThirdwebSecretKey == "" {
		missing = append(missing, "THIRDWEB_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
