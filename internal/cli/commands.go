// Package cli provides the terminal interface: one-shot analysis, an
// interactive token picker and the API server entry point.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/display"
	"github.com/yeetorjeet/yeetorjeet/internal/server"
	"github.com/yeetorjeet/yeetorjeet/internal/service"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "yeetorjeet",
		Short: "Yeet or Jeet - AI-Powered Token Analysis",
		Long: `Yeet or Jeet analyzes a crypto token with on-chain data, market data and
AI research, and tells you whether to buy (yeet), sell (jeet) or hold.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runInteractiveMode(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newTokensCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [TOKEN_ADDRESS]",
		Short: "Analyze a token and get a buy/sell/hold verdict",
		Long: `Run a full analysis for a token contract address.
Example: yeetorjeet analyze 0xacfe4511ce883c14c4ea40563f176c3c09b421bf --wallet=0x... --chain=80094`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, _ := cmd.Flags().GetString("wallet")
			chainID, _ := cmd.Flags().GetInt("chain")
			return runAnalyzeCommand(cmd.Context(), cfg, chainID, args[0], wallet)
		},
	}

	cmd.Flags().String("wallet", "", "Your wallet address")
	cmd.Flags().Int("chain", chains.Default.ID, "Chain ID")
	cmd.MarkFlagRequired("wallet")

	return cmd
}

// newServeCmd creates the serve command
func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.ListenAddr
			}

			svc, err := service.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return server.New(svc, svc.Logger()).Run(addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to LISTEN_ADDR)")

	return cmd
}

// newTokensCmd creates the tokens command
func newTokensCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List the top tokens by 24h volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, _ := cmd.Flags().GetInt("chain")
			limit, _ := cmd.Flags().GetInt("limit")

			svc, err := service.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			tokens, err := svc.TopTokens(cmd.Context(), chainID, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch top tokens: %w", err)
			}

			fmt.Println(display.RenderTokenGrid(tokens))
			return nil
		},
	}

	cmd.Flags().Int("chain", chains.Default.ID, "Chain ID")
	cmd.Flags().Int("limit", 12, "Number of tokens to list")

	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("✅ Configuration is valid")
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Yeet or Jeet v1.0.0")
			fmt.Println("AI-Powered Token Analysis")
		},
	}
}

// runAnalyzeCommand executes one analysis and renders the verdict.
func runAnalyzeCommand(ctx context.Context, cfg *config.Config, chainID int, tokenAddress, walletAddress string) error {
	svc, err := service.New(ctx, cfg)
	if err != nil {
		return err
	}

	chain, ok := chains.Lookup(chainID)
	if !ok {
		return fmt.Errorf("unsupported chain %d", chainID)
	}

	fmt.Printf("🚀 Analyzing %s on %s...\n", tokenAddress, chain.Name)

	analysis, err := svc.Analyze(ctx, chainID, tokenAddress, walletAddress)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Println(display.RenderAnalysis(analysis))
	return nil
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Printf("  Claude model:       %s\n", cfg.ClaudeModel)
	fmt.Printf("  Perplexity model:   %s\n", cfg.PerplexityModel)
	fmt.Printf("  Market data policy: %s\n", cfg.MarketDataPolicy)
	fmt.Printf("  HTTP timeout:       %s\n", cfg.HTTPTimeout)
	fmt.Printf("  LLM timeout:        %s\n", cfg.LLMTimeout)
	fmt.Printf("  Listen address:     %s\n", cfg.ListenAddr)
	fmt.Printf("  Cache enabled:      %t\n", cfg.CacheEnabled)
	fmt.Printf("  Anthropic key:      %s\n", maskKey(cfg.AnthropicAPIKey))
	fmt.Printf("  Perplexity key:     %s\n", maskKey(cfg.PerplexityAPIKey))
	fmt.Printf("  Thirdweb key:       %s\n", maskKey(cfg.ThirdwebSecretKey))
	fmt.Printf("  Cielo key:          %s\n", maskKey(cfg.CieloAPIKey))
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
