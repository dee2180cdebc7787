package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

// synthesisSchemaVersion tags the JSON-shape instructions embedded in the
// synthesis prompt so schema changes are visible in logs and fixtures.
const synthesisSchemaVersion = "v1"

const synthesisSystemPrompt = `You are a crypto trading analyst. You are given on-chain data, market data and two research answers about a token. Produce a buy, sell or hold verdict.

Respond with ONLY a JSON document, no markdown fences, no commentary, matching exactly this shape (schema ` + synthesisSchemaVersion + `):
{
  "sections": [
    {"section": "inputs", "tokenAddress": "...", "tokenName": "...", "tokenSymbol": "...", "walletAddress": "...", "chainId": 0},
    {"section": "verdict", "type": "buy" | "sell" | "hold", "title": "...", "description": "...", "actions": [{"label": "...", "description": "...", "recommendedPercentage": 0}]},
    {"section": "details", "content": "markdown analysis here"}
  ]
}

Rules:
- "type" must be exactly "buy", "sell" or "hold".
- "recommendedPercentage" is the share of the wallet's position the action applies to, 0-100.
- "content" is a thorough markdown write-up citing the data you were given.
- Output exactly one section of each kind, in the order shown.`

// Synthesize builds the final prompt from everything gathered and asks the
// model for the verdict document. Wallet analytics are fetched here
// best-effort; their absence never fails the synthesis.
func (p *Pipeline) Synthesize(ctx context.Context, chain chains.Chain, data *StartingData, nebulaAnswer, perplexityAnswer string) (string, error) {
	var stats *dataflows.WalletStats
	var pnl *dataflows.TokenPnL
	if p.analytics != nil {
		var err error
		stats, err = p.analytics.WalletStats(ctx, data.UserWalletAddress, chain.CieloSlug, dataflows.TimeframeMax)
		if err != nil {
			p.log.Warn().Err(err).Msg("wallet stats unavailable")
		}
		pnl, err = p.analytics.TokenPnL(ctx, data.UserWalletAddress, data.TokenAddress, chain.CieloSlug, dataflows.TimeframeMax)
		if err != nil {
			p.log.Warn().Err(err).Msg("token PnL unavailable")
		}
	}

	prompt := BuildSynthesisPrompt(chain, data, nebulaAnswer, perplexityAnswer, stats, pnl)

	answer, err := p.llm.Ask(ctx, prompt, synthesisSystemPrompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("empty synthesis response")
	}

	return answer, nil
}

// BuildSynthesisPrompt is the pure templating step: it renders every gathered
// input into one prompt and performs no I/O.
func BuildSynthesisPrompt(chain chains.Chain, data *StartingData, nebulaAnswer, perplexityAnswer string, stats *dataflows.WalletStats, pnl *dataflows.TokenPnL) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Token: %s", data.TokenAddress)
	if name := data.TokenName(); name != "" {
		fmt.Fprintf(&b, " (%s, $%s)", name, strings.ToUpper(data.TokenSymbol()))
	}
	fmt.Fprintf(&b, "\nChain: %s (id %d)\n", chain.Name, chain.ID)
	fmt.Fprintf(&b, "Wallet: %s\n", data.UserWalletAddress)

	b.WriteString("\n## On-chain activity\n")
	fmt.Fprintf(&b, "Growth score (24h transfer momentum, 0-100): %.2f\n", data.GrowthScore)
	if len(data.HourlyTransferCounts) == 0 {
		b.WriteString("No transfer events indexed in the last 24 hours.\n")
	} else {
		fmt.Fprintf(&b, "Hourly transfer counts (%d buckets, oldest first):\n", len(data.HourlyTransferCounts))
		for _, tc := range data.HourlyTransferCounts {
			fmt.Fprintf(&b, "- %s: %d transfers\n", tc.Date, tc.Count)
		}
	}

	b.WriteString("\n## Contract\n")
	if data.ContractABI == "" {
		b.WriteString("Contract is unverified (no published ABI).\n")
	} else {
		b.WriteString("Contract is verified with a published ABI.\n")
	}

	b.WriteString("\n## Market data\n")
	writeMarketData(&b, data)

	b.WriteString("\n## On-chain research answer\n")
	if nebulaAnswer == "" {
		b.WriteString("(unavailable)\n")
	} else {
		b.WriteString(nebulaAnswer)
		b.WriteString("\n")
	}

	b.WriteString("\n## Web research answer\n")
	if perplexityAnswer == "" {
		b.WriteString("(unavailable)\n")
	} else {
		b.WriteString(perplexityAnswer)
		b.WriteString("\n")
	}

	b.WriteString("\n## Wallet trading history\n")
	writeWalletContext(&b, stats, pnl)

	return b.String()
}

func writeMarketData(b *strings.Builder, data *StartingData) {
	if data.GeckoTerminalData != nil {
		attrs := data.GeckoTerminalData.Data.Attributes
		fmt.Fprintf(b, "Price: $%s\n", attrs.PriceUSD)
		fmt.Fprintf(b, "Market cap: $%s\n", attrs.MarketCapUSD)
		fmt.Fprintf(b, "FDV: $%s\n", attrs.FdvUSD)
		fmt.Fprintf(b, "24h volume: $%s\n", attrs.VolumeUSD.H24)
		fmt.Fprintf(b, "Total reserve: $%s\n", attrs.TotalReserveInUSD)
		for _, pool := range data.GeckoTerminalData.Included {
			fmt.Fprintf(b, "Pool %s: 24h %d buys / %d sells, price change 24h %s%%, liquidity $%s\n",
				pool.Attributes.Name,
				pool.Attributes.Transactions.H24.Buys,
				pool.Attributes.Transactions.H24.Sells,
				pool.Attributes.PriceChangePercentage.H24,
				pool.Attributes.ReserveInUSD)
		}
		return
	}
	if data.DexScreenerData != nil {
		dex := data.DexScreenerData
		fmt.Fprintf(b, "Price: $%s\n", dex.PriceUSD)
		fmt.Fprintf(b, "Market cap: $%.0f\n", dex.MarketCapUSD)
		fmt.Fprintf(b, "24h volume: $%.0f\n", dex.Volume24h)
		fmt.Fprintf(b, "24h price change: %.2f%%\n", dex.PriceChange24h)
		fmt.Fprintf(b, "Liquidity: $%.0f\n", dex.LiquidityUSD)
		return
	}
	b.WriteString("(no market data)\n")
}

func writeWalletContext(b *strings.Builder, stats *dataflows.WalletStats, pnl *dataflows.TokenPnL) {
	if stats == nil && pnl == nil {
		b.WriteString("(no trading history available)\n")
		return
	}
	if stats != nil {
		fmt.Fprintf(b, "Overall: winrate %s%%, combined PnL $%s, %d tokens traded, average hold %s days\n",
			stats.Winrate.StringFixed(1),
			stats.CombinedPnLUSD.StringFixed(2),
			stats.TokensTraded,
			stats.AverageHoldingTimeDays.StringFixed(1))
	}
	if pnl != nil {
		fmt.Fprintf(b, "This token: %d swaps, bought $%s, sold $%s, PnL $%s (ROI %s%%)\n",
			pnl.NumSwaps,
			pnl.TotalBuyUSD.StringFixed(2),
			pnl.TotalSellUSD.StringFixed(2),
			pnl.TotalPnLUSD.StringFixed(2),
			pnl.ROIPercentage.StringFixed(1))
		if pnl.HasPosition() {
			fmt.Fprintf(b, "Open position: roughly $%s at cost\n", pnl.CurrentPositionUSD().StringFixed(2))
		}
		if pnl.IsHoneypot {
			b.WriteString("WARNING: this token is flagged as a honeypot.\n")
		}
	}
}
