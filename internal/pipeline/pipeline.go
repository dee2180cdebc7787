package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/ai"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

// MarketSource is the primary market-data lookup (GeckoTerminal).
type MarketSource interface {
	TokenWithPools(ctx context.Context, chain chains.Chain, tokenAddress string) (*dataflows.GeckoTerminalData, error)
}

// FallbackMarketSource is the secondary market-data lookup (DexScreener).
type FallbackMarketSource interface {
	TokenInfo(ctx context.Context, chain chains.Chain, tokenAddress string) (*dataflows.DexScreenerToken, error)
}

// ABISource looks up verified contract ABIs.
type ABISource interface {
	ContractABI(ctx context.Context, chainID int, tokenAddress string) (string, error)
}

// TransferSource provides hourly Transfer-event counts.
type TransferSource interface {
	HourlyTransferCounts(ctx context.Context, chainID int, tokenAddress string) ([]dataflows.TransferCount, error)
}

// WalletAnalytics provides wallet and token P&L context. Optional; synthesis
// proceeds without it.
type WalletAnalytics interface {
	WalletStats(ctx context.Context, walletAddress, chainSlug string, timeframe dataflows.Timeframe) (*dataflows.WalletStats, error)
	TokenPnL(ctx context.Context, walletAddress, tokenAddress, chainSlug string, timeframe dataflows.Timeframe) (*dataflows.TokenPnL, error)
}

// OnChainResponder answers questions with direct blockchain access (Nebula).
type OnChainResponder interface {
	Ask(ctx context.Context, question string, chainID int, tokenAddress, walletAddress string) (string, error)
}

// ResearchResponder answers questions with web search access (Perplexity).
type ResearchResponder interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Pipeline wires the collaborators for token analysis. Construct once per
// process and share across requests; all per-request state lives on the stack.
type Pipeline struct {
	cfg    *config.Config
	log    zerolog.Logger
	policy config.MarketDataPolicy

	llm       ai.Chat
	market    MarketSource
	fallback  FallbackMarketSource
	abi       ABISource
	transfers TransferSource
	analytics WalletAnalytics
	nebula    OnChainResponder
	research  ResearchResponder
}

// New assembles a pipeline from already-constructed collaborators. analytics
// may be nil when no Cielo key is configured.
func New(cfg *config.Config, log zerolog.Logger, llm ai.Chat, market MarketSource, fallback FallbackMarketSource, abi ABISource, transfers TransferSource, analytics WalletAnalytics, nebula OnChainResponder, research ResearchResponder) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		log:       log.With().Str("component", "pipeline").Logger(),
		policy:    cfg.MarketDataPolicy,
		llm:       llm,
		market:    market,
		fallback:  fallback,
		abi:       abi,
		transfers: transfers,
		analytics: analytics,
		nebula:    nebula,
		research:  research,
	}
}

// Analyze runs the whole request: validate inputs, aggregate data, format
// questions, fan out to both answer models, synthesize, parse. Every stage
// failure is terminal; there is no retry at any layer.
func (p *Pipeline) Analyze(ctx context.Context, chainID int, tokenAddress, walletAddress string) (*TokenAnalysis, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, ErrInvalidTokenAddress
	}
	if !common.IsHexAddress(walletAddress) {
		return nil, ErrInvalidWalletAddress
	}
	chain, ok := chains.Lookup(chainID)
	if !ok {
		return nil, ErrUnsupportedChain
	}

	data, err := p.GatherStartingData(ctx, chain, tokenAddress, walletAddress)
	if err != nil {
		p.log.Error().Err(err).Str("token", tokenAddress).Msg("aggregation failed")
		return nil, fmt.Errorf("%w: %v", ErrGatherTokenData, err)
	}

	questions, err := ai.FormatQuestions(ctx, p.llm, p.userIntent(chain, data))
	if err != nil {
		p.log.Error().Err(err).Msg("question formatting failed")
		return nil, fmt.Errorf("%w: %v", ErrAnalyzeToken, err)
	}

	nebulaAnswer, perplexityAnswer := p.askBoth(ctx, questions, data)
	if nebulaAnswer == "" && perplexityAnswer == "" {
		return nil, ErrAIAnswers
	}

	raw, err := p.Synthesize(ctx, chain, data, nebulaAnswer, perplexityAnswer)
	if err != nil {
		p.log.Error().Err(err).Msg("synthesis failed")
		return nil, fmt.Errorf("%w: %v", ErrSynthesize, err)
	}

	analysis, err := ParseTokenAnalysis(raw)
	if err != nil {
		p.log.Error().Err(err).Msg("analysis parse failed")
		return nil, fmt.Errorf("%w: %v", ErrParseResults, err)
	}

	return analysis, nil
}

// askBoth fans the two questions out concurrently. One responder failing is
// tolerated; its answer degrades to empty and synthesis runs on the other.
func (p *Pipeline) askBoth(ctx context.Context, questions *ai.FormattedQuestions, data *StartingData) (string, string) {
	var (
		wg               sync.WaitGroup
		nebulaAnswer     string
		perplexityAnswer string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		answer, err := p.nebula.Ask(ctx, questions.QuestionNebula, data.ChainID, data.TokenAddress, data.UserWalletAddress)
		if err != nil {
			p.log.Warn().Err(err).Msg("nebula responder failed")
			return
		}
		nebulaAnswer = answer
	}()
	go func() {
		defer wg.Done()
		answer, err := p.research.Ask(ctx, questions.QuestionPerplexity)
		if err != nil {
			p.log.Warn().Err(err).Msg("perplexity responder failed")
			return
		}
		perplexityAnswer = answer
	}()
	wg.Wait()

	return nebulaAnswer, perplexityAnswer
}

// userIntent builds the combined context handed to the question formatter.
func (p *Pipeline) userIntent(chain chains.Chain, data *StartingData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Should I buy, sell or hold the token %s", data.TokenAddress)
	if name := data.TokenName(); name != "" {
		fmt.Fprintf(&b, " (%s", name)
		if symbol := data.TokenSymbol(); symbol != "" {
			fmt.Fprintf(&b, ", $%s", strings.ToUpper(symbol))
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " on %s (chain %d)?", chain.Name, chain.ID)
	fmt.Fprintf(&b, " My wallet is %s.", data.UserWalletAddress)
	fmt.Fprintf(&b, " The token scored %.2f/100 on 24h transfer growth.", data.GrowthScore)
	return b.String()
}
