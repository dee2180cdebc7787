// Package pipeline orchestrates one token analysis request: aggregate data,
// format questions, fan out to the answer models, synthesize, parse.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yeetorjeet/yeetorjeet/internal/ai"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

// Stage failure sentinels. The exact strings are part of the contract with the
// presentation layer, which shows them verbatim with a retry action.
var (
	ErrInvalidTokenAddress  = errors.New("Invalid token address")
	ErrInvalidWalletAddress = errors.New("Invalid wallet address")
	ErrUnsupportedChain     = errors.New("Unsupported chain")
	ErrGatherTokenData      = errors.New("Failed to gather token data")
	ErrAnalyzeToken         = errors.New("Failed to analyze token")
	ErrAIAnswers            = errors.New("Failed to get answers from AI")
	ErrSynthesize           = errors.New("Failed to synthesize responses")
	ErrParseResults         = errors.New("Failed to parse analysis results")
)

// StartingData is the aggregated snapshot for one (chain, token, wallet)
// triple. Built once per request, immutable afterwards, never persisted.
type StartingData struct {
	ChainID           int                          `json:"chainId"`
	TokenAddress      string                       `json:"tokenAddress"`
	UserWalletAddress string                       `json:"userWalletAddress"`
	ContractABI       string                       `json:"contractABI,omitempty"`
	GeckoTerminalData *dataflows.GeckoTerminalData `json:"geckoTerminalData,omitempty"`
	DexScreenerData   *dataflows.DexScreenerToken  `json:"dexScreenerData,omitempty"`
	GrowthScore       float64                      `json:"growthScore"`
	// HourlyTransferCounts is chronologically ascending.
	HourlyTransferCounts []dataflows.TransferCount `json:"hourlyTransferCounts"`
}

// TokenName returns the best available token name across market sources.
func (sd *StartingData) TokenName() string {
	if sd.GeckoTerminalData != nil && sd.GeckoTerminalData.Data.Attributes.Name != "" {
		return sd.GeckoTerminalData.Data.Attributes.Name
	}
	if sd.DexScreenerData != nil {
		return sd.DexScreenerData.Name
	}
	return ""
}

// TokenSymbol returns the best available token symbol across market sources.
func (sd *StartingData) TokenSymbol() string {
	if sd.GeckoTerminalData != nil && sd.GeckoTerminalData.Data.Attributes.Symbol != "" {
		return sd.GeckoTerminalData.Data.Attributes.Symbol
	}
	if sd.DexScreenerData != nil {
		return sd.DexScreenerData.Symbol
	}
	return ""
}

// Verdict types the synthesizer may emit.
const (
	VerdictBuy  = "buy"
	VerdictSell = "sell"
	VerdictHold = "hold"
)

// Section names of the analysis document.
const (
	SectionInputs  = "inputs"
	SectionVerdict = "verdict"
	SectionDetails = "details"
)

// Action is one suggested trade attached to a verdict.
type Action struct {
	Label                 string          `json:"label"`
	Description           string          `json:"description"`
	Subtext               string          `json:"subtext,omitempty"`
	RecommendedPercentage float64         `json:"recommendedPercentage"`
	TxData                json.RawMessage `json:"txData,omitempty"`
}

// Section is one entry of the analysis document, discriminated by the
// "section" field. The three variants share a flat struct; validation enforces
// which fields each variant must carry.
type Section struct {
	Section string `json:"section"`

	// inputs
	TokenAddress  string `json:"tokenAddress,omitempty"`
	TokenName     string `json:"tokenName,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	ChainID       int    `json:"chainId,omitempty"`

	// verdict
	Type        string   `json:"type,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Actions     []Action `json:"actions,omitempty"`

	// details
	Content string `json:"content,omitempty"`
}

// TokenAnalysis is the final analysis document handed to the presentation
// layer.
type TokenAnalysis struct {
	Sections []Section `json:"sections"`
}

// Validate enforces the document schema: the model's output is untrusted wire
// data, so the check goes beyond "sections exists" — exactly one of each
// variant, verdict type constrained, required fields present.
func (a *TokenAnalysis) Validate() error {
	if len(a.Sections) == 0 {
		return fmt.Errorf("sections missing or empty")
	}

	counts := map[string]int{}
	for i, section := range a.Sections {
		switch section.Section {
		case SectionInputs:
			if section.TokenAddress == "" {
				return fmt.Errorf("inputs section missing token address")
			}
		case SectionVerdict:
			switch section.Type {
			case VerdictBuy, VerdictSell, VerdictHold:
			default:
				return fmt.Errorf("verdict type %q is not buy, sell or hold", section.Type)
			}
			if section.Title == "" || section.Description == "" {
				return fmt.Errorf("verdict section missing title or description")
			}
		case SectionDetails:
			if section.Content == "" {
				return fmt.Errorf("details section missing content")
			}
		default:
			return fmt.Errorf("section %d has unknown name %q", i, section.Section)
		}
		counts[section.Section]++
	}

	for _, name := range []string{SectionInputs, SectionVerdict, SectionDetails} {
		if counts[name] != 1 {
			return fmt.Errorf("expected exactly one %q section, got %d", name, counts[name])
		}
	}

	return nil
}

// Verdict returns the verdict section of a validated analysis.
func (a *TokenAnalysis) Verdict() *Section {
	for i := range a.Sections {
		if a.Sections[i].Section == SectionVerdict {
			return &a.Sections[i]
		}
	}
	return nil
}

// ParseTokenAnalysis turns raw model output into a validated analysis
// document: sanitize control characters, cut the JSON object out of any
// surrounding prose, unmarshal, validate.
func ParseTokenAnalysis(raw string) (*TokenAnalysis, error) {
	doc, err := ai.ExtractJSONObject(ai.SanitizeModelJSON(raw))
	if err != nil {
		return nil, err
	}

	var analysis TokenAnalysis
	if err := json.Unmarshal([]byte(doc), &analysis); err != nil {
		return nil, fmt.Errorf("analysis is not valid JSON: %w", err)
	}

	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	return &analysis, nil
}
