package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

const (
	testToken  = "0xacfe4511ce883c14c4ea40563f176c3c09b421bf"
	testWallet = "0x1234567890abcdef1234567890abcdef12345678"
)

var errUpstream = errors.New("upstream unavailable")

type scriptedChat struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedChat) Ask(ctx context.Context, prompt, system string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.replies) {
		return "", fmt.Errorf("unexpected chat call %d", s.calls)
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

type stubMarket struct {
	data *dataflows.GeckoTerminalData
	err  error
}

func (s *stubMarket) TokenWithPools(ctx context.Context, chain chains.Chain, tokenAddress string) (*dataflows.GeckoTerminalData, error) {
	return s.data, s.err
}

type stubFallback struct {
	data *dataflows.DexScreenerToken
	err  error
}

func (s *stubFallback) TokenInfo(ctx context.Context, chain chains.Chain, tokenAddress string) (*dataflows.DexScreenerToken, error) {
	return s.data, s.err
}

type stubABI struct {
	abi string
	err error
}

func (s *stubABI) ContractABI(ctx context.Context, chainID int, tokenAddress string) (string, error) {
	return s.abi, s.err
}

type stubTransfers struct {
	counts []dataflows.TransferCount
	err    error
}

func (s *stubTransfers) HourlyTransferCounts(ctx context.Context, chainID int, tokenAddress string) ([]dataflows.TransferCount, error) {
	return s.counts, s.err
}

type stubNebula struct {
	answer string
	err    error
	called bool
}

func (s *stubNebula) Ask(ctx context.Context, question string, chainID int, tokenAddress, walletAddress string) (string, error) {
	s.called = true
	return s.answer, s.err
}

type stubResearch struct {
	answer string
	err    error
	called bool
}

func (s *stubResearch) Ask(ctx context.Context, question string) (string, error) {
	s.called = true
	return s.answer, s.err
}

func goodQuestionsReply() string {
	return `{"nebulaQuestion": "Who holds the supply?", "perplexityQuestion": "What is the project?"}`
}

func goodAnalysisReply() string {
	return fmt.Sprintf(`{"sections": [
		{"section": "inputs", "tokenAddress": "%s", "tokenName": "Test Token", "tokenSymbol": "TEST", "walletAddress": "%s", "chainId": 80094},
		{"section": "verdict", "type": "hold", "title": "Hold for now", "description": "Momentum is flat."},
		{"section": "details", "content": "## Analysis\nNothing alarming."}
	]}`, testToken, testWallet)
}

func geckoData() *dataflows.GeckoTerminalData {
	data := &dataflows.GeckoTerminalData{}
	data.Data.Attributes.Name = "Test Token"
	data.Data.Attributes.Symbol = "TEST"
	data.Data.Attributes.PriceUSD = "1.23"
	return data
}

type testDeps struct {
	chat      *scriptedChat
	market    *stubMarket
	fallback  *stubFallback
	abi       *stubABI
	transfers *stubTransfers
	nebula    *stubNebula
	research  *stubResearch
}

func defaultDeps() *testDeps {
	return &testDeps{
		chat:      &scriptedChat{replies: []string{goodQuestionsReply(), goodAnalysisReply()}},
		market:    &stubMarket{data: geckoData()},
		fallback:  &stubFallback{data: &dataflows.DexScreenerToken{Name: "Test Token", Symbol: "TEST"}},
		abi:       &stubABI{abi: `[{"type":"function"}]`},
		transfers: &stubTransfers{counts: []dataflows.TransferCount{
			{Date: "2026-08-28 10:00:00", Count: 10},
			{Date: "2026-08-28 11:00:00", Count: 30},
			{Date: "2026-08-28 12:00:00", Count: 20},
			{Date: "2026-08-28 13:00:00", Count: 60},
			{Date: "2026-08-28 14:00:00", Count: 90},
		}},
		nebula:   &stubNebula{answer: "Supply is well distributed."},
		research: &stubResearch{answer: "The project is active."},
	}
}

func newTestPipeline(deps *testDeps) *Pipeline {
	cfg := &config.Config{MarketDataPolicy: config.MarketDataAny}
	return New(cfg, zerolog.Nop(), deps.chat, deps.market, deps.fallback, deps.abi, deps.transfers, nil, deps.nebula, deps.research)
}

func TestAnalyzeHappyPath(t *testing.T) {
	deps := defaultDeps()
	p := newTestPipeline(deps)

	analysis, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(analysis.Sections))
	}
	verdict := analysis.Verdict()
	if verdict == nil || verdict.Type != VerdictHold {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
	if !deps.nebula.called || !deps.research.called {
		t.Error("both responders should have been queried")
	}
}

func TestAnalyzeInvalidTokenAddress(t *testing.T) {
	deps := defaultDeps()
	p := newTestPipeline(deps)

	for _, addr := range []string{"", "not-an-address", "0x123", testToken + "ff"} {
		_, err := p.Analyze(context.Background(), chains.Default.ID, addr, testWallet)
		if !errors.Is(err, ErrInvalidTokenAddress) {
			t.Errorf("address %q: got %v, want ErrInvalidTokenAddress", addr, err)
		}
	}

	if deps.chat.calls != 0 || deps.nebula.called || deps.research.called {
		t.Error("no upstream calls should be made for invalid input")
	}
}

func TestAnalyzeInvalidWalletAddress(t *testing.T) {
	p := newTestPipeline(defaultDeps())

	_, err := p.Analyze(context.Background(), chains.Default.ID, testToken, "0xnope")
	if !errors.Is(err, ErrInvalidWalletAddress) {
		t.Errorf("got %v, want ErrInvalidWalletAddress", err)
	}
}

func TestAnalyzeUnsupportedChain(t *testing.T) {
	p := newTestPipeline(defaultDeps())

	_, err := p.Analyze(context.Background(), 999999, testToken, testWallet)
	if !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("got %v, want ErrUnsupportedChain", err)
	}
}

func TestAnalyzeAllMarketSourcesFail(t *testing.T) {
	deps := defaultDeps()
	deps.market = &stubMarket{err: errUpstream}
	deps.fallback = &stubFallback{err: errUpstream}
	p := newTestPipeline(deps)

	_, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet)
	if !errors.Is(err, ErrGatherTokenData) {
		t.Fatalf("got %v, want ErrGatherTokenData", err)
	}

	if deps.chat.calls != 0 {
		t.Error("question formatting should not run after aggregation failure")
	}
	if deps.nebula.called || deps.research.called {
		t.Error("AI responders should not run after aggregation failure")
	}
}

func TestAnalyzeOneMarketSourceSuffices(t *testing.T) {
	deps := defaultDeps()
	deps.market = &stubMarket{err: errUpstream}
	p := newTestPipeline(deps)

	if _, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet); err != nil {
		t.Fatalf("Analyze should tolerate one market source failing: %v", err)
	}
}

func TestAnalyzeBothAIFail(t *testing.T) {
	deps := defaultDeps()
	deps.chat = &scriptedChat{replies: []string{goodQuestionsReply()}}
	deps.nebula = &stubNebula{err: errUpstream}
	deps.research = &stubResearch{err: errUpstream}
	p := newTestPipeline(deps)

	_, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet)
	if !errors.Is(err, ErrAIAnswers) {
		t.Errorf("got %v, want ErrAIAnswers", err)
	}
}

func TestAnalyzeOneAIFailureTolerated(t *testing.T) {
	deps := defaultDeps()
	deps.nebula = &stubNebula{err: errUpstream}
	p := newTestPipeline(deps)

	if _, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet); err != nil {
		t.Fatalf("Analyze should tolerate one responder failing: %v", err)
	}
}

func TestAnalyzeUnparseableSynthesis(t *testing.T) {
	deps := defaultDeps()
	deps.chat = &scriptedChat{replies: []string{goodQuestionsReply(), "I think you should probably hold, good luck!"}}
	p := newTestPipeline(deps)

	_, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet)
	if !errors.Is(err, ErrParseResults) {
		t.Errorf("got %v, want ErrParseResults", err)
	}
}

func TestAnalyzeQuestionFormattingFailure(t *testing.T) {
	deps := defaultDeps()
	deps.chat = &scriptedChat{replies: []string{`{"nebulaQuestion": "only one"}`}}
	p := newTestPipeline(deps)

	_, err := p.Analyze(context.Background(), chains.Default.ID, testToken, testWallet)
	if !errors.Is(err, ErrAnalyzeToken) {
		t.Errorf("got %v, want ErrAnalyzeToken", err)
	}
}

func TestCheckMarketDataPolicyMatrix(t *testing.T) {
	gecko := geckoData()
	dex := &dataflows.DexScreenerToken{Symbol: "TEST"}

	cases := []struct {
		name    string
		policy  config.MarketDataPolicy
		gecko   *dataflows.GeckoTerminalData
		dex     *dataflows.DexScreenerToken
		wantErr bool
	}{
		{"any with both", config.MarketDataAny, gecko, dex, false},
		{"any with gecko only", config.MarketDataAny, gecko, nil, false},
		{"any with dex only", config.MarketDataAny, nil, dex, false},
		{"any with neither", config.MarketDataAny, nil, nil, true},
		{"all with both", config.MarketDataAll, gecko, dex, false},
		{"all with gecko only", config.MarketDataAll, gecko, nil, true},
		{"all with dex only", config.MarketDataAll, nil, dex, true},
		{"all with neither", config.MarketDataAll, nil, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := &StartingData{GeckoTerminalData: tc.gecko, DexScreenerData: tc.dex}
			err := checkMarketData(tc.policy, data)
			if (err != nil) != tc.wantErr {
				t.Errorf("got err=%v, wantErr=%t", err, tc.wantErr)
			}
		})
	}
}

func TestGatherStartingDataSortsCounts(t *testing.T) {
	deps := defaultDeps()
	deps.transfers = &stubTransfers{counts: []dataflows.TransferCount{
		{Date: "2026-08-28 14:00:00", Count: 90},
		{Date: "2026-08-28 10:00:00", Count: 10},
		{Date: "2026-08-28 12:00:00", Count: 20},
	}}
	p := newTestPipeline(deps)

	data, err := p.GatherStartingData(context.Background(), chains.Default, testToken, testWallet)
	if err != nil {
		t.Fatalf("GatherStartingData failed: %v", err)
	}

	for i := 1; i < len(data.HourlyTransferCounts); i++ {
		if data.HourlyTransferCounts[i-1].Date > data.HourlyTransferCounts[i].Date {
			t.Fatalf("counts not ascending: %v", data.HourlyTransferCounts)
		}
	}
	if data.TokenAddress != testToken {
		t.Errorf("address not normalized: %q", data.TokenAddress)
	}
}

func TestParseTokenAnalysis(t *testing.T) {
	t.Run("valid with prose and control chars", func(t *testing.T) {
		raw := "Here you go:\n" + strings.ReplaceAll(goodAnalysisReply(), "Momentum is flat.", "Momentum\x00 is flat.")
		analysis, err := ParseTokenAnalysis(raw)
		if err != nil {
			t.Fatalf("ParseTokenAnalysis failed: %v", err)
		}
		if analysis.Verdict().Description != "Momentum is flat." {
			t.Errorf("control character not stripped: %q", analysis.Verdict().Description)
		}
	})

	t.Run("rejects bad documents", func(t *testing.T) {
		cases := []struct {
			name string
			raw  string
		}{
			{"not json", "hold, probably"},
			{"empty sections", `{"sections": []}`},
			{"sections not array", `{"sections": "hold"}`},
			{"unknown section", `{"sections": [{"section": "summary"}]}`},
			{"bad verdict type", `{"sections": [
				{"section": "inputs", "tokenAddress": "0xabc"},
				{"section": "verdict", "type": "yolo", "title": "t", "description": "d"},
				{"section": "details", "content": "c"}
			]}`},
			{"missing details", `{"sections": [
				{"section": "inputs", "tokenAddress": "0xabc"},
				{"section": "verdict", "type": "buy", "title": "t", "description": "d"}
			]}`},
			{"duplicate verdict", `{"sections": [
				{"section": "inputs", "tokenAddress": "0xabc"},
				{"section": "verdict", "type": "buy", "title": "t", "description": "d"},
				{"section": "verdict", "type": "sell", "title": "t", "description": "d"},
				{"section": "details", "content": "c"}
			]}`},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := ParseTokenAnalysis(tc.raw); err == nil {
					t.Errorf("expected error for %s", tc.name)
				}
			})
		}
	})
}

func TestBuildSynthesisPromptMentionsUnverifiedContract(t *testing.T) {
	data := &StartingData{
		ChainID:           chains.Default.ID,
		TokenAddress:      testToken,
		UserWalletAddress: testWallet,
	}

	prompt := BuildSynthesisPrompt(chains.Default, data, "answer A", "answer B", nil, nil)
	if !strings.Contains(prompt, "Contract is unverified") {
		t.Error("prompt should flag missing ABI as unverified")
	}
	if !strings.Contains(prompt, "answer A") || !strings.Contains(prompt, "answer B") {
		t.Error("prompt should embed both research answers")
	}

	data.ContractABI = `[{"type":"function"}]`
	prompt = BuildSynthesisPrompt(chains.Default, data, "", "", nil, nil)
	if !strings.Contains(prompt, "Contract is verified") {
		t.Error("prompt should report a published ABI")
	}
	if !strings.Contains(prompt, "(unavailable)") {
		t.Error("prompt should mark missing answers as unavailable")
	}
}
