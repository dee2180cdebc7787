package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
	"github.com/yeetorjeet/yeetorjeet/internal/display"
	"github.com/yeetorjeet/yeetorjeet/internal/service"
)

// runInteractiveMode walks the user through chain, token and wallet selection,
// then runs the analysis.
func runInteractiveMode(ctx context.Context, cfg *config.Config) error {
	svc, err := service.New(ctx, cfg)
	if err != nil {
		return err
	}

	chain, err := pickChain()
	if err != nil {
		return err
	}

	tokenAddress, err := pickToken(ctx, svc, chain)
	if err != nil {
		return err
	}

	var walletAddress string
	if err := survey.AskOne(&survey.Input{
		Message: "Your wallet address:",
	}, &walletAddress, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	fmt.Printf("🚀 Analyzing %s on %s...\n", tokenAddress, chain.Name)

	analysis, err := svc.Analyze(ctx, chain.ID, strings.TrimSpace(tokenAddress), strings.TrimSpace(walletAddress))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Println(display.RenderAnalysis(analysis))
	return nil
}

func pickChain() (chains.Chain, error) {
	options := make([]string, len(chains.Supported))
	byLabel := make(map[string]chains.Chain, len(chains.Supported))
	for i, chain := range chains.Supported {
		label := fmt.Sprintf("%s (%d)", chain.Name, chain.ID)
		options[i] = label
		byLabel[label] = chain
	}

	var choice string
	if err := survey.AskOne(&survey.Select{
		Message: "Pick a chain:",
		Options: options,
	}, &choice); err != nil {
		return chains.Chain{}, err
	}

	return byLabel[choice], nil
}

// pickToken offers the top-volume tokens plus a manual address entry. A failed
// top-tokens fetch degrades to manual entry only.
func pickToken(ctx context.Context, svc *service.Service, chain chains.Chain) (string, error) {
	const manualEntry = "Enter a token address manually"

	tokens, err := svc.TopTokens(ctx, chain.ID, 12)
	if err != nil {
		tokens = nil
	}

	if len(tokens) > 0 {
		fmt.Println(display.RenderTokenGrid(tokens))
	}

	options := make([]string, 0, len(tokens)+1)
	byLabel := make(map[string]dataflows.DexScreenerToken, len(tokens))
	for _, token := range tokens {
		label := fmt.Sprintf("%s - %s", strings.ToUpper(token.Symbol), token.Name)
		options = append(options, label)
		byLabel[label] = token
	}
	options = append(options, manualEntry)

	var choice string
	if err := survey.AskOne(&survey.Select{
		Message: "Pick a token:",
		Options: options,
	}, &choice); err != nil {
		return "", err
	}

	if choice != manualEntry {
		return byLabel[choice].Address, nil
	}

	var address string
	if err := survey.AskOne(&survey.Input{
		Message: "Token address:",
	}, &address, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return address, nil
}
