// Package display renders analysis results for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
	"github.com/yeetorjeet/yeetorjeet/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	buyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	sellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	holdStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(78)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderAnalysis renders a validated analysis document.
func RenderAnalysis(analysis *pipeline.TokenAnalysis) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🪙 YEET OR JEET"))
	b.WriteString("\n\n")

	for _, section := range analysis.Sections {
		switch section.Section {
		case pipeline.SectionInputs:
			b.WriteString(renderInputs(section))
		case pipeline.SectionVerdict:
			b.WriteString(renderVerdict(section))
		case pipeline.SectionDetails:
			b.WriteString(boxStyle.Render(section.Content))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderInputs(section pipeline.Section) string {
	var lines []string
	name := section.TokenName
	if section.TokenSymbol != "" {
		name = fmt.Sprintf("%s ($%s)", name, strings.ToUpper(section.TokenSymbol))
	}
	lines = append(lines, labelStyle.Render("Token:  ")+name)
	lines = append(lines, labelStyle.Render("Address:")+" "+section.TokenAddress)
	if chain, ok := chains.Lookup(section.ChainID); ok {
		lines = append(lines, labelStyle.Render("Chain:  ")+fmt.Sprintf("%s (%d)", chain.Name, chain.ID))
	}
	lines = append(lines, labelStyle.Render("Wallet: ")+section.WalletAddress)
	return strings.Join(lines, "\n") + "\n\n"
}

func renderVerdict(section pipeline.Section) string {
	var b strings.Builder

	b.WriteString(verdictBadge(section.Type))
	b.WriteString("  ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(section.Title))
	b.WriteString("\n")
	b.WriteString(section.Description)
	b.WriteString("\n")

	for _, action := range section.Actions {
		fmt.Fprintf(&b, "  • %s", action.Label)
		if action.RecommendedPercentage > 0 {
			fmt.Fprintf(&b, " (%.0f%%)", action.RecommendedPercentage)
		}
		b.WriteString("\n")
		if action.Description != "" {
			b.WriteString(dimStyle.Render("    " + action.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	return b.String()
}

func verdictBadge(verdictType string) string {
	switch verdictType {
	case pipeline.VerdictBuy:
		return buyStyle.Render("🚀 YEET (BUY)")
	case pipeline.VerdictSell:
		return sellStyle.Render("💀 JEET (SELL)")
	default:
		return holdStyle.Render("✋ HOLD")
	}
}

// RenderTokenGrid renders the top-tokens listing used by the interactive
// picker.
func RenderTokenGrid(tokens []dataflows.DexScreenerToken) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-8s %-24s %12s %14s %10s", "SYMBOL", "NAME", "PRICE", "24H VOLUME", "24H")))
	b.WriteString("\n")
	for _, token := range tokens {
		change := fmt.Sprintf("%+.1f%%", token.PriceChange24h)
		if token.PriceChange24h >= 0 {
			change = buyStyle.Render(change)
		} else {
			change = sellStyle.Render(change)
		}
		fmt.Fprintf(&b, "%-8s %-24s %12s %14.0f %10s\n",
			strings.ToUpper(token.Symbol), truncate(token.Name, 24), "$"+token.PriceUSD, token.Volume24h, change)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
