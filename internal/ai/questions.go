package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// questionFormatterSystemPrompt instructs the model to split a raw user request
// into one question per downstream model: an on-chain question for the
// blockchain-aware model and a market/social question for the web-search model.
const questionFormatterSystemPrompt = `You are a question formatter for a crypto token analysis pipeline.
Given a user's request about a token, produce exactly two research questions:

1. "nebulaQuestion": a question about on-chain facts for this token: holder distribution, contract behavior, transfer activity, liquidity movements. It will be answered by a model with direct blockchain access.
2. "perplexityQuestion": a question about off-chain context: the project, team, community sentiment, recent news, comparable tokens. It will be answered by a model with web search access.

Respond with ONLY a JSON object of the form:
{"nebulaQuestion": "...", "perplexityQuestion": "..."}

No markdown, no commentary, no extra keys.`

var whitespaceRun = regexp.MustCompile(`\s+`)

// FormattedQuestions is the pair of research questions fanned out to the two
// answer models.
type FormattedQuestions struct {
	QuestionNebula     string `json:"nebulaQuestion"`
	QuestionPerplexity string `json:"perplexityQuestion"`
}

// FormatQuestions asks the formatter model to split the user's request into the
// two downstream questions and parses its reply.
func FormatQuestions(ctx context.Context, llm Chat, userInput string) (*FormattedQuestions, error) {
	reply, err := llm.Ask(ctx, userInput, questionFormatterSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to format questions: %w", err)
	}
	return ParseFormattedQuestions(reply)
}

// ParseFormattedQuestions extracts the question pair from a model reply. The
// reply may wrap the JSON in prose or pretty-print it across lines; both are
// tolerated. Either question missing or empty is an error.
func ParseFormattedQuestions(reply string) (*FormattedQuestions, error) {
	doc, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question response: %w", err)
	}

	// Models sometimes emit literal backslash-n sequences or raw newlines
	// inside the question strings; both flatten to a space.
	doc = strings.ReplaceAll(doc, `\n`, " ")
	doc = strings.ReplaceAll(doc, "\n", " ")

	var questions FormattedQuestions
	if err := json.Unmarshal([]byte(doc), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse question response: %w", err)
	}

	questions.QuestionNebula = collapseWhitespace(questions.QuestionNebula)
	questions.QuestionPerplexity = collapseWhitespace(questions.QuestionPerplexity)

	if questions.QuestionNebula == "" || questions.QuestionPerplexity == "" {
		return nil, fmt.Errorf("question response missing one or both questions")
	}

	return &questions, nil
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
