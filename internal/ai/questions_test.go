package ai

import (
	"context"
	"strings"
	"testing"
)

type stubChat struct {
	reply string
	err   error
}

func (s *stubChat) Ask(ctx context.Context, prompt, system string) (string, error) {
	return s.reply, s.err
}

func TestParseFormattedQuestions(t *testing.T) {
	reply := `Here are your questions:
{"nebulaQuestion": "Who holds the supply?", "perplexityQuestion": "What is the project?"}
Hope that helps!`

	questions, err := ParseFormattedQuestions(reply)
	if err != nil {
		t.Fatalf("ParseFormattedQuestions failed: %v", err)
	}
	if questions.QuestionNebula != "Who holds the supply?" {
		t.Errorf("unexpected nebula question: %q", questions.QuestionNebula)
	}
	if questions.QuestionPerplexity != "What is the project?" {
		t.Errorf("unexpected perplexity question: %q", questions.QuestionPerplexity)
	}
}

func TestParseFormattedQuestionsFlattensNewlines(t *testing.T) {
	reply := "{\"nebulaQuestion\": \"Who\\nholds\\nthe supply?\", \"perplexityQuestion\": \"What is\nthe   project?\"}"

	questions, err := ParseFormattedQuestions(reply)
	if err != nil {
		t.Fatalf("ParseFormattedQuestions failed: %v", err)
	}
	if questions.QuestionNebula != "Who holds the supply?" {
		t.Errorf("newlines not flattened: %q", questions.QuestionNebula)
	}
	if questions.QuestionPerplexity != "What is the project?" {
		t.Errorf("whitespace not collapsed: %q", questions.QuestionPerplexity)
	}
}

func TestParseFormattedQuestionsErrors(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"no json object", "sorry, I cannot help with that"},
		{"missing question", `{"nebulaQuestion": "Who holds the supply?"}`},
		{"empty question", `{"nebulaQuestion": "", "perplexityQuestion": "What is the project?"}`},
		{"malformed json", `{"nebulaQuestion": "Who holds`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFormattedQuestions(tc.reply); err == nil {
				t.Errorf("expected error for %q", tc.reply)
			}
		})
	}
}

func TestFormatQuestionsWrapsChatError(t *testing.T) {
	llm := &stubChat{err: context.DeadlineExceeded}

	_, err := FormatQuestions(context.Background(), llm, "yeet or jeet $FOO?")
	if err == nil {
		t.Fatal("expected error from failing chat")
	}
	if !strings.Contains(err.Error(), "failed to format questions") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	dirty := "{\"verdict\": \"yeet\x00\",\x01 \"note\": \"line\\nbreak\"\x7f}"
	clean := SanitizeModelJSON(dirty)

	if clean != `{"verdict": "yeet", "note": "line\nbreak"}` {
		t.Errorf("unexpected sanitized output: %q", clean)
	}
}

func TestExtractJSONObject(t *testing.T) {
	doc, err := ExtractJSONObject("```json\n{\"a\": 1}\n```")
	if err != nil {
		t.Fatalf("ExtractJSONObject failed: %v", err)
	}
	if doc != `{"a": 1}` {
		t.Errorf("unexpected extraction: %q", doc)
	}

	if _, err := ExtractJSONObject("no braces here"); err == nil {
		t.Error("expected error when no object present")
	}
}
