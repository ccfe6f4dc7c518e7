package routing

import (
	"strings"
	"testing"
)

func TestScoreComplexity_Empty(t *testing.T) {
	if got := ScoreComplexity(""); got != 0 {
		t.Errorf("empty prompt should score 0, got %v", got)
	}
}

func TestScoreComplexity_Bounds(t *testing.T) {
	prompts := []string{
		"hi",
		"What is the capital of France?",
		strings.Repeat("Analyze the system architecture and optimize it. ", 200),
		"```python\ndef f(x):\n    return {\"a\": x + 1}\n```",
		strings.Repeat("1234567890 ", 100),
	}
	for _, p := range prompts {
		got := ScoreComplexity(p)
		if got < 0 || got > 1 {
			t.Errorf("score out of [0,1]: %v", got)
		}
	}
}

func TestScoreComplexity_ShortPlainPromptIsSimple(t *testing.T) {
	got := ScoreComplexity("What is the capital of France?")
	if got >= 0.25 {
		t.Errorf("short plain prompt should be simple, got %v", got)
	}
}

func TestScoreComplexity_CodeRaisesScore(t *testing.T) {
	plain := ScoreComplexity("please look at my snippet and tell me what it does")
	code := ScoreComplexity("please look at my snippet and tell me what it does ```def f(): pass```")
	if code <= plain {
		t.Errorf("code fence should raise the score: %v vs %v", code, plain)
	}
}

func TestScoreComplexity_KeywordRaisesScore(t *testing.T) {
	plain := ScoreComplexity("tell me about the weather in Paris")
	keyword := ScoreComplexity("analyze the weather in Paris over time")
	if keyword <= plain {
		t.Errorf("complexity keyword should raise the score: %v vs %v", keyword, plain)
	}
}

func TestScoreComplexity_LengthMonotone(t *testing.T) {
	short := ScoreComplexity(strings.Repeat("word ", 20))
	long := ScoreComplexity(strings.Repeat("word ", 200))
	if long <= short {
		t.Errorf("longer prompt should score higher: %v vs %v", long, short)
	}
}

func TestScoreComplexity_LongPromptIsComplex(t *testing.T) {
	prompt := strings.Repeat("Design the policy architecture and explain the tradeoffs. ", 60)
	got := ScoreComplexity(prompt)
	if got < 0.6 {
		t.Errorf("long keyword-dense prompt should be complex, got %v", got)
	}
}

func TestChooseBand_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, "simple"},
		{0.24999, "simple"},
		{0.25, "moderate"},
		{0.59999, "moderate"},
		{0.6, "complex"},
		{1.0, "complex"},
	}
	for _, tc := range cases {
		if got := ChooseBand(tc.score); got != tc.want {
			t.Errorf("ChooseBand(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
