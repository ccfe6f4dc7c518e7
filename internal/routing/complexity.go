package routing

import (
	"regexp"
	"strings"
)

// Heuristic complexity scoring. Every sub-factor is individually bounded, so
// the final clamp is the only guard the score needs.
var (
	digitPattern    = regexp.MustCompile(`\d`)
	symbolPattern   = regexp.MustCompile(`[{}\[\]()=+\-*/<>]`)
	codePattern     = regexp.MustCompile(`\bclass\b|\bdef\b|\bfunction\b`)
	jsonPattern     = regexp.MustCompile(`(?s)\{.*:.*\}`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

var complexityKeywords = []string{
	"analyze", "optimize", "summarize", "compare",
	"design", "explain", "policy", "architecture",
}

// ScoreComplexity maps raw prompt text to a complexity score in [0,1].
// Deterministic, pure, no I/O. Empty input scores 0.
func ScoreComplexity(prompt string) float64 {
	if prompt == "" {
		return 0.0
	}

	fLen := clamp01(float64(len(prompt)) / 2000.0)
	fDigits := clamp01(float64(len(digitPattern.FindAllString(prompt, -1))) / 50.0)
	fSymbols := clamp01(float64(len(symbolPattern.FindAllString(prompt, -1))) / 80.0)

	fCode := 0.0
	if strings.Contains(prompt, "```") || codePattern.MatchString(prompt) {
		fCode = 0.2
	}
	fJSON := 0.0
	if jsonPattern.MatchString(prompt) {
		fJSON = 0.2
	}

	// Split on terminators; the trailing fragment counts as a sentence too.
	sentences := len(sentencePattern.Split(prompt, -1))
	fSent := clamp01(float64(sentences) / 20.0)

	fKw := 0.0
	lower := strings.ToLower(prompt)
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			fKw = 0.15
			break
		}
	}

	score := 0.45*fLen + 0.15*fDigits + 0.1*fSymbols + fCode + fJSON + 0.2*fSent + fKw
	return clamp01(score)
}

// ChooseBand maps a complexity score to a coarse difficulty band alias.
func ChooseBand(score float64) string {
	if score < 0.25 {
		return "simple"
	}
	if score < 0.6 {
		return "moderate"
	}
	return "complex"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
