package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"fraudlens/internal/domain/models"
)

// Reason strings emitted by the text analyzer
const (
	ReasonLottery         = "Lottery / prize language detected"
	ReasonFinancialDetail = "Asks for UPI / bank / account / transaction details"
	ReasonAdvanceFee      = "Advance-fee / processing fee pattern detected"
	ReasonLargeSum        = "Mentions a large sum of money"
	ReasonTransferPromise = "Promises/requests money transfer"
	ReasonShortCode       = "Contains short numeric code (possible OTP/PIN)"
	ReasonExclamations    = "Multiple exclamation marks (urgency)"
	ReasonCapitalization  = "High capitalization ratio"
	reasonKeywordFormat   = "Contains suspicious keyword: %s"
)

// Rule weights
const (
	weightLottery         = 40
	weightFinancialDetail = 35
	weightAdvanceFee      = 20
	weightLargeSum        = 20
	weightTransferPromise = 20
	weightShortCode       = 8
	weightKeyword         = 6
	weightExclamations    = 5
	weightCapitalization  = 5

	minExclamations = 3
	maxCapsRatio    = 0.25
)

// phraseRule fires once when any of its phrases occurs in the lower-cased text
type phraseRule struct {
	phrases []string
	weight  int
	reason  string
}

// patternRule fires once when its expression matches the lower-cased text
type patternRule struct {
	pattern *regexp.Regexp
	weight  int
	reason  string
}

// TextSignals is the outcome of scoring one piece of text
type TextSignals struct {
	Score   int
	Reasons []string
}

// TextSignalAnalyzer scores free text, speech transcripts and OCR output
// with weighted phrase and pattern rules. It holds only immutable rule
// tables and is safe for concurrent use.
type TextSignalAnalyzer struct {
	phraseRules  []phraseRule
	patternRules []patternRule
	keywords     []string
}

// NewTextSignalAnalyzer creates an analyzer with the default rule set
func NewTextSignalAnalyzer() *TextSignalAnalyzer {
	return &TextSignalAnalyzer{
		phraseRules: []phraseRule{
			{
				phrases: []string{
					"you have won", "won a lottery", "winner", "lucky draw", "prize", "reward",
					"congratulations you have won", "claim your prize", "won an amount",
					"sudden lottery", "you are the winner", "selected winner",
				},
				weight: weightLottery,
				reason: ReasonLottery,
			},
			{
				phrases: []string{
					"upi", "bank details", "account details", "send your bank", "provide your bank",
					"share your bank", "give me your bank", "send your upi", "provide account details",
					"transaction details", "pay details", "account number",
				},
				weight: weightFinancialDetail,
				reason: ReasonFinancialDetail,
			},
			{
				phrases: []string{
					"processing fee", "claim fee", "transfer to receive", "exchange the money",
					"fee to release", "pay small fee", "release the amount",
				},
				weight: weightAdvanceFee,
				reason: ReasonAdvanceFee,
			},
		},
		patternRules: []patternRule{
			{
				pattern: regexp.MustCompile(`\$\s*\d{3,}|\d{4,}\s*(?:usd|inr|rs|rupees|₹)?`),
				weight:  weightLargeSum,
				reason:  ReasonLargeSum,
			},
			{
				pattern: regexp.MustCompile(`send you the amount|send the amount|i will send you|i can send you|transfer to you|to receive the amount`),
				weight:  weightTransferPromise,
				reason:  ReasonTransferPromise,
			},
			{
				pattern: regexp.MustCompile(`\b\d{4,6}\b`),
				weight:  weightShortCode,
				reason:  ReasonShortCode,
			},
		},
		keywords: []string{"urgent", "immediately", "verify", "otp", "click", "password"},
	}
}

// Analyze scores text. Text that is empty after trimming is rejected
// with models.ErrEmptyInput.
func (a *TextSignalAnalyzer) Analyze(text string) (TextSignals, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TextSignals{}, models.ErrEmptyInput
	}
	lower := strings.ToLower(text)

	score := 0
	reasons := NewReasonSet()

	for _, rule := range a.phraseRules {
		if containsAny(lower, rule.phrases) {
			score += rule.weight
			reasons.Add(rule.reason)
		}
	}

	for _, rule := range a.patternRules {
		if rule.pattern.MatchString(lower) {
			score += rule.weight
			reasons.Add(rule.reason)
		}
	}

	for _, kw := range a.keywords {
		if strings.Contains(lower, kw) {
			score += weightKeyword
			reasons.Add(fmt.Sprintf(reasonKeywordFormat, kw))
		}
	}

	if strings.Count(text, "!") >= minExclamations {
		score += weightExclamations
		reasons.Add(ReasonExclamations)
	}

	if capsRatio(text) > maxCapsRatio {
		score += weightCapitalization
		reasons.Add(ReasonCapitalization)
	}

	return TextSignals{
		Score:   ClampScore(score),
		Reasons: reasons.List(),
	}, nil
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// capsRatio is the share of ASCII capitals among all characters of s
func capsRatio(s string) float64 {
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return 0
	}
	caps := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			caps++
		}
	}
	return float64(caps) / float64(total)
}
