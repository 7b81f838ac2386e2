package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies how content reached the engine
type Channel string

const (
	ChannelText     Channel = "text"
	ChannelVoice    Channel = "voice"  // speech transcript
	ChannelOCR      Channel = "ocr"    // text recognised from an image
	ChannelURL      Channel = "url"
	ChannelBehavior Channel = "behavior" // uploaded transaction table
)

// IsTextual reports whether the channel is scored by the text analyzer
func (c Channel) IsTextual() bool {
	return c == ChannelText || c == ChannelVoice || c == ChannelOCR
}

// RiskLevel is the five-tier classification of a score
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "Critical Scam"
	RiskLevelHigh     RiskLevel = "High Risk"
	RiskLevelModerate RiskLevel = "Moderate Risk"
	RiskLevelLow      RiskLevel = "Low Risk"
	RiskLevelClean    RiskLevel = "Clean / Safe"
)

// Verdict is the three-tier label of a score. It doubles as the status.
type Verdict string

const (
	VerdictPotentialFraud Verdict = "POTENTIAL FRAUD"
	VerdictUnsafe         Verdict = "UNSAFE"
	VerdictSafe           Verdict = "SAFE"
)

// Score bounds
const (
	MinScore = 0
	MaxScore = 100
)

// UnknownAccount stands in for a missing from/to account identifier
const UnknownAccount = "unknown"

// TransactionRecord is one row of an uploaded transaction table
type TransactionRecord struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Alert is a per-account finding emitted by the behavior aggregator.
// Only the metrics relevant to the triggering rule are set.
type Alert struct {
	From      string   `json:"from"`
	Reason    string   `json:"reason"`
	Avg       *float64 `json:"avg,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	TxCount   *int     `json:"tx,omitempty"`
	Receivers *int     `json:"receivers,omitempty"`
}

// AnalysisResult is the unified response of every channel
type AnalysisResult struct {
	ID         uuid.UUID `json:"id"`
	Type       Channel   `json:"type"`
	Score      int       `json:"score"`
	SmallScore int       `json:"smallScore"`
	Verdict    Verdict   `json:"verdict"`
	Status     Verdict   `json:"status"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	RiskColor  string    `json:"riskColor"`

	// Text and URL channels
	Reasons []string `json:"reasons,omitempty"`

	// Behavior channel
	Rows   int     `json:"rows,omitempty"`
	Alerts []Alert `json:"alerts,omitempty"`

	// Channel-specific echoes
	Preview    string `json:"preview,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	URL        string `json:"url,omitempty"`
}

// MarshalJSON always emits the channel's list field, empty or not:
// reasons for text and URL results, rows and alerts for behavior results.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult

	if r.Type == ChannelBehavior {
		alerts := r.Alerts
		if alerts == nil {
			alerts = []Alert{}
		}
		return json.Marshal(struct {
			plain
			Rows   int     `json:"rows"`
			Alerts []Alert `json:"alerts"`
		}{plain(r), r.Rows, alerts})
	}

	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return json.Marshal(struct {
		plain
		Reasons []string `json:"reasons"`
	}{plain(r), reasons})
}

var (
	// ErrEmptyInput is returned when required text or URL input is missing
	ErrEmptyInput = errors.New("input is required")

	// ErrMissingUpload is returned when no transaction table was uploaded
	ErrMissingUpload = errors.New("file required (csv)")
)

// TableParseError reports a transaction table that could not be read as tabular data
type TableParseError struct {
	Err error
}

func (e *TableParseError) Error() string {
	return fmt.Sprintf("CSV parse failed: %v", e.Err)
}

func (e *TableParseError) Unwrap() error {
	return e.Err
}

// Detail returns the underlying parser message
func (e *TableParseError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
