package services

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"fraudlens/internal/domain/models"
	"fraudlens/pkg/logger"
)

// PreviewLength is the number of characters of submitted text echoed back
const PreviewLength = 500

// AnalysisObserver is notified of every completed analysis
type AnalysisObserver interface {
	ObserveAnalysis(channel models.Channel, verdict models.Verdict, score int)
}

// Engine runs the channel analyzers and assembles their findings into
// the unified AnalysisResult. It is safe for concurrent use.
type Engine struct {
	text     *TextSignalAnalyzer
	url      *URLRiskAnalyzer
	behavior *BehaviorAggregator
	observer AnalysisObserver
	logger   *logger.Logger
}

// NewEngine creates an engine with the default rule sets. observer may be nil.
func NewEngine(observer AnalysisObserver, log *logger.Logger) *Engine {
	return &Engine{
		text:     NewTextSignalAnalyzer(),
		url:      NewURLRiskAnalyzer(),
		behavior: NewBehaviorAggregator(),
		observer: observer,
		logger:   log.WithComponent("risk-engine"),
	}
}

// AnalyzeText scores text arriving on the text, voice or OCR channel
func (e *Engine) AnalyzeText(channel models.Channel, text string) (*models.AnalysisResult, error) {
	if !channel.IsTextual() {
		return nil, fmt.Errorf("channel %q is not a text channel", channel)
	}

	signals, err := e.text.Analyze(text)
	if err != nil {
		return nil, err
	}

	result := e.assemble(channel, signals.Score)
	result.Reasons = signals.Reasons
	result.Preview = truncateRunes(text, PreviewLength)
	if channel == models.ChannelVoice {
		result.Transcript = text
	}

	e.finish(result)
	return result, nil
}

// AnalyzeURL scores a single URL
func (e *Engine) AnalyzeURL(rawURL string) (*models.AnalysisResult, error) {
	risk, err := e.url.Analyze(rawURL)
	if err != nil {
		return nil, err
	}

	result := e.assemble(models.ChannelURL, risk.Score)
	result.Reasons = risk.Reasons
	result.URL = rawURL

	e.finish(result)
	return result, nil
}

// AnalyzeBehavior scores an already parsed batch of transaction records
func (e *Engine) AnalyzeBehavior(records []models.TransactionRecord) *models.AnalysisResult {
	assessment := e.behavior.Aggregate(records)

	result := e.assemble(models.ChannelBehavior, assessment.Score)
	result.Rows = assessment.Rows
	result.Alerts = assessment.Alerts

	e.finish(result)
	return result
}

// AnalyzeTable parses a CSV transaction table and scores it. Unreadable
// tables yield a *models.TableParseError and are not scored.
func (e *Engine) AnalyzeTable(r io.Reader) (*models.AnalysisResult, error) {
	records, err := ParseTransactionTable(r)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeBehavior(records), nil
}

// assemble derives every label from the final score
func (e *Engine) assemble(channel models.Channel, score int) *models.AnalysisResult {
	score = ClampScore(score)
	level, color := ClassifyRisk(score)
	verdict, status := VerdictStatus(score)

	return &models.AnalysisResult{
		ID:         uuid.New(),
		Type:       channel,
		Score:      score,
		SmallScore: SmallScore(score),
		Verdict:    verdict,
		Status:     status,
		RiskLevel:  level,
		RiskColor:  color,
	}
}

func (e *Engine) finish(result *models.AnalysisResult) {
	e.logger.Info().
		Str("analysis_id", result.ID.String()).
		Str("channel", string(result.Type)).
		Int("score", result.Score).
		Str("verdict", string(result.Verdict)).
		Msg("analysis complete")

	if e.observer != nil {
		e.observer.ObserveAnalysis(result.Type, result.Verdict, result.Score)
	}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
