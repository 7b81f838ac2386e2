package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlens/internal/domain/models"
	"fraudlens/pkg/logger"
)

type observation struct {
	channel models.Channel
	verdict models.Verdict
	score   int
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *fakeObserver) ObserveAnalysis(channel models.Channel, verdict models.Verdict, score int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{channel, verdict, score})
}

func newTestEngine() (*Engine, *fakeObserver) {
	obs := &fakeObserver{}
	return NewEngine(obs, logger.Nop()), obs
}

func TestEngine_AnalyzeText_Lottery(t *testing.T) {
	e, obs := newTestEngine()

	text := "Congratulations! You have won a lucky draw prize of $50000. Send your bank details now!"
	result, err := e.AnalyzeText(models.ChannelText, text)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, models.ChannelText, result.Type)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 10, result.SmallScore)
	assert.Equal(t, models.RiskLevelCritical, result.RiskLevel)
	assert.Equal(t, ColorCritical, result.RiskColor)
	assert.Equal(t, models.VerdictPotentialFraud, result.Verdict)
	assert.Equal(t, models.VerdictPotentialFraud, result.Status)
	assert.Contains(t, result.Reasons, ReasonLottery)
	assert.Contains(t, result.Reasons, ReasonFinancialDetail)
	assert.Equal(t, text, result.Preview)
	assert.Empty(t, result.Transcript)

	require.Len(t, obs.seen, 1)
	assert.Equal(t, observation{models.ChannelText, models.VerdictPotentialFraud, 100}, obs.seen[0])
}

func TestEngine_AnalyzeText_Clean(t *testing.T) {
	e, _ := newTestEngine()

	result, err := e.AnalyzeText(models.ChannelOCR, "See you at 5pm for coffee")
	require.NoError(t, err)

	assert.Equal(t, models.ChannelOCR, result.Type)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.SmallScore)
	assert.Equal(t, models.RiskLevelClean, result.RiskLevel)
	assert.Equal(t, models.VerdictSafe, result.Verdict)
	assert.Empty(t, result.Reasons)
}

func TestEngine_AnalyzeText_VoiceEchoesTranscript(t *testing.T) {
	e, _ := newTestEngine()

	result, err := e.AnalyzeText(models.ChannelVoice, "please verify your otp")
	require.NoError(t, err)

	assert.Equal(t, models.ChannelVoice, result.Type)
	assert.Equal(t, "please verify your otp", result.Transcript)
	assert.Equal(t, 12, result.Score)
}

func TestEngine_AnalyzeText_PreviewTruncated(t *testing.T) {
	e, _ := newTestEngine()

	text := strings.Repeat("é", PreviewLength+20)
	result, err := e.AnalyzeText(models.ChannelText, text)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("é", PreviewLength), result.Preview)
}

func TestEngine_AnalyzeText_Errors(t *testing.T) {
	e, obs := newTestEngine()

	_, err := e.AnalyzeText(models.ChannelText, "  ")
	assert.ErrorIs(t, err, models.ErrEmptyInput)

	_, err = e.AnalyzeText(models.ChannelURL, "hello")
	assert.Error(t, err)

	assert.Empty(t, obs.seen)
}

func TestEngine_AnalyzeURL(t *testing.T) {
	e, obs := newTestEngine()

	result, err := e.AnalyzeURL("http://192.168.1.5/login")
	require.NoError(t, err)

	assert.Equal(t, models.ChannelURL, result.Type)
	assert.Equal(t, 65, result.Score)
	assert.Equal(t, 7, result.SmallScore)
	assert.Equal(t, models.RiskLevelModerate, result.RiskLevel)
	assert.Equal(t, models.VerdictUnsafe, result.Verdict)
	assert.Equal(t, "http://192.168.1.5/login", result.URL)
	assert.Equal(t, []string{ReasonNotHTTPS, ReasonLoginPath, ReasonRawIPHost}, result.Reasons)
	require.Len(t, obs.seen, 1)

	result, err = e.AnalyzeURL("not a url")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, []string{ReasonMalformedURL}, result.Reasons)

	_, err = e.AnalyzeURL("")
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestEngine_AnalyzeTable(t *testing.T) {
	e, obs := newTestEngine()

	var b strings.Builder
	b.WriteString("from,to,amount\n")
	for i := 0; i < 6; i++ {
		b.WriteString("A,B,60000\n")
	}

	result, err := e.AnalyzeTable(strings.NewReader(b.String()))
	require.NoError(t, err)

	assert.Equal(t, models.ChannelBehavior, result.Type)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, 6, result.Rows)
	assert.Equal(t, models.RiskLevelHigh, result.RiskLevel)
	assert.Equal(t, models.VerdictUnsafe, result.Verdict)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "A", result.Alerts[0].From)
	assert.Equal(t, AlertHighAverage, result.Alerts[0].Reason)
	assert.Nil(t, result.Reasons)

	require.Len(t, obs.seen, 1)
	assert.Equal(t, models.ChannelBehavior, obs.seen[0].channel)
}

func TestEngine_AnalyzeTable_ParseError(t *testing.T) {
	e, obs := newTestEngine()

	_, err := e.AnalyzeTable(strings.NewReader("from,to,amount\nA,B\n"))

	var parseErr *models.TableParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Empty(t, obs.seen)
}

func TestEngine_NilObserver(t *testing.T) {
	e := NewEngine(nil, logger.Nop())

	assert.NotPanics(t, func() {
		_ = e.AnalyzeBehavior(nil)
	})
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e, obs := newTestEngine()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.AnalyzeText(models.ChannelText, "click here to verify")
			_, _ = e.AnalyzeURL("https://login.example.xyz/signin")
		}()
	}
	wg.Wait()

	assert.Len(t, obs.seen, 40)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", truncateRunes("", 3))
	assert.Equal(t, "ab", truncateRunes("ab", 3))
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "abc", truncateRunes("abcd", 3))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
