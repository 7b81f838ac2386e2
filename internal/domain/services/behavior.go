package services

import (
	"github.com/shopspring/decimal"

	"fraudlens/internal/domain/models"
)

// Alert reasons emitted by the behavior aggregator
const (
	AlertHighAverage     = "High average transfer amount across many transactions"
	AlertManyReceivers   = "Many unique receivers + very large transfer"
	AlertOutlierTransfer = "Large outlier transfer"
)

// Candidate scores per behavior rule. The final score is the highest
// candidate triggered, never a sum.
const (
	scoreHighAverage     = 75
	scoreManyReceivers   = 80
	scoreOutlierTransfer = 70
	scoreMidRangeMax     = 35
	scoreHighVolume      = 30

	minTxForAverage    = 5
	minUniqueReceivers = 4
	outlierFactor      = 10
	highVolumeRowCount = 200
)

var (
	highAverageAmount = decimal.NewFromInt(50000)
	veryLargeTransfer = decimal.NewFromInt(100000)
	outlierMinimum    = decimal.NewFromInt(50000)
	midRangeFloor     = decimal.NewFromInt(2000)
	midRangeCeiling   = decimal.NewFromInt(50000)
)

// AccountProfile aggregates the transactions sent from one account
type AccountProfile struct {
	From      string
	Amounts   []decimal.Decimal
	Receivers map[string]struct{}
	TxCount   int
}

func newAccountProfile(from string) *AccountProfile {
	return &AccountProfile{From: from, Receivers: make(map[string]struct{})}
}

func (p *AccountProfile) add(rec models.TransactionRecord) {
	p.Amounts = append(p.Amounts, rec.Amount)
	p.Receivers[rec.To] = struct{}{}
	p.TxCount++
}

// Avg returns the arithmetic mean of the amounts, or zero when there are none
func (p *AccountProfile) Avg() decimal.Decimal {
	if len(p.Amounts) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, p.Amounts...).Div(decimal.NewFromInt(int64(len(p.Amounts))))
}

// Max returns the largest amount, never less than zero
func (p *AccountProfile) Max() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Amounts...)
}

// UniqueReceivers is the number of distinct destination accounts
func (p *AccountProfile) UniqueReceivers() int {
	return len(p.Receivers)
}

// BehaviorAssessment is the outcome of scoring one transaction table
type BehaviorAssessment struct {
	Score  int
	Rows   int
	Alerts []models.Alert
}

// BehaviorAggregator groups transactions per source account and flags
// suspicious sending patterns.
type BehaviorAggregator struct{}

// NewBehaviorAggregator creates a behavior aggregator
func NewBehaviorAggregator() *BehaviorAggregator {
	return &BehaviorAggregator{}
}

// Profiles groups records by source account, preserving first-seen order
func (b *BehaviorAggregator) Profiles(records []models.TransactionRecord) []*AccountProfile {
	byFrom := make(map[string]*AccountProfile)
	var ordered []*AccountProfile

	for _, rec := range records {
		rec = normalizeRecord(rec)
		profile, ok := byFrom[rec.From]
		if !ok {
			profile = newAccountProfile(rec.From)
			byFrom[rec.From] = profile
			ordered = append(ordered, profile)
		}
		profile.add(rec)
	}

	return ordered
}

// Aggregate scores a batch of transaction records
func (b *BehaviorAggregator) Aggregate(records []models.TransactionRecord) BehaviorAssessment {
	score := 0
	alerts := make([]models.Alert, 0)

	for _, p := range b.Profiles(records) {
		avg := p.Avg()
		maxAmount := p.Max()
		roundedAvg := avg.Round(0).InexactFloat64()
		maxValue := maxAmount.InexactFloat64()

		if p.TxCount >= minTxForAverage && avg.GreaterThan(highAverageAmount) {
			alerts = append(alerts, models.Alert{
				From:    p.From,
				Reason:  AlertHighAverage,
				Avg:     &roundedAvg,
				TxCount: intPtr(p.TxCount),
			})
			score = max(score, scoreHighAverage)
		}

		if p.UniqueReceivers() >= minUniqueReceivers && maxAmount.GreaterThan(veryLargeTransfer) {
			alerts = append(alerts, models.Alert{
				From:      p.From,
				Reason:    AlertManyReceivers,
				Receivers: intPtr(p.UniqueReceivers()),
				Max:       &maxValue,
			})
			score = max(score, scoreManyReceivers)
		}

		if maxAmount.GreaterThan(avg.Mul(decimal.NewFromInt(outlierFactor))) && maxAmount.GreaterThan(outlierMinimum) {
			alerts = append(alerts, models.Alert{
				From:   p.From,
				Reason: AlertOutlierTransfer,
				Max:    &maxValue,
				Avg:    &roundedAvg,
			})
			score = max(score, scoreOutlierTransfer)
		}

		if maxAmount.GreaterThan(midRangeFloor) && maxAmount.LessThanOrEqual(midRangeCeiling) {
			score = max(score, scoreMidRangeMax)
		}
	}

	if len(records) > highVolumeRowCount {
		score = max(score, scoreHighVolume)
	}

	return BehaviorAssessment{
		Score:  ClampScore(score),
		Rows:   len(records),
		Alerts: alerts,
	}
}

func normalizeRecord(rec models.TransactionRecord) models.TransactionRecord {
	if rec.From == "" {
		rec.From = models.UnknownAccount
	}
	if rec.To == "" {
		rec.To = models.UnknownAccount
	}
	if rec.Amount.IsNegative() {
		rec.Amount = decimal.Zero
	}
	return rec
}

func intPtr(v int) *int {
	return &v
}
