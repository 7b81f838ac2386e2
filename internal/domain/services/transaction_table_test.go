package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlens/internal/domain/models"
)

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestParseTransactionTable_Basic(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("from,to,amount\nA,B,100\n\nA,C,200.50\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A", records[0].From)
	assert.Equal(t, "B", records[0].To)
	requireAmount(t, "100", records[0].Amount)
	assert.Equal(t, "C", records[1].To)
	requireAmount(t, "200.5", records[1].Amount)
}

func TestParseTransactionTable_HeaderAliases(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("FromAccount,ToAccount,Amt\nacc-1,acc-2,75\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "acc-1", records[0].From)
	assert.Equal(t, "acc-2", records[0].To)
	requireAmount(t, "75", records[0].Amount)
}

func TestParseTransactionTable_BlankPreferredColumnFallsBack(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("fromAccount,from,to,value\n,X,Y,5\nW,X,Y,6\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "X", records[0].From)
	assert.Equal(t, "W", records[1].From)
}

func TestParseTransactionTable_BlankAmountColumnIsZero(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("from,to,amount,ref\nA,B,,12345\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.True(t, records[0].Amount.IsZero())
}

func TestParseTransactionTable_AmountFromNumericCell(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("sender,receiver,note,sum\nA,B,hello,250\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Empty(t, records[0].From)
	assert.Empty(t, records[0].To)
	requireAmount(t, "250", records[0].Amount)
}

func TestParseTransactionTable_BOM(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader("\ufefffrom,to,amount\nA,B,1\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "A", records[0].From)
}

func TestParseTransactionTable_Empty(t *testing.T) {
	records, err := ParseTransactionTable(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	records, err = ParseTransactionTable(strings.NewReader("from,to,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseTransactionTable_Malformed(t *testing.T) {
	tests := map[string]string{
		"field count mismatch": "from,to,amount\nA,B\n",
		"bare quote":           "from,to,amount\nA,B\"x,1\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTransactionTable(strings.NewReader(input))
			require.Error(t, err)

			var parseErr *models.TableParseError
			require.ErrorAs(t, err, &parseErr)
			assert.NotEmpty(t, parseErr.Detail())
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1500":      "1500",
		"$1,200.50": "1200.5",
		"₹ 5000":    "5000",
		"-50":       "-50",
		"abc":       "0",
		"":          "0",
		"1.2.3":     "0",
	}

	for in, want := range tests {
		requireAmount(t, want, parseAmount(in))
	}
}
