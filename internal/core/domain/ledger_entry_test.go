package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/corebank/posting-engine/internal/core/domain"
)

func TestReplayBalanceReproducesRunningBalance(t *testing.T) {
	entries := []domain.LedgerEntry{
		{Amount: decimal.NewFromInt(500), Direction: domain.Credit},
		{Amount: decimal.NewFromInt(120), Direction: domain.Debit},
		{Amount: decimal.RequireFromString("0.75"), Direction: domain.Credit},
	}

	balance := domain.ReplayBalance(decimal.NewFromInt(100), entries)

	assert.True(t, balance.Equal(decimal.RequireFromString("480.75")), "got %s", balance)
}

func TestReplayBalanceEmpty(t *testing.T) {
	opening := decimal.NewFromInt(7)
	assert.True(t, domain.ReplayBalance(opening, nil).Equal(opening))
}

func TestSignedAmount(t *testing.T) {
	debit := domain.StagedEntry{Amount: decimal.NewFromInt(50), Direction: domain.Debit}
	credit := domain.StagedEntry{Amount: decimal.NewFromInt(50), Direction: domain.Credit}

	assert.True(t, debit.SignedAmount().Equal(decimal.NewFromInt(-50)))
	assert.True(t, credit.SignedAmount().Equal(decimal.NewFromInt(50)))
}

func TestSumByDirection(t *testing.T) {
	entries := []domain.StagedEntry{
		{Amount: decimal.NewFromInt(300), Direction: domain.Debit},
		{Amount: decimal.NewFromInt(100), Direction: domain.Credit},
		{Amount: decimal.NewFromInt(200), Direction: domain.Credit},
	}

	debits, credits := domain.SumByDirection(entries)

	assert.True(t, debits.Equal(decimal.NewFromInt(300)))
	assert.True(t, credits.Equal(decimal.NewFromInt(300)))
}

// The balance deltas applied on approval must net to zero for a balanced
// batch, so total money in the system is conserved.
func TestBalancedBatchConservesMoney(t *testing.T) {
	entries := []domain.StagedEntry{
		{AccountID: "a", Amount: decimal.NewFromInt(300), Direction: domain.Debit},
		{AccountID: "b", Amount: decimal.NewFromInt(100), Direction: domain.Credit},
		{AccountID: "c", Amount: decimal.NewFromInt(200), Direction: domain.Credit},
	}

	net := decimal.Zero
	for _, e := range entries {
		net = net.Add(e.SignedAmount())
	}
	assert.True(t, net.IsZero())
}
