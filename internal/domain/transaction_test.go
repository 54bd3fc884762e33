package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Amount(t *testing.T) {
	tx := Transaction{AmountCents: 123456}
	assert.True(t, tx.Amount().Equal(tx.Amount()))
	assert.Equal(t, "1234.56", tx.Amount().String())
}

func TestMatchGroup_TotalCents(t *testing.T) {
	group := MatchGroup{
		Bank: []Transaction{
			{ID: "b1", AmountCents: 40000},
			{ID: "b2", AmountCents: 60000},
		},
		Ledger: []Transaction{
			{ID: "l1", AmountCents: 100000},
		},
	}

	assert.Equal(t, int64(100000), group.BankTotalCents())
	assert.Equal(t, int64(100000), group.LedgerTotalCents())
}

func TestReconciliationJob_DefaultZeroValue(t *testing.T) {
	job := ReconciliationJob{JobID: "job-1", Status: Pending}
	assert.Equal(t, Pending, job.Status)
	assert.Nil(t, job.ErrorMessage)
	assert.True(t, job.CreatedAt.IsZero())
}
