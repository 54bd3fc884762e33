package matcher

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-recon-engine/internal/domain"
)

func mkTx(id string, date string, desc string, dollars float64, typ domain.TransactionType, side domain.Side) domain.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.Transaction{
		ID:          id,
		Side:        side,
		Date:        d,
		Description: desc,
		AmountCents: int64(math.Round(dollars * 100)),
		Type:        typ,
	}
}

func bankTx(id, date, desc string, dollars float64, typ domain.TransactionType) domain.Transaction {
	return mkTx(id, date, desc, dollars, typ, domain.SideBank)
}

func ledgerTx(id, date, desc string, dollars float64, typ domain.TransactionType) domain.Transaction {
	return mkTx(id, date, desc, dollars, typ, domain.SideLedger)
}

// S1 — Reference-ID match over wide date gap.
func TestReconcile_ReferenceIDMatchOverWideDateGap(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-01-05", "TRF INV-99821 ACME", 1250.00, domain.Debit)}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-02-15", "Invoice 99821 payment", 1250.00, domain.Debit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, domain.KindExact, m.Kind)
	assert.Equal(t, 0.99, m.Confidence)
	assert.Contains(t, m.Reason, "Reference ID")
	assert.Empty(t, result.UnmatchedBank)
	assert.Empty(t, result.UnmatchedLedger)
}

// S2 — Perfect match vs near miss, tie on amount.
func TestReconcile_PerfectMatchBeatsNearMissOnSameAmount(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-03-10", "ACME CORP SERVICES", 500.00, domain.Debit)}
	ledger := []domain.Transaction{
		ledgerTx("l1", "2024-03-10", "Acme Corp Services Ltd", 500.00, domain.Debit),
		ledgerTx("l2", "2024-03-10", "Unrelated", 500.00, domain.Debit),
	}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, domain.KindExact, m.Kind)
	assert.Equal(t, 0.95, m.Confidence)
	assert.Equal(t, "Perfect Match", m.Reason)
	require.Len(t, m.Ledger, 1)
	assert.Equal(t, "l1", m.Ledger[0].ID)
	require.Len(t, result.UnmatchedLedger, 1)
	assert.Equal(t, "l2", result.UnmatchedLedger[0].ID)
}

// S3 — Fuzzy with date offset.
func TestReconcile_FuzzyWithDateOffset(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-04-01", "Salary June K Mensah", 3000.00, domain.Credit)}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-04-08", "K. Mensah salary payment", 3000.00, domain.Credit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, domain.KindFuzzy, m.Kind)
	assert.Contains(t, m.Reason, "% text sim")
	assert.Contains(t, m.Reason, "7d offset")
}

// S4 — Split (one-to-many).
func TestReconcile_OneToManySplit(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-05-02", "Bulk payment", 1000.00, domain.Debit)}
	ledger := []domain.Transaction{
		ledgerTx("l1", "2024-05-01", "Part A", 400.00, domain.Debit),
		ledgerTx("l2", "2024-05-03", "Part B", 600.00, domain.Debit),
		ledgerTx("l3", "2024-05-02", "Noise", 250.00, domain.Debit),
	}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, domain.KindOneToMany, m.Kind)
	assert.Equal(t, 0.85, m.Confidence)
	assert.Len(t, m.Bank, 1)
	assert.Len(t, m.Ledger, 2)
	require.Len(t, result.UnmatchedLedger, 1)
	assert.Equal(t, "l3", result.UnmatchedLedger[0].ID)
}

// S5 — Loose-amount fee variant.
func TestReconcile_LooseAmountFeeVariant(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-06-10", "Wire ACME Holdings", 998.75, domain.Debit)}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-06-10", "Wire ACME Holdings", 1000.00, domain.Debit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, domain.KindFuzzy, m.Kind)
	assert.Equal(t, 0.88, m.Confidence)
	assert.Contains(t, m.Reason, "Approx Amount (Diff: 1.25)")
}

// S6 — Mode affects outcome: accuracy's wider dateWindowLoose (10d) and
// lower fuzzyTextThreshold (0.60) matches a pair that speed mode (3d
// window, 0.85 threshold) must leave unmatched.
func TestReconcile_ModeAffectsOutcome(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-04-01", "Salary June K Mensah", 3000.00, domain.Credit)}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-04-09", "K. Mensah salary payment", 3000.00, domain.Credit)}

	accuracyDriver := &ReconcileDriver{Mode: ModeAccuracy}
	accuracyResult, err := accuracyDriver.Reconcile(bank, ledger)
	require.NoError(t, err)

	speedDriver := &ReconcileDriver{Mode: ModeSpeed}
	speedResult, err := speedDriver.Reconcile(bank, ledger)
	require.NoError(t, err)

	require.Len(t, accuracyResult.Matches, 1, "accuracy mode must match this 8-day-offset pair")
	assert.Empty(t, speedResult.Matches, "speed mode must not match what only the looser accuracy profile allows")
}

func TestReconcile_RejectsDuplicateIDsOnSameSide(t *testing.T) {
	bank := []domain.Transaction{
		bankTx("b1", "2024-01-01", "a", 10, domain.Debit),
		bankTx("b1", "2024-01-02", "b", 20, domain.Debit),
	}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-01-01", "a", 10, domain.Debit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	_, err := driver.Reconcile(bank, ledger)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReconcile_CancelBetweenPassesStopsEarly(t *testing.T) {
	bank := []domain.Transaction{bankTx("b1", "2024-01-01", "a", 10, domain.Debit)}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-01-01", "a", 10, domain.Debit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy, Cancel: func() bool { return true }}
	_, err := driver.Reconcile(bank, ledger)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestReconcile_StatsConsistency(t *testing.T) {
	bank := []domain.Transaction{
		bankTx("b1", "2024-01-01", "a", 10, domain.Debit),
		bankTx("b2", "2024-01-02", "b", 999, domain.Debit),
	}
	ledger := []domain.Transaction{ledgerTx("l1", "2024-01-01", "a", 10, domain.Debit)}

	driver := &ReconcileDriver{Mode: ModeAccuracy}
	result, err := driver.Reconcile(bank, ledger)
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, stats.TotalBank, stats.MatchedBankCount+stats.UnmatchedBankCount)
	assert.Equal(t, stats.TotalLedger, stats.MatchedLedgerCount+stats.UnmatchedLedgerCount)

	expectedRate := float64(stats.MatchedBankCount+stats.MatchedLedgerCount) / float64(stats.TotalBank+stats.TotalLedger) * 100
	assert.InDelta(t, expectedRate, stats.MatchRate, 0.0001)
}
