package matcher

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/pkg/logger"
)

// Mode selects a configuration profile for the cascade.
type Mode string

const (
	ModeSpeed    Mode = "speed"
	ModeAccuracy Mode = "accuracy"
)

// Config holds the tunable thresholds every pass reads. Amounts are in
// dollars; dollarsToCents converts at the point of use.
type Config struct {
	AmountTolerance      float64
	AmountToleranceLoose float64
	DateWindowStrict     int
	DateWindowLoose      int
	DateWindowReference  int
	FuzzyTextThreshold   float64
	MaxCombinationDepth  int
}

// configFor returns the fixed profile for a mode, per spec.md's mode table.
func configFor(mode Mode) Config {
	switch mode {
	case ModeSpeed:
		return Config{
			AmountTolerance:      0.05,
			AmountToleranceLoose: 1.50,
			DateWindowStrict:     1,
			DateWindowLoose:      3,
			DateWindowReference:  10,
			FuzzyTextThreshold:   0.85,
			MaxCombinationDepth:  2,
		}
	default:
		return Config{
			AmountTolerance:      0.05,
			AmountToleranceLoose: 1.50,
			DateWindowStrict:     3,
			DateWindowLoose:      10,
			DateWindowReference:  45,
			FuzzyTextThreshold:   0.60,
			MaxCombinationDepth:  4,
		}
	}
}

// ProgressFunc receives monotonically non-decreasing percentages between
// passes. It MUST NOT mutate engine state; delivery may be asynchronous.
type ProgressFunc func(percent int)

// progressSteps is the fixed percentage sequence reported between passes.
var progressSteps = []int{5, 15, 30, 50, 65, 75, 85, 92, 100}

// ProgressSteps returns a copy of the fixed percentage sequence a
// reconciliation reports, for callers sizing a progress channel.
func ProgressSteps() []int {
	out := make([]int, len(progressSteps))
	copy(out, progressSteps)
	return out
}

func reportProgress(progress ProgressFunc, step int) {
	if progress == nil || step >= len(progressSteps) {
		return
	}
	progress(progressSteps[step])
}

// CancelFunc is polled by ReconcileDriver between passes. A true return
// cancels the reconciliation before any further pass runs.
type CancelFunc func() bool

// ReconcileDriver selects a configuration profile, runs the cascade, and
// assembles the final ReconciliationResult.
type ReconcileDriver struct {
	Mode     Mode
	Progress ProgressFunc
	Cancel   CancelFunc
}

// Reconcile validates the inputs, runs the ordered pass cascade, and
// returns the match groups plus the two residual unmatched sets.
func (d *ReconcileDriver) Reconcile(bank, ledger []domain.Transaction) (*domain.ReconciliationResult, error) {
	if err := validateInput(bank, ledger); err != nil {
		return nil, err
	}

	cfg := configFor(d.Mode)
	reportProgress(d.Progress, 0)

	bankSorted := sortedByDate(bank)
	ledgerSorted := sortedByDate(ledger)
	reportProgress(d.Progress, 1)

	if d.Cancel != nil && d.Cancel() {
		return nil, ErrCancelled
	}

	cascade := NewCascade(cfg, bankSorted, ledgerSorted, func() string { return uuid.New().String() })
	reportProgress(d.Progress, 2)

	if err := cascade.passReferenceID(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 3)

	if d.Cancel != nil && d.Cancel() {
		return nil, ErrCancelled
	}

	if err := cascade.passPerfectDate(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 4)

	if err := cascade.passStrictWindow(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 5)

	if d.Cancel != nil && d.Cancel() {
		return nil, ErrCancelled
	}

	if err := cascade.passLooseAmountStrongText(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 6)

	if err := cascade.passFuzzyDate(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 7)

	if d.Cancel != nil && d.Cancel() {
		return nil, ErrCancelled
	}

	if err := cascade.passOneToMany(); err != nil {
		return nil, err
	}
	if err := cascade.passManyToOne(); err != nil {
		return nil, err
	}
	reportProgress(d.Progress, 8)

	result := BuildResult(bank, ledger, cascade.Matches())

	logger.GetLogger().WithFields(map[string]interface{}{
		"total_bank":   result.Stats.TotalBank,
		"total_ledger": result.Stats.TotalLedger,
		"matched_bank": result.Stats.MatchedBankCount,
		"match_rate":   result.Stats.MatchRate,
	}).Info("Reconciliation completed")

	return result, nil
}

func validateInput(bank, ledger []domain.Transaction) error {
	seen := make(map[string]struct{}, len(bank))
	for _, t := range bank {
		if err := validateTransaction(t); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate bank id %q", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(ledger))
	for _, t := range ledger {
		if err := validateTransaction(t); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate ledger id %q", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	return nil
}

func validateTransaction(t domain.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty transaction id", ErrInvalidInput)
	}
	if t.AmountCents < 0 {
		return fmt.Errorf("%w: negative amount for transaction %q", ErrInvalidInput, t.ID)
	}
	if t.Type != domain.Debit && t.Type != domain.Credit {
		return fmt.Errorf("%w: invalid type %q for transaction %q", ErrInvalidInput, t.Type, t.ID)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: unparseable date for transaction %q", ErrInvalidInput, t.ID)
	}
	return nil
}

// sortedByDate returns a copy of txs sorted ascending by date, ties broken
// by original input order. This order is part of the contract: it decides
// which transaction binds first when several could match the same
// other-side candidate.
func sortedByDate(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BuildResult recomputes the two unmatched sets and summary Stats from a
// completed set of match groups. Exported so a persistence layer can
// reconstruct a ReconciliationResult from stored rows without re-running
// the cascade.
func BuildResult(bank, ledger []domain.Transaction, matches []domain.MatchGroup) *domain.ReconciliationResult {
	matchedBank := make(map[string]bool)
	matchedLedger := make(map[string]bool)
	for _, m := range matches {
		for _, b := range m.Bank {
			matchedBank[b.ID] = true
		}
		for _, l := range m.Ledger {
			matchedLedger[l.ID] = true
		}
	}

	unmatchedBank := make([]domain.Transaction, 0)
	for _, b := range bank {
		if !matchedBank[b.ID] {
			unmatchedBank = append(unmatchedBank, b)
		}
	}

	unmatchedLedger := make([]domain.Transaction, 0)
	for _, l := range ledger {
		if !matchedLedger[l.ID] {
			unmatchedLedger = append(unmatchedLedger, l)
		}
	}

	totalBank := len(bank)
	totalLedger := len(ledger)
	matchedBankCount := totalBank - len(unmatchedBank)
	matchedLedgerCount := totalLedger - len(unmatchedLedger)

	var matchRate float64
	if totalBank+totalLedger > 0 {
		matchRate = float64(matchedBankCount+matchedLedgerCount) / float64(totalBank+totalLedger) * 100
	}

	return &domain.ReconciliationResult{
		Matches:         matches,
		UnmatchedBank:   unmatchedBank,
		UnmatchedLedger: unmatchedLedger,
		Stats: domain.Stats{
			TotalBank:            totalBank,
			TotalLedger:          totalLedger,
			MatchedBankCount:     matchedBankCount,
			MatchedLedgerCount:   matchedLedgerCount,
			UnmatchedBankCount:   len(unmatchedBank),
			UnmatchedLedgerCount: len(unmatchedLedger),
			MatchRate:            matchRate,
		},
	}
}
