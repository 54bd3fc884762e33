package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the polarity of a transaction. Two transactions may be
// placed in the same MatchGroup only when their types are equal.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Side identifies which independent record a Transaction came from.
type Side string

const (
	SideBank   Side = "BANK"
	SideLedger Side = "LEDGER"
)

// Transaction is an immutable record from one side of a reconciliation.
// Amount is carried as integer cents internally so amount-bucket lookups
// never drift on floating point error; decimal.Decimal is used only at the
// CSV and JSON boundary. The database stores the integer cents.
type Transaction struct {
	ID          string          `json:"id" db:"trx_id"`
	Side        Side            `json:"side" db:"side"`
	Date        time.Time       `json:"date" db:"transaction_date"`
	Description string          `json:"description" db:"description"`
	AmountCents int64           `json:"-" db:"amount_cents"`
	Type        TransactionType `json:"type" db:"type"`
}

// Amount renders AmountCents back to a decimal for display/serialization.
func (t Transaction) Amount() decimal.Decimal {
	return decimal.New(t.AmountCents, -2)
}

// MarshalJSON serializes the transaction with its Amount as a decimal
// "amount" field in place of the internal AmountCents.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Amount decimal.Decimal `json:"amount"`
	}{plain(t), t.Amount()})
}

// MatchKind enumerates the ways a MatchGroup can have been produced.
type MatchKind string

const (
	KindExact     MatchKind = "exact"
	KindFuzzy     MatchKind = "fuzzy"
	KindOneToMany MatchKind = "one-to-many"
	KindManyToOne MatchKind = "many-to-one"
)

// MatchGroup is an atomic match decision linking bank transactions to
// ledger transactions. Created once by MatchCascade and never modified or
// removed thereafter.
type MatchGroup struct {
	ID         string      `json:"id" db:"match_id"`
	Bank       []Transaction `json:"bank"`
	Ledger     []Transaction `json:"ledger"`
	Kind       MatchKind   `json:"kind" db:"kind"`
	Reason     string      `json:"reason" db:"reason"`
	Confidence float64     `json:"confidence" db:"confidence"`
}

// BankTotalCents sums the bank-side amounts of a MatchGroup in cents.
func (g MatchGroup) BankTotalCents() int64 {
	var total int64
	for _, t := range g.Bank {
		total += t.AmountCents
	}
	return total
}

// LedgerTotalCents sums the ledger-side amounts of a MatchGroup in cents.
func (g MatchGroup) LedgerTotalCents() int64 {
	var total int64
	for _, t := range g.Ledger {
		total += t.AmountCents
	}
	return total
}

// Stats carries the summary counters for a ReconciliationResult.
type Stats struct {
	TotalBank            int     `json:"totalBank"`
	TotalLedger          int     `json:"totalLedger"`
	MatchedBankCount     int     `json:"matchedBankCount"`
	MatchedLedgerCount   int     `json:"matchedLedgerCount"`
	UnmatchedBankCount   int     `json:"unmatchedBankCount"`
	UnmatchedLedgerCount int     `json:"unmatchedLedgerCount"`
	MatchRate            float64 `json:"matchRate"`
}

// ReconciliationResult is the output of one reconciliation invocation.
type ReconciliationResult struct {
	Matches         []MatchGroup  `json:"matches"`
	UnmatchedBank   []Transaction `json:"unmatchedBank"`
	UnmatchedLedger []Transaction `json:"unmatchedLedger"`
	Stats           Stats         `json:"stats"`
}

// JobStatus is the lifecycle status of a reconciliation job (persistence
// concern, outside the matching core).
type JobStatus string

const (
	Pending    JobStatus = "PENDING"
	Processing JobStatus = "PROCESSING"
	Completed  JobStatus = "COMPLETED"
	Failed     JobStatus = "FAILED"
	Cancelled  JobStatus = "CANCELLED"
)

// ReconciliationJob tracks one reconciliation run across its lifecycle.
type ReconciliationJob struct {
	ID           int        `json:"id" db:"id"`
	JobID        string     `json:"job_id" db:"job_id"`
	Mode         string     `json:"mode" db:"mode"`
	Status       JobStatus  `json:"status" db:"status"`
	TotalBank    int        `json:"total_bank" db:"total_bank"`
	TotalLedger  int        `json:"total_ledger" db:"total_ledger"`
	MatchedCount int        `json:"matched_count" db:"matched_count"`
	MatchRate    float64    `json:"match_rate" db:"match_rate"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
