package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/pkg/logger"
)

// TransactionRepository persists the raw bank/ledger transactions that fed
// a reconciliation job, so a later summary request can reconstruct full
// MatchGroup detail without re-parsing the source CSVs.
type TransactionRepository interface {
	BulkCreate(jobID string, txs []domain.Transaction) error
	GetByJobIDAndSide(jobID string, side domain.Side) ([]domain.Transaction, error)
	GetByJobIDAndIDs(jobID string, ids []string) ([]domain.Transaction, error)
}

type transactionRow struct {
	TrxID       string    `db:"trx_id"`
	Side        string    `db:"side"`
	Date        time.Time `db:"transaction_date"`
	Description string    `db:"description"`
	AmountCents int64     `db:"amount_cents"`
	Type        string    `db:"type"`
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) BulkCreate(jobID string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`
		INSERT INTO transactions (job_id, trx_id, side, transaction_date, description, amount_cents, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_id, side, trx_id) DO NOTHING
	`)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to prepare statement")
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.Exec(jobID, t.ID, string(t.Side), t.Date, t.Description, t.AmountCents, string(t.Type)); err != nil {
			logger.GetLogger().WithError(err).WithField("trx_id", t.ID).Error("Failed to insert transaction")
			continue // Continue with next transaction instead of breaking
		}
	}

	if err := tx.Commit(); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to commit transaction")
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByJobIDAndSide(jobID string, side domain.Side) ([]domain.Transaction, error) {
	var rows []transactionRow
	err := r.db.Select(&rows, `
		SELECT trx_id, side, transaction_date, description, amount_cents, type
		FROM transactions
		WHERE job_id = $1 AND side = $2
		ORDER BY transaction_date
	`, jobID, string(side))
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query transactions")
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	return toTransactions(rows), nil
}

func (r *transactionRepository) GetByJobIDAndIDs(jobID string, ids []string) ([]domain.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []transactionRow
	err := r.db.Select(&rows, `
		SELECT trx_id, side, transaction_date, description, amount_cents, type
		FROM transactions
		WHERE job_id = $1 AND trx_id = ANY($2)
	`, jobID, pq.Array(ids))
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query transactions by id")
		return nil, fmt.Errorf("select transactions by id: %w", err)
	}

	return toTransactions(rows), nil
}

func toTransactions(rows []transactionRow) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Transaction{
			ID:          row.TrxID,
			Side:        domain.Side(row.Side),
			Date:        row.Date,
			Description: row.Description,
			AmountCents: row.AmountCents,
			Type:        domain.TransactionType(row.Type),
		})
	}
	return out
}
