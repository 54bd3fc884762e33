package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/pkg/logger"
)

// ReconciliationRepository persists job metadata and the match groups a
// completed run produced. Full transaction detail for each group is
// reassembled on read by joining against the transactions table through
// TransactionRepository.
type ReconciliationRepository interface {
	CreateJob(job *domain.ReconciliationJob) error
	UpdateJob(job *domain.ReconciliationJob) error
	GetJobByID(jobID string) (*domain.ReconciliationJob, error)
	BulkCreateMatches(jobID string, matches []domain.MatchGroup) error
	GetMatchesByJobID(jobID string) ([]domain.MatchGroup, error)
}

type jobRow struct {
	ID           int64     `db:"id"`
	JobID        string    `db:"job_id"`
	Mode         string    `db:"mode"`
	Status       string    `db:"status"`
	TotalBank    int       `db:"total_bank"`
	TotalLedger  int       `db:"total_ledger"`
	MatchedCount int       `db:"matched_count"`
	MatchRate    float64   `db:"match_rate"`
	ErrorMessage *string   `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type matchGroupRow struct {
	MatchID    string         `db:"match_id"`
	JobID      string         `db:"job_id"`
	Kind       string         `db:"kind"`
	Reason     string         `db:"reason"`
	Confidence float64        `db:"confidence"`
	BankIDs    pq.StringArray `db:"bank_ids"`
	LedgerIDs  pq.StringArray `db:"ledger_ids"`
	CreatedAt  time.Time      `db:"created_at"`
}

type reconciliationRepository struct {
	db     *sqlx.DB
	txRepo TransactionRepository
}

func NewReconciliationRepository(db *sqlx.DB, txRepo TransactionRepository) ReconciliationRepository {
	return &reconciliationRepository{db: db, txRepo: txRepo}
}

func (r *reconciliationRepository) CreateJob(job *domain.ReconciliationJob) error {
	query := `
		INSERT INTO reconciliation_jobs (job_id, mode, status, total_bank, total_ledger, matched_count, match_rate, error_message)
		VALUES (:job_id, :mode, :status, :total_bank, :total_ledger, :matched_count, :match_rate, :error_message)
		RETURNING id, created_at, updated_at
	`

	row := jobRow{
		JobID:        job.JobID,
		Mode:         job.Mode,
		Status:       string(job.Status),
		TotalBank:    job.TotalBank,
		TotalLedger:  job.TotalLedger,
		MatchedCount: job.MatchedCount,
		MatchRate:    job.MatchRate,
		ErrorMessage: job.ErrorMessage,
	}

	stmt, err := r.db.PrepareNamed(query)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to prepare job insert")
		return fmt.Errorf("prepare create job: %w", err)
	}
	defer stmt.Close()

	var out struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := stmt.Get(&out, row); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create job")
		return fmt.Errorf("create job: %w", err)
	}

	job.CreatedAt = out.CreatedAt
	job.UpdatedAt = out.UpdatedAt
	return nil
}

func (r *reconciliationRepository) UpdateJob(job *domain.ReconciliationJob) error {
	query := `
		UPDATE reconciliation_jobs
		SET status = :status, total_bank = :total_bank, total_ledger = :total_ledger,
		    matched_count = :matched_count, match_rate = :match_rate,
		    error_message = :error_message, updated_at = now()
		WHERE job_id = :job_id
	`

	row := jobRow{
		JobID:        job.JobID,
		Status:       string(job.Status),
		TotalBank:    job.TotalBank,
		TotalLedger:  job.TotalLedger,
		MatchedCount: job.MatchedCount,
		MatchRate:    job.MatchRate,
		ErrorMessage: job.ErrorMessage,
	}

	result, err := r.db.NamedExec(query, row)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update job")
		return fmt.Errorf("update job: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("job %q not found", job.JobID)
	}

	return nil
}

func (r *reconciliationRepository) GetJobByID(jobID string) (*domain.ReconciliationJob, error) {
	var row jobRow
	err := r.db.Get(&row, `
		SELECT id, job_id, mode, status, total_bank, total_ledger, matched_count, match_rate, error_message, created_at, updated_at
		FROM reconciliation_jobs
		WHERE job_id = $1
	`, jobID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %q not found", jobID)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get job")
		return nil, fmt.Errorf("get job: %w", err)
	}

	return &domain.ReconciliationJob{
		JobID:        row.JobID,
		Mode:         row.Mode,
		Status:       domain.JobStatus(row.Status),
		TotalBank:    row.TotalBank,
		TotalLedger:  row.TotalLedger,
		MatchedCount: row.MatchedCount,
		MatchRate:    row.MatchRate,
		ErrorMessage: row.ErrorMessage,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (r *reconciliationRepository) BulkCreateMatches(jobID string, matches []domain.MatchGroup) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`
		INSERT INTO match_groups (job_id, match_id, kind, reason, confidence, bank_ids, ledger_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to prepare match insert")
		return fmt.Errorf("prepare create match: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.Exec(jobID, m.ID, string(m.Kind), m.Reason, m.Confidence, pq.Array(idsOf(m.Bank)), pq.Array(idsOf(m.Ledger))); err != nil {
			logger.GetLogger().WithError(err).WithField("match_id", m.ID).Error("Failed to insert match group")
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to commit transaction")
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (r *reconciliationRepository) GetMatchesByJobID(jobID string) ([]domain.MatchGroup, error) {
	var rows []matchGroupRow
	err := r.db.Select(&rows, `
		SELECT match_id, job_id, kind, reason, confidence, bank_ids, ledger_ids, created_at
		FROM match_groups
		WHERE job_id = $1
		ORDER BY created_at
	`, jobID)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query match groups")
		return nil, fmt.Errorf("select match groups: %w", err)
	}

	groups := make([]domain.MatchGroup, 0, len(rows))
	for _, row := range rows {
		bank, err := r.txRepo.GetByJobIDAndIDs(jobID, row.BankIDs)
		if err != nil {
			return nil, err
		}
		ledger, err := r.txRepo.GetByJobIDAndIDs(jobID, row.LedgerIDs)
		if err != nil {
			return nil, err
		}

		groups = append(groups, domain.MatchGroup{
			ID:         row.MatchID,
			Bank:       bank,
			Ledger:     ledger,
			Kind:       domain.MatchKind(row.Kind),
			Reason:     row.Reason,
			Confidence: row.Confidence,
		})
	}

	return groups, nil
}

func idsOf(txs []domain.Transaction) []string {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	return ids
}
