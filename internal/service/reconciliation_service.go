package service

import (
	"fmt"

	"github.com/google/uuid"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/internal/matcher"
	"ledger-recon-engine/internal/repository"
	"ledger-recon-engine/pkg/logger"
)

type ReconciliationService interface {
	Reconcile(bankFilePaths, ledgerFilePaths []string, mode matcher.Mode, progress matcher.ProgressFunc) (*domain.ReconciliationResult, error)
	GetJobStatus(jobID string) (*domain.ReconciliationJob, error)
	GetJobSummary(jobID string) (*domain.ReconciliationResult, error)
}

type reconciliationService struct {
	txRepo    repository.TransactionRepository
	reconRepo repository.ReconciliationRepository
	ingest    IngestService
	batchSize int
}

func NewReconciliationService(
	txRepo repository.TransactionRepository,
	reconRepo repository.ReconciliationRepository,
	ingest IngestService,
	batchSize int,
) ReconciliationService {
	return &reconciliationService{
		txRepo:    txRepo,
		reconRepo: reconRepo,
		ingest:    ingest,
		batchSize: batchSize,
	}
}

func (s *reconciliationService) Reconcile(
	bankFilePaths, ledgerFilePaths []string,
	mode matcher.Mode,
	progress matcher.ProgressFunc,
) (*domain.ReconciliationResult, error) {
	jobID := uuid.New().String()
	job := &domain.ReconciliationJob{
		JobID:  jobID,
		Mode:   string(mode),
		Status: domain.Processing,
	}

	if err := s.reconRepo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	logger.GetLogger().WithField("job_id", jobID).Info("Starting reconciliation job")

	bank, err := s.ingest.ParseFiles(domain.SideBank, bankFilePaths, s.batchSize)
	if err != nil {
		s.fail(job, err)
		return nil, fmt.Errorf("failed to load bank transactions: %w", err)
	}

	ledger, err := s.ingest.ParseFiles(domain.SideLedger, ledgerFilePaths, s.batchSize)
	if err != nil {
		s.fail(job, err)
		return nil, fmt.Errorf("failed to load ledger transactions: %w", err)
	}

	driver := &matcher.ReconcileDriver{Mode: mode, Progress: progress}
	result, err := driver.Reconcile(bank, ledger)
	if err != nil {
		s.fail(job, err)
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	if err := s.txRepo.BulkCreate(jobID, bank); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to persist bank transactions")
	}
	if err := s.txRepo.BulkCreate(jobID, ledger); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to persist ledger transactions")
	}
	if err := s.reconRepo.BulkCreateMatches(jobID, result.Matches); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to persist match groups")
	}

	job.Status = domain.Completed
	job.TotalBank = result.Stats.TotalBank
	job.TotalLedger = result.Stats.TotalLedger
	job.MatchedCount = len(result.Matches)
	job.MatchRate = result.Stats.MatchRate

	if err := s.reconRepo.UpdateJob(job); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update job")
	}

	logger.GetLogger().WithField("job_id", jobID).Info("Reconciliation job completed")

	return result, nil
}

func (s *reconciliationService) GetJobStatus(jobID string) (*domain.ReconciliationJob, error) {
	return s.reconRepo.GetJobByID(jobID)
}

func (s *reconciliationService) GetJobSummary(jobID string) (*domain.ReconciliationResult, error) {
	matches, err := s.reconRepo.GetMatchesByJobID(jobID)
	if err != nil {
		return nil, err
	}

	bank, err := s.txRepo.GetByJobIDAndSide(jobID, domain.SideBank)
	if err != nil {
		return nil, err
	}

	ledger, err := s.txRepo.GetByJobIDAndSide(jobID, domain.SideLedger)
	if err != nil {
		return nil, err
	}

	return matcher.BuildResult(bank, ledger, matches), nil
}

func (s *reconciliationService) fail(job *domain.ReconciliationJob, err error) {
	msg := err.Error()
	job.Status = domain.Failed
	job.ErrorMessage = &msg
	if updateErr := s.reconRepo.UpdateJob(job); updateErr != nil {
		logger.GetLogger().WithError(updateErr).Error("Failed to mark job as failed")
	}
}
