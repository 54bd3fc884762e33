package service

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/internal/parser"
	"ledger-recon-engine/pkg/logger"
)

// IngestService turns a set of CSV files for one side of a reconciliation
// into a flat slice of domain.Transaction, parsing files concurrently.
type IngestService interface {
	ParseFiles(side domain.Side, filePaths []string, batchSize int) ([]domain.Transaction, error)
}

type ingestService struct{}

func NewIngestService() IngestService {
	return &ingestService{}
}

// ParseFiles parses every file for a given side in parallel and returns the
// combined transactions. A failure on any one file fails the whole ingest;
// partial results from other in-flight files are discarded.
func (s *ingestService) ParseFiles(side domain.Side, filePaths []string, batchSize int) ([]domain.Transaction, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no files provided for side %s", side)
	}

	results := make([][]domain.Transaction, len(filePaths))

	var g errgroup.Group
	for i, path := range filePaths {
		i, path := i, path
		g.Go(func() error {
			p := parser.NewTransactionParser(side)
			var batchTotal []domain.Transaction
			err := p.Parse(path, batchSize, func(batch []domain.Transaction) error {
				batchTotal = append(batchTotal, batch...)
				return nil
			})
			if err != nil {
				logger.GetLogger().WithError(err).WithField("file", path).Error("Failed to parse file")
				return fmt.Errorf("parse %s: %w", path, err)
			}
			results[i] = batchTotal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []domain.Transaction
	for _, r := range results {
		combined = append(combined, r...)
	}

	return combined, nil
}
