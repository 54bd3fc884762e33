package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/pkg/logger"
)

// TransactionParser is a streaming CSV parser for one side of a
// reconciliation. Both the bank and the ledger side share the same
// columns (id, date, description, amount, type); Side tags which
// domain.Side the rows produced belong to.
type TransactionParser struct {
	side domain.Side
}

func NewTransactionParser(side domain.Side) *TransactionParser {
	return &TransactionParser{side: side}
}

// Parse reads a CSV file in streaming mode, delivering decoded
// transactions in batches so large files don't need to fit in memory.
func (p *TransactionParser) Parse(filePath string, batchSize int, callback func([]domain.Transaction) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("file", filePath).Error("Failed to open file")
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to read CSV header")
		return fmt.Errorf("failed to read header: %w", err)
	}

	columnMap := mapColumns(header)
	if !validateColumns(columnMap) {
		return fmt.Errorf("invalid CSV format: missing required columns (id, date, description, amount, type)")
	}

	batch := make([]domain.Transaction, 0, batchSize)
	lineNumber := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("Failed to read CSV row, skipping")
			lineNumber++
			continue
		}

		lineNumber++

		tx, err := p.parseRecord(record, columnMap, lineNumber)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("Failed to parse record, skipping")
			continue
		}

		batch = append(batch, *tx)

		if len(batch) >= batchSize {
			if err := callback(batch); err != nil {
				return err
			}
			batch = make([]domain.Transaction, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return err
		}
	}

	return nil
}

func (p *TransactionParser) parseRecord(record []string, columnMap map[string]int, lineNumber int) (*domain.Transaction, error) {
	if len(record) < len(columnMap) {
		return nil, fmt.Errorf("incomplete record at line %d", lineNumber)
	}

	id := strings.TrimSpace(record[columnMap["id"]])
	if id == "" {
		return nil, fmt.Errorf("empty id at line %d", lineNumber)
	}

	amountStr := strings.TrimSpace(record[columnMap["amount"]])
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s' at line %d: %w", amountStr, lineNumber, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount '%s' at line %d", amountStr, lineNumber)
	}
	if amount.Exponent() < -2 {
		return nil, fmt.Errorf("amount '%s' at line %d has more than two fractional digits", amountStr, lineNumber)
	}

	typeStr := strings.ToUpper(strings.TrimSpace(record[columnMap["type"]]))
	if typeStr != string(domain.Debit) && typeStr != string(domain.Credit) {
		return nil, fmt.Errorf("invalid transaction type '%s' at line %d", typeStr, lineNumber)
	}

	dateStr := strings.TrimSpace(record[columnMap["date"]])
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date '%s' at line %d: %w", dateStr, lineNumber, err)
	}

	return &domain.Transaction{
		ID:          id,
		Side:        p.side,
		Date:        date,
		Description: strings.TrimSpace(record[columnMap["description"]]),
		AmountCents: amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Type:        domain.TransactionType(typeStr),
	}, nil
}

func mapColumns(header []string) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		columnMap[normalized] = i
	}
	return columnMap
}

func validateColumns(columnMap map[string]int) bool {
	requiredColumns := []string{"id", "date", "description", "amount", "type"}
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return false
		}
	}
	return true
}

func parseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"01/02/2006",
		"2006/01/02",
		time.RFC3339,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
