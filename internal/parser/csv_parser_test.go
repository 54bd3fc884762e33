package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-recon-engine/internal/domain"
)

func TestTransactionParser_Parse(t *testing.T) {
	tmpDir := t.TempDir()
	csvFile := filepath.Join(tmpDir, "bank.csv")

	csvContent := `id,date,description,amount,type
b1,2024-01-15,Wire ACME Holdings,100.50,DEBIT
b2,2024-01-16,Salary payment,200.75,CREDIT
b3,2024-01-17,Invoice 99821,300.00,DEBIT
`
	require.NoError(t, os.WriteFile(csvFile, []byte(csvContent), 0644))

	p := NewTransactionParser(domain.SideBank)
	var txs []domain.Transaction
	err := p.Parse(csvFile, 100, func(batch []domain.Transaction) error {
		txs = append(txs, batch...)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "b1", txs[0].ID)
	assert.Equal(t, domain.SideBank, txs[0].Side)
	assert.Equal(t, int64(10050), txs[0].AmountCents)
	assert.Equal(t, domain.Debit, txs[0].Type)
}

func TestTransactionParser_MissingRequiredColumns(t *testing.T) {
	tmpDir := t.TempDir()
	csvFile := filepath.Join(tmpDir, "invalid.csv")

	require.NoError(t, os.WriteFile(csvFile, []byte("id,value\n1,100\n"), 0644))

	p := NewTransactionParser(domain.SideLedger)
	err := p.Parse(csvFile, 100, func(batch []domain.Transaction) error { return nil })
	assert.Error(t, err)
}

func TestTransactionParser_SkipsInvalidRows(t *testing.T) {
	tmpDir := t.TempDir()
	csvFile := filepath.Join(tmpDir, "mixed.csv")

	content := `id,date,description,amount,type
l1,2024-01-15,Good row,100.00,CREDIT
l2,2024-01-16,Negative amount,-50.00,CREDIT
l3,2024-01-17,Bad type,75.00,UNKNOWN
l4,2024-01-18,Too many decimals,10.005,CREDIT
l5,not-a-date,Bad date,300.00,CREDIT
,2024-01-20,Empty id,10.00,CREDIT
l6,2024-01-21,Another good row,400.00,DEBIT
`

	require.NoError(t, os.WriteFile(csvFile, []byte(content), 0644))

	p := NewTransactionParser(domain.SideLedger)
	var txs []domain.Transaction
	err := p.Parse(csvFile, 100, func(batch []domain.Transaction) error {
		txs = append(txs, batch...)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "l1", txs[0].ID)
	assert.Equal(t, "l6", txs[1].ID)
}

func TestTransactionParser_BatchesAcrossCallbacks(t *testing.T) {
	tmpDir := t.TempDir()
	csvFile := filepath.Join(tmpDir, "batches.csv")

	content := `id,date,description,amount,type
id0,2024-01-01,desc,10.00,DEBIT
id1,2024-01-02,desc,10.00,DEBIT
id2,2024-01-03,desc,10.00,DEBIT
id3,2024-01-04,desc,10.00,DEBIT
id4,2024-01-05,desc,10.00,DEBIT
`
	require.NoError(t, os.WriteFile(csvFile, []byte(content), 0644))

	p := NewTransactionParser(domain.SideBank)
	var callbackCount int
	var total int
	err := p.Parse(csvFile, 2, func(batch []domain.Transaction) error {
		callbackCount++
		total += len(batch)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, callbackCount) // batches of 2, 2, 1
}
