package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-recon-engine/internal/domain"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestService_ParseFiles_CombinesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	fileA := writeCSV(t, dir, "a.csv", "id,date,description,amount,type\na1,2024-01-01,Desc A,10.00,DEBIT\n")
	fileB := writeCSV(t, dir, "b.csv", "id,date,description,amount,type\nb1,2024-01-02,Desc B,20.00,CREDIT\n")

	svc := NewIngestService()
	txs, err := svc.ParseFiles(domain.SideBank, []string{fileA, fileB}, 10)

	require.NoError(t, err)
	assert.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, domain.SideBank, tx.Side)
	}
}

func TestIngestService_ParseFiles_FailsOnMissingFile(t *testing.T) {
	svc := NewIngestService()
	_, err := svc.ParseFiles(domain.SideLedger, []string{"/nonexistent/path.csv"}, 10)
	assert.Error(t, err)
}

func TestIngestService_ParseFiles_NoFilesIsError(t *testing.T) {
	svc := NewIngestService()
	_, err := svc.ParseFiles(domain.SideBank, nil, 10)
	assert.Error(t, err)
}
