package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Bounds(t *testing.T) {
	s := similarity("ACME CORP SERVICES", "Unrelated text entirely")
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
}

func TestSimilarity_IdenticalIsOne(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Salary June payment", "salary june payment"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "K. Mensah salary payment", "Salary June K Mensah"
	assert.Equal(t, similarity(a, b), similarity(b, a))
}

func TestSimilarity_NumericTokenShortCircuit(t *testing.T) {
	s := similarity("TRF INV-99821 ACME", "Invoice 99821 payment")
	assert.Equal(t, 0.98, s)
}

func TestSimilarity_HighForOverlappingTokens(t *testing.T) {
	s := similarity("ACME CORP SERVICES", "Acme Corp Services Ltd")
	assert.Greater(t, s, 0.8)
}

func TestSimilarity_EmptyAfterNormalizationIsZero(t *testing.T) {
	assert.Equal(t, 0.0, similarity("the and or", "to from of"))
}
