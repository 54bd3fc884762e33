package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNumericTokens_AllDigitRun(t *testing.T) {
	tokens := extractNumericTokens("TRF INV-99821 ACME")
	_, ok := tokens["99821"]
	assert.True(t, ok)
}

func TestExtractNumericTokens_RejectsCalendarYear(t *testing.T) {
	tokens := extractNumericTokens("Standing order 2024 payment")
	_, ok := tokens["2024"]
	assert.False(t, ok)
}

func TestExtractNumericTokens_AcceptsAlphanumericWithEnoughDigits(t *testing.T) {
	tokens := extractNumericTokens("REF-AB1234")
	_, ok := tokens["AB1234"]
	assert.True(t, ok)
}

func TestExtractNumericTokens_RejectsShortDigitRun(t *testing.T) {
	tokens := extractNumericTokens("ATM 12 withdrawal")
	assert.Len(t, tokens, 0)
}

func TestSharesNumericToken(t *testing.T) {
	assert.True(t, sharesNumericToken("TRF INV-99821 ACME", "Invoice 99821 payment"))
	assert.False(t, sharesNumericToken("TRF INV-99821 ACME", "Invoice 55512 payment"))
	assert.False(t, sharesNumericToken("no numbers here", "also none"))
}
