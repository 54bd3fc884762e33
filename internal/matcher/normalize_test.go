package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText_StripsStopWordsAndPunctuation(t *testing.T) {
	got := normalizeText("TRF: Payment to ACME Corp Ltd. #4521")
	assert.Equal(t, "acme 4521", got)
}

func TestNormalizeText_DropsSingleCharTokens(t *testing.T) {
	got := normalizeText("a b c Mensah")
	assert.Equal(t, "mensah", got)
}

func TestNormalizeText_EmptyInput(t *testing.T) {
	assert.Equal(t, "", normalizeText("   "))
}

func TestTokenSet(t *testing.T) {
	set := tokenSet("acme holdings wire")
	assert.Len(t, set, 3)
	_, ok := set["holdings"]
	assert.True(t, ok)
}
