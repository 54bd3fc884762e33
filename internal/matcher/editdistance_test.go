package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein_IdenticalStrings(t *testing.T) {
	assert.Equal(t, 0, levenshtein("mensah", "mensah"))
}

func TestLevenshtein_SingleSubstitution(t *testing.T) {
	assert.Equal(t, 1, levenshtein("mensah", "mensan"))
}

func TestLevenshtein_EmptyString(t *testing.T) {
	assert.Equal(t, 5, levenshtein("", "acme1"))
}

func TestLevenshtein_Insertion(t *testing.T) {
	assert.Equal(t, 2, levenshtein("acme", "acmeio"))
}
