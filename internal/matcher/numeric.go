package matcher

import (
	"regexp"
	"strconv"
)

var candidateRe = regexp.MustCompile(`[A-Za-z0-9]+`)

const yearGuardMin = 2020
const yearGuardMax = 2030

// extractNumericTokens pulls likely reference-identifier tokens out of a
// description: all-digit runs of length >= 3, or alphanumeric runs mixing
// letters with at least 3 digits, excluding anything that looks like a
// calendar year between 2020 and 2030. Non-alphanumeric characters (spaces,
// hyphens, slashes) act as separators, so "INV-99821" yields the candidates
// "INV" and "99821" rather than a single fused token.
func extractNumericTokens(description string) map[string]struct{} {
	tokens := make(map[string]struct{})

	for _, token := range candidateRe.FindAllString(description, -1) {
		if isCalendarYear(token) {
			continue
		}

		digits, letters := countDigitsAndLetters(token)
		if digits == len(token) && digits >= 3 {
			tokens[token] = struct{}{}
			continue
		}
		if letters >= 1 && digits >= 3 {
			tokens[token] = struct{}{}
		}
	}

	return tokens
}

func isCalendarYear(token string) bool {
	n, err := strconv.Atoi(token)
	if err != nil {
		return false
	}
	return n >= yearGuardMin && n <= yearGuardMax
}

func countDigitsAndLetters(s string) (digits, letters int) {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	return digits, letters
}

// sharesNumericToken reports whether two descriptions have at least one
// accepted numeric token in common.
func sharesNumericToken(a, b string) bool {
	na := extractNumericTokens(a)
	if len(na) == 0 {
		return false
	}
	nb := extractNumericTokens(b)
	for t := range nb {
		if _, ok := na[t]; ok {
			return true
		}
	}
	return false
}
