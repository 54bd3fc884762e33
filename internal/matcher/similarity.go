package matcher

import "strings"

// similarity scores how alike two free-text descriptions are, in [0,1].
// Numeric reference tokens short-circuit to a high, near-certain score;
// otherwise the best of three textual signals wins: token Jaccard,
// substring containment, and a length-gated edit-distance score.
func similarity(a, b string) float64 {
	if sharesNumericToken(a, b) {
		return 0.98
	}

	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	ta, tb := tokenSet(na), tokenSet(nb)
	jaccard := jaccardIndex(ta, tb)

	containment := 0.0
	if containsSubstring(na, nb) {
		containment = 0.85
	}

	editScore := 0.0
	lenDiff := len(na) - len(nb)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff < 5 && len(na) > 3 {
		dist := levenshtein(na, nb)
		maxLen := len(na)
		if len(nb) > maxLen {
			maxLen = len(nb)
		}
		editScore = 1 - float64(dist)/float64(maxLen)
	}

	return maxFloat(jaccard, containment, editScore)
}

func jaccardIndex(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func containsSubstring(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func maxFloat(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
