// Package matcher implements the counterparty matcher: fuzzy token-set
// similarity between transaction descriptions, used to suggest which past
// transfer reimbursed a given transaction. Scoring is a pure function; the
// package has no persistence side effects.
package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/finsoc/splitledger/internal/models"
)

const (
	// DefaultThreshold is the minimum score a candidate must reach to be
	// suggested.
	DefaultThreshold = 85

	// DefaultLimit caps how many suggestions are returned.
	DefaultLimit = 20

	// MaxScan caps how many candidate transactions are scored per call.
	MaxScan = 500
)

// Match is one suggested counterparty transaction with its similarity score.
type Match struct {
	Transaction models.Transaction
	Score       int
}

// Suggest scores every candidate description against the base transaction and
// returns matches with score >= threshold, best first (ties broken by newer
// date), truncated to limit. Candidates sharing the base transaction's ID are
// skipped; at most MaxScan candidates are scored.
func Suggest(base models.Transaction, candidates []models.Transaction, threshold, limit int) []Match {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	scanned := 0
	var matches []Match
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		if scanned >= MaxScan {
			break
		}
		scanned++

		score := TokenSetRatio(base.Description, c.Description)
		if score >= threshold {
			matches = append(matches, Match{Transaction: c, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Transaction.Date.After(matches[j].Transaction.Date)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// TokenSetRatio computes a case-insensitive, order-independent similarity
// between two strings as an integer 0-100.
//
// Both strings are tokenized on non-alphanumeric runes; the sorted token
// intersection and differences are joined and compared pairwise with a
// Levenshtein ratio, and the best pairing wins. Identical token sets score
// 100 regardless of word order; strings with no tokens score 0.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	sect := strings.Join(inter, " ")
	combA := joinNonEmpty(sect, strings.Join(diffA, " "))
	combB := joinNonEmpty(sect, strings.Join(diffB, " "))

	best := ratio(sect, combA)
	if r := ratio(sect, combB); r > best {
		best = r
	}
	if r := ratio(combA, combB); r > best {
		best = r
	}
	return best
}

// ratio is a Levenshtein similarity on the rune level, 0-100.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// tokenSet lowercases s and splits it into a set of alphanumeric tokens.
func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
