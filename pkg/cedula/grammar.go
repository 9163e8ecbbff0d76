package cedula

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// Grammar definition
// =============================================================================
//
//	complete  := prefix "-" digits{1,4} "-" digits{1,6}
//	prefix    := code | province [qualifier]
//	code      := "PE" | "E" | "N"
//	province  := "1" .. "13"
//	qualifier := "AV" | "PI"
//
// Both the strict pattern and the in-progress checks are derived from the
// tables below, so they cannot drift apart.

// categoryCodes are the letter codes that stand in place of a province number.
var categoryCodes = []string{"PE", "E", "N"}

// qualifiers are the regional qualifiers that may follow a province number.
var qualifiers = []string{"AV", "PI"}

const (
	minProvince = 1
	maxProvince = 13

	maxBookDigits     = 4
	maxSequenceDigits = 6

	separator = "-"
)

// prefixTokens holds every complete prefix the grammar accepts, upper-cased
// and ordered longest first.
var prefixTokens = buildPrefixTokens()

// completePattern matches a complete identifier and captures prefix, book and sequence.
var completePattern = regexp.MustCompile(fmt.Sprintf(
	`(?i)^(%s)%s(\d{1,%d})%s(\d{1,%d})$`,
	alternation(prefixTokens), separator, maxBookDigits, separator, maxSequenceDigits,
))

// splitPattern separates a numeric prefix into its digit run and letter run.
var splitPattern = regexp.MustCompile(`^(\d+)([A-Za-z]*)$`)

func buildPrefixTokens() []string {
	tokens := append([]string(nil), categoryCodes...)
	for p := minProvince; p <= maxProvince; p++ {
		province := strconv.Itoa(p)
		tokens = append(tokens, province)
		for _, q := range qualifiers {
			tokens = append(tokens, province+q)
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i]) > len(tokens[j])
	})
	return tokens
}

func alternation(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

// isCategoryCode reports whether s is one of the letter category codes.
func isCategoryCode(s string) bool {
	upper := asciiUpper(s)
	for _, code := range categoryCodes {
		if upper == code {
			return true
		}
	}
	return false
}

// isPrefixToken reports whether s is a complete prefix token.
func isPrefixToken(s string) bool {
	upper := asciiUpper(s)
	for _, t := range prefixTokens {
		if upper == t {
			return true
		}
	}
	return false
}

// isPartialPrefixToken reports whether s can still grow into a prefix token.
// The empty string qualifies.
func isPartialPrefixToken(s string) bool {
	upper := asciiUpper(s)
	for _, t := range prefixTokens {
		if strings.HasPrefix(t, upper) {
			return true
		}
	}
	return false
}

// isDigits reports whether s consists of between minLen and maxLen ASCII digits.
func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// asciiUpper upper-cases ASCII letters only, so non-ASCII look-alikes never
// fold onto a grammar token.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
