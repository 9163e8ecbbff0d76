// Package cedula validates Panamanian national identity numbers (cédulas).
//
// Validate is meant to run on every keystroke: besides complete identifiers
// such as "8-123-4567" it accepts every proper prefix of one ("8", "8-",
// "8-123-") as valid but incomplete, so a form can tell "still typing" apart
// from "wrong". Validate never fails; an invalid input is reported as data.
package cedula

import (
	"errors"
	"strconv"
	"strings"
)

// Errors returned by Parse.
var (
	// ErrInvalid is returned when the input does not follow the cédula grammar.
	ErrInvalid = errors.New("national id format is invalid")

	// ErrIncomplete is returned when the input is a valid prefix of a cédula but not a whole one.
	ErrIncomplete = errors.New("national id is incomplete")
)

// noProvince is the first part emitted for identifiers with a letter category code.
const noProvince = "0"

// ValidationResult describes how an input relates to the cédula grammar.
type ValidationResult struct {
	// IsValid is true for complete identifiers, valid in-progress prefixes and the empty string.
	IsValid bool `json:"is_valid"`

	// Input is the validated string, unchanged.
	Input string `json:"input"`

	// IsComplete is true when Input is a whole identifier.
	IsComplete bool `json:"is_complete"`

	// Parts holds the decomposed identifier. Non-nil iff IsComplete.
	// Layout: province or "0", qualifier or category code, book, sequence.
	Parts []string `json:"parts,omitempty"`
}

// Validate classifies input as complete, valid-so-far, or invalid.
// It is a pure function and safe for concurrent use.
func Validate(input string) ValidationResult {
	if m := completePattern.FindStringSubmatch(input); m != nil {
		return ValidationResult{
			IsValid:    true,
			Input:      input,
			IsComplete: true,
			Parts:      decompose(m[1], m[2], m[3]),
		}
	}

	return ValidationResult{
		IsValid: isInProgress(input),
		Input:   input,
	}
}

// decompose builds the parts of a complete match.
func decompose(prefix, book, sequence string) []string {
	parts := make([]string, 0, 4)

	switch {
	case isCategoryCode(prefix):
		parts = append(parts, noProvince, prefix)
	default:
		if m := splitPattern.FindStringSubmatch(prefix); m != nil {
			parts = append(parts, m[1], m[2])
		} else {
			// Unreachable with the current grammar; kept so a prefix that
			// neither names a category nor splits still yields a result.
			parts = append(parts, prefix)
		}
	}

	return append(parts, book, sequence)
}

// isInProgress reports whether input is a proper prefix of some complete identifier.
func isInProgress(input string) bool {
	segments := strings.Split(input, separator)

	switch len(segments) {
	case 1:
		// "", "P", "8", "8A", "13PI"
		return isPartialPrefixToken(segments[0])
	case 2:
		// "8-", "8-12"
		return isPrefixToken(segments[0]) && isDigits(segments[1], 0, maxBookDigits)
	case 3:
		// "8-12-"
		return isPrefixToken(segments[0]) &&
			isDigits(segments[1], 1, maxBookDigits) &&
			segments[2] == ""
	default:
		return false
	}
}

// Normalize trims surrounding whitespace and upper-cases the input.
func Normalize(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// NationalID is a complete, structured cédula.
type NationalID struct {
	// Category is the letter code (PE, E, N); empty for province identifiers.
	Category string
	// Province is 1-13; zero when Category is set.
	Province int
	// Qualifier is the regional qualifier (AV, PI), if any.
	Qualifier string
	// Book is the 1-4 digit second group.
	Book string
	// Sequence is the 1-6 digit third group.
	Sequence string
}

// Parse normalizes input and returns the structured identifier.
// It returns ErrIncomplete for valid prefixes and ErrInvalid otherwise.
func Parse(input string) (NationalID, error) {
	result := Validate(Normalize(input))
	if !result.IsValid {
		return NationalID{}, ErrInvalid
	}
	if !result.IsComplete {
		return NationalID{}, ErrIncomplete
	}

	p := result.Parts
	if len(p) != 4 {
		return NationalID{}, ErrInvalid
	}

	id := NationalID{Book: p[2], Sequence: p[3]}
	if p[0] == noProvince {
		id.Category = p[1]
		return id, nil
	}

	province, err := strconv.Atoi(p[0])
	if err != nil {
		return NationalID{}, ErrInvalid
	}
	id.Province = province
	id.Qualifier = p[1]
	return id, nil
}

// Prefix returns the leading token, e.g. "8", "8AV" or "PE".
func (n NationalID) Prefix() string {
	if n.Category != "" {
		return n.Category
	}
	return strconv.Itoa(n.Province) + n.Qualifier
}

// String returns the canonical form PREFIX-BOOK-SEQUENCE.
func (n NationalID) String() string {
	if n.IsZero() {
		return ""
	}
	return n.Prefix() + separator + n.Book + separator + n.Sequence
}

// IsZero reports whether n is the zero value.
func (n NationalID) IsZero() bool {
	return n.Book == "" && n.Sequence == ""
}

// Equals compares two identifiers by canonical form.
func (n NationalID) Equals(other NationalID) bool {
	return n.String() == other.String()
}
