package employee

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/mutugading/goapps-backend/services/hr/pkg/cedula"
)

// =============================================================================
// Code Value Object
// =============================================================================

// Code is a validated employee code such as "EMP-0001".
type Code struct {
	value string
}

const maxCodeLength = 20

var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)

// NewCode creates a validated Code. Input is trimmed and upper-cased.
func NewCode(code string) (Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Code{}, ErrEmptyCode
	}
	if len(code) > maxCodeLength {
		return Code{}, ErrCodeTooLong
	}
	if !codePattern.MatchString(code) {
		return Code{}, ErrInvalidCodeFormat
	}
	return Code{value: code}, nil
}

// String returns the code.
func (c Code) String() string { return c.value }

// IsEmpty reports whether the code is unset.
func (c Code) IsEmpty() bool { return c.value == "" }

// Equals checks if two codes are equal.
func (c Code) Equals(other Code) bool { return c.value == other.value }

// =============================================================================
// NationalID Value Object
// =============================================================================

// NationalID is a complete cedula stored in canonical upper-case form.
type NationalID struct {
	id cedula.NationalID
}

// NewNationalID parses and validates a national id. In-progress input is rejected.
func NewNationalID(raw string) (NationalID, error) {
	if strings.TrimSpace(raw) == "" {
		return NationalID{}, ErrEmptyNationalID
	}

	id, err := cedula.Parse(raw)
	switch {
	case errors.Is(err, cedula.ErrIncomplete):
		return NationalID{}, ErrIncompleteNationalID
	case err != nil:
		return NationalID{}, ErrInvalidNationalID
	}
	return NationalID{id: id}, nil
}

// String returns the canonical form, e.g. "8AV-123-4567".
func (n NationalID) String() string { return n.id.String() }

// Province returns the province number, zero for category-coded ids.
func (n NationalID) Province() int { return n.id.Province }

// Category returns the category code (PE, E, N) or "".
func (n NationalID) Category() string { return n.id.Category }

// IsEmpty reports whether the id is unset.
func (n NationalID) IsEmpty() bool { return n.id.IsZero() }

// Equals compares canonical forms.
func (n NationalID) Equals(other NationalID) bool { return n.id.Equals(other.id) }

// Fingerprint returns a short blake2b digest of the canonical form.
// Logs and cache keys use it instead of the id itself.
func (n NationalID) Fingerprint() string {
	if n.IsEmpty() {
		return ""
	}
	sum := blake2b.Sum256([]byte(n.String()))
	return hex.EncodeToString(sum[:12])
}

// =============================================================================
// Department Value Object
// =============================================================================

// Department is the organisational unit an employee belongs to.
type Department string

// Department constants.
const (
	DepartmentAdministration Department = "ADMINISTRATION"
	DepartmentFinance        Department = "FINANCE"
	DepartmentHumanResources Department = "HUMAN_RESOURCES"
	DepartmentOperations     Department = "OPERATIONS"
	DepartmentSales          Department = "SALES"
	DepartmentTechnology     Department = "TECHNOLOGY"
)

var validDepartments = map[Department]bool{
	DepartmentAdministration: true,
	DepartmentFinance:        true,
	DepartmentHumanResources: true,
	DepartmentOperations:     true,
	DepartmentSales:          true,
	DepartmentTechnology:     true,
}

// NewDepartment creates a validated Department. Matching is case-insensitive
// and spaces are accepted in place of underscores.
func NewDepartment(department string) (Department, error) {
	d := Department(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(department)), " ", "_"))
	if !validDepartments[d] {
		return "", ErrInvalidDepartment
	}
	return d, nil
}

// String returns the department name.
func (d Department) String() string { return string(d) }

// IsValid reports whether d is a known department.
func (d Department) IsValid() bool { return validDepartments[d] }

// AllDepartments returns every department in display order.
func AllDepartments() []Department {
	return []Department{
		DepartmentAdministration,
		DepartmentFinance,
		DepartmentHumanResources,
		DepartmentOperations,
		DepartmentSales,
		DepartmentTechnology,
	}
}

// =============================================================================
// Status Value Object
// =============================================================================

// Status is the employment status.
type Status string

// Status constants.
const (
	StatusActive     Status = "ACTIVE"
	StatusOnLeave    Status = "ON_LEAVE"
	StatusTerminated Status = "TERMINATED"
)

var validStatuses = map[Status]bool{
	StatusActive:     true,
	StatusOnLeave:    true,
	StatusTerminated: true,
}

// NewStatus creates a validated Status.
func NewStatus(status string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(status)), " ", "_"))
	if !validStatuses[s] {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// String returns the status name.
func (s Status) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool { return validStatuses[s] }

// CanTransitionTo reports whether an employee may move from s to next.
// TERMINATED is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.IsValid() || s == next {
		return false
	}
	return s != StatusTerminated
}

// AllStatuses returns every status.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusOnLeave, StatusTerminated}
}
