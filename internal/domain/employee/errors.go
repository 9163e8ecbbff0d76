// Package employee provides domain logic for employee records.
package employee

import "errors"

// Domain errors for employee operations.
var (
	// ErrNotFound is returned when an employee is not found.
	ErrNotFound = errors.New("employee not found")

	// ErrAlreadyExists is returned when the employee code is already in use.
	ErrAlreadyExists = errors.New("employee already exists")

	// ErrNationalIDTaken is returned when another employee holds the same national id.
	ErrNationalIDTaken = errors.New("national id is already registered to another employee")

	// ErrEmptyCode is returned when the employee code is empty.
	ErrEmptyCode = errors.New("employee code cannot be empty")

	// ErrCodeTooLong is returned when the employee code exceeds max length.
	ErrCodeTooLong = errors.New("employee code must be at most 20 characters")

	// ErrInvalidCodeFormat is returned when the employee code format is invalid.
	ErrInvalidCodeFormat = errors.New("employee code must start with an uppercase letter and contain only uppercase letters, numbers, underscores and hyphens")

	// ErrEmptyNationalID is returned when the national id is empty.
	ErrEmptyNationalID = errors.New("national id cannot be empty")

	// ErrIncompleteNationalID is returned for a well-formed but unfinished national id.
	ErrIncompleteNationalID = errors.New("national id is incomplete")

	// ErrInvalidNationalID is returned when the national id does not follow the cedula format.
	ErrInvalidNationalID = errors.New("national id format is invalid")

	// ErrEmptyFirstName is returned when the first name is empty.
	ErrEmptyFirstName = errors.New("first name cannot be empty")

	// ErrEmptyLastName is returned when the last name is empty.
	ErrEmptyLastName = errors.New("last name cannot be empty")

	// ErrNameTooLong is returned when a name exceeds max length.
	ErrNameTooLong = errors.New("names must be at most 100 characters")

	// ErrInvalidEmail is returned when the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidDepartment is returned when the department is not recognised.
	ErrInvalidDepartment = errors.New("invalid department: must be ADMINISTRATION, FINANCE, HUMAN_RESOURCES, OPERATIONS, SALES, or TECHNOLOGY")

	// ErrInvalidStatus is returned when the status is not recognised.
	ErrInvalidStatus = errors.New("invalid status: must be ACTIVE, ON_LEAVE, or TERMINATED")

	// ErrInvalidStatusTransition is returned when leaving the TERMINATED status or repeating the current one.
	ErrInvalidStatusTransition = errors.New("invalid employee status transition")

	// ErrNegativeSalary is returned when the salary is below zero.
	ErrNegativeSalary = errors.New("salary cannot be negative")

	// ErrEmptyHireDate is returned when the hire date is missing.
	ErrEmptyHireDate = errors.New("hire date is required")

	// ErrHireDateInFuture is returned when the hire date is more than a year ahead.
	ErrHireDateInFuture = errors.New("hire date cannot be more than one year in the future")

	// ErrEmptyCreatedBy is returned when created_by is empty.
	ErrEmptyCreatedBy = errors.New("created_by cannot be empty")

	// ErrAlreadyDeleted is returned when mutating a deleted employee.
	ErrAlreadyDeleted = errors.New("employee is already deleted")
)
