package employee

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 100

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Details holds the mutable personal and job data of an employee.
type Details struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Position    string
	Department  Department
	HireDate    time.Time
	SalaryCents int64
}

func (d *Details) normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Position = strings.TrimSpace(d.Position)
}

func (d Details) validate(now time.Time) error {
	if d.FirstName == "" {
		return ErrEmptyFirstName
	}
	if d.LastName == "" {
		return ErrEmptyLastName
	}
	if utf8.RuneCountInString(d.FirstName) > maxNameLength || utf8.RuneCountInString(d.LastName) > maxNameLength {
		return ErrNameTooLong
	}
	if d.Email != "" && !emailRegex.MatchString(d.Email) {
		return ErrInvalidEmail
	}
	if !d.Department.IsValid() {
		return ErrInvalidDepartment
	}
	if d.HireDate.IsZero() {
		return ErrEmptyHireDate
	}
	if d.HireDate.After(now.AddDate(1, 0, 0)) {
		return ErrHireDateInFuture
	}
	if d.SalaryCents < 0 {
		return ErrNegativeSalary
	}
	return nil
}

// Employee is the aggregate root for employee records.
type Employee struct {
	id         uuid.UUID
	code       Code
	nationalID NationalID
	details    Details
	status     Status
	photoURL   string
	createdAt  time.Time
	createdBy  string
	updatedAt  *time.Time
	updatedBy  *string
	deletedAt  *time.Time
	deletedBy  *string
}

// NewEmployee creates a new, active employee.
func NewEmployee(code Code, nationalID NationalID, details Details, createdBy string) (*Employee, error) {
	if code.IsEmpty() {
		return nil, ErrEmptyCode
	}
	if nationalID.IsEmpty() {
		return nil, ErrEmptyNationalID
	}
	if createdBy == "" {
		return nil, ErrEmptyCreatedBy
	}

	now := time.Now()
	details.normalize()
	details.HireDate = truncateToDate(details.HireDate)
	if err := details.validate(now); err != nil {
		return nil, err
	}

	return &Employee{
		id:         uuid.New(),
		code:       code,
		nationalID: nationalID,
		details:    details,
		status:     StatusActive,
		createdAt:  now,
		createdBy:  createdBy,
	}, nil
}

// ReconstructEmployee rebuilds an employee from persistence without validation.
func ReconstructEmployee(
	id uuid.UUID,
	code Code,
	nationalID NationalID,
	details Details,
	status Status,
	photoURL string,
	createdAt time.Time,
	createdBy string,
	updatedAt *time.Time,
	updatedBy *string,
	deletedAt *time.Time,
	deletedBy *string,
) *Employee {
	return &Employee{
		id:         id,
		code:       code,
		nationalID: nationalID,
		details:    details,
		status:     status,
		photoURL:   photoURL,
		createdAt:  createdAt,
		createdBy:  createdBy,
		updatedAt:  updatedAt,
		updatedBy:  updatedBy,
		deletedAt:  deletedAt,
		deletedBy:  deletedBy,
	}
}

// =============================================================================
// Getters
// =============================================================================

// ID returns the unique identifier.
func (e *Employee) ID() uuid.UUID { return e.id }

// Code returns the employee code.
func (e *Employee) Code() Code { return e.code }

// NationalID returns the national id.
func (e *Employee) NationalID() NationalID { return e.nationalID }

// Details returns a copy of the personal and job data.
func (e *Employee) Details() Details { return e.details }

// FirstName returns the first name.
func (e *Employee) FirstName() string { return e.details.FirstName }

// LastName returns the last name.
func (e *Employee) LastName() string { return e.details.LastName }

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.details.FirstName + " " + e.details.LastName)
}

// Email returns the email address, possibly empty.
func (e *Employee) Email() string { return e.details.Email }

// Phone returns the phone number.
func (e *Employee) Phone() string { return e.details.Phone }

// Position returns the job title.
func (e *Employee) Position() string { return e.details.Position }

// Department returns the department.
func (e *Employee) Department() Department { return e.details.Department }

// HireDate returns the hire date.
func (e *Employee) HireDate() time.Time { return e.details.HireDate }

// SalaryCents returns the monthly salary in cents.
func (e *Employee) SalaryCents() int64 { return e.details.SalaryCents }

// Status returns the employment status.
func (e *Employee) Status() Status { return e.status }

// PhotoURL returns the stored photo location.
func (e *Employee) PhotoURL() string { return e.photoURL }

// CreatedAt returns the creation timestamp.
func (e *Employee) CreatedAt() time.Time { return e.createdAt }

// CreatedBy returns the creator.
func (e *Employee) CreatedBy() string { return e.createdBy }

// UpdatedAt returns the last update timestamp.
func (e *Employee) UpdatedAt() *time.Time { return e.updatedAt }

// UpdatedBy returns the last updater.
func (e *Employee) UpdatedBy() *string { return e.updatedBy }

// DeletedAt returns the soft delete timestamp.
func (e *Employee) DeletedAt() *time.Time { return e.deletedAt }

// DeletedBy returns who deleted the record.
func (e *Employee) DeletedBy() *string { return e.deletedBy }

// IsDeleted reports whether the employee is soft deleted.
func (e *Employee) IsDeleted() bool { return e.deletedAt != nil }

// =============================================================================
// Domain Behavior Methods
// =============================================================================

// UpdateFields lists the optional changes accepted by Update. Nil means unchanged.
type UpdateFields struct {
	NationalID  *NationalID
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Position    *string
	Department  *Department
	HireDate    *time.Time
	SalaryCents *int64
}

// Update applies the non-nil fields. On error the employee is left unchanged.
func (e *Employee) Update(fields UpdateFields, updatedBy string) error {
	if e.IsDeleted() {
		return ErrAlreadyDeleted
	}

	next := e.details
	if fields.FirstName != nil {
		next.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		next.LastName = *fields.LastName
	}
	if fields.Email != nil {
		next.Email = *fields.Email
	}
	if fields.Phone != nil {
		next.Phone = *fields.Phone
	}
	if fields.Position != nil {
		next.Position = *fields.Position
	}
	if fields.Department != nil {
		next.Department = *fields.Department
	}
	if fields.HireDate != nil {
		next.HireDate = truncateToDate(*fields.HireDate)
	}
	if fields.SalaryCents != nil {
		next.SalaryCents = *fields.SalaryCents
	}

	now := time.Now()
	next.normalize()
	if err := next.validate(now); err != nil {
		return err
	}

	if fields.NationalID != nil {
		if fields.NationalID.IsEmpty() {
			return ErrEmptyNationalID
		}
		e.nationalID = *fields.NationalID
	}
	e.details = next
	e.touch(now, updatedBy)
	return nil
}

// ChangeStatus moves the employee to a new status. TERMINATED is terminal.
func (e *Employee) ChangeStatus(status Status, updatedBy string) error {
	if e.IsDeleted() {
		return ErrAlreadyDeleted
	}
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if !e.status.CanTransitionTo(status) {
		return ErrInvalidStatusTransition
	}

	e.status = status
	e.touch(time.Now(), updatedBy)
	return nil
}

// SetPhoto replaces the photo location and returns the previous one.
func (e *Employee) SetPhoto(url, updatedBy string) (string, error) {
	if e.IsDeleted() {
		return "", ErrAlreadyDeleted
	}

	previous := e.photoURL
	e.photoURL = url
	e.touch(time.Now(), updatedBy)
	return previous, nil
}

// SoftDelete marks the employee as deleted.
func (e *Employee) SoftDelete(deletedBy string) error {
	if e.IsDeleted() {
		return ErrAlreadyDeleted
	}

	now := time.Now()
	e.deletedAt = &now
	e.deletedBy = &deletedBy
	return nil
}

func (e *Employee) touch(now time.Time, by string) {
	e.updatedAt = &now
	e.updatedBy = &by
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
