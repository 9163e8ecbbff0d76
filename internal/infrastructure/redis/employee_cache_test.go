package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

func newEmployee(t *testing.T) *employee.Employee {
	t.Helper()

	code, err := employee.NewCode("EMP001")
	require.NoError(t, err)
	nid, err := employee.NewNationalID("8AV-123-4567")
	require.NoError(t, err)

	e, err := employee.NewEmployee(code, nid, employee.Details{
		FirstName:   "Ana",
		LastName:    "Lopez",
		Email:       "ana@example.com",
		Position:    "Analyst",
		Department:  employee.DepartmentFinance,
		HireDate:    time.Date(2022, 5, 10, 0, 0, 0, 0, time.UTC),
		SalaryCents: 250000,
	}, "admin")
	require.NoError(t, err)
	return e
}

func TestEmployeeCacheData_RoundTrip(t *testing.T) {
	e := newEmployee(t)
	position := "Lead"
	require.NoError(t, e.Update(employee.UpdateFields{Position: &position}, "editor"))

	data := fromEntity(e)
	got, err := data.toEntity()
	require.NoError(t, err)

	assert.Equal(t, e.ID(), got.ID())
	assert.Equal(t, e.Code(), got.Code())
	assert.True(t, e.NationalID().Equals(got.NationalID()))
	assert.Equal(t, e.Details(), got.Details())
	assert.Equal(t, e.Status(), got.Status())
	assert.True(t, e.CreatedAt().Equal(got.CreatedAt()))
	require.NotNil(t, got.UpdatedAt())
	assert.True(t, e.UpdatedAt().Equal(*got.UpdatedAt()))
	assert.Equal(t, "editor", *got.UpdatedBy())
}

func TestEmployeeCacheData_Corrupt(t *testing.T) {
	data := fromEntity(newEmployee(t))
	data.NationalID = "8-"

	_, err := data.toEntity()
	assert.Error(t, err)
}

func TestNewEmployeeCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, defaultTTL, NewEmployeeCache(nil, 0).ttl)
	assert.Equal(t, time.Minute, NewEmployeeCache(nil, time.Minute).ttl)
}
