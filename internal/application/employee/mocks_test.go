package employee_test

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// MockRepository is a mock implementation of employee.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, entity *employee.Employee) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockRepository) GetByCode(ctx context.Context, code employee.Code) (*employee.Employee, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockRepository) GetByNationalID(ctx context.Context, nationalID employee.NationalID) (*employee.Employee, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*employee.Employee), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListAll(ctx context.Context, filter employee.ExportFilter) ([]*employee.Employee, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*employee.Employee), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, entity *employee.Employee) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockRepository) ExistsByCode(ctx context.Context, code employee.Code) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ExistsByNationalID(ctx context.Context, nationalID employee.NationalID) (bool, error) {
	args := m.Called(ctx, nationalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) HeadcountByDepartment(ctx context.Context) ([]employee.DepartmentHeadcount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]employee.DepartmentHeadcount), args.Error(1)
}

// MockCache is a mock implementation of the employee cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockCache) SetByID(ctx context.Context, entity *employee.Employee) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockCache) InvalidateByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockAudit is a mock implementation of the audit logger.
type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) LogCreate(ctx context.Context, table string, id uuid.UUID, newData interface{}, by string) error {
	return m.Called(ctx, table, id, newData, by).Error(0)
}

func (m *MockAudit) LogUpdate(ctx context.Context, table string, id uuid.UUID, oldData, newData interface{}, by string) error {
	return m.Called(ctx, table, id, oldData, newData, by).Error(0)
}

func (m *MockAudit) LogDelete(ctx context.Context, table string, id uuid.UUID, oldData interface{}, by string) error {
	return m.Called(ctx, table, id, oldData, by).Error(0)
}

// MockPublisher is a mock implementation of the event publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event employee.Event) error {
	return m.Called(ctx, event).Error(0)
}

// MockStorage is a mock implementation of photo storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadPhoto(ctx context.Context, id uuid.UUID, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, id, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeletePhoto(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func mustEmployee(code, nationalID string) *employee.Employee {
	c, err := employee.NewCode(code)
	if err != nil {
		panic(err)
	}
	n, err := employee.NewNationalID(nationalID)
	if err != nil {
		panic(err)
	}
	e, err := employee.NewEmployee(c, n, employee.Details{
		FirstName:   "Ana",
		LastName:    "Batista",
		Position:    "Accountant",
		Department:  employee.DepartmentFinance,
		HireDate:    time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		SalaryCents: 180000,
	}, "admin")
	if err != nil {
		panic(err)
	}
	return e
}
