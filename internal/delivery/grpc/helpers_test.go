package grpc

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

const testJWTSecret = "hr-test-secret-for-unit-tests"

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessTokenSecret: testJWTSecret,
		Issuer:            "test-issuer",
	}
}

func testClaims(permissions ...string) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "user-abc-123",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			ID:        uuid.NewString(),
		},
		TokenType:   "access",
		UserID:      "user-abc-123",
		Username:    "hr.clerk",
		Email:       "clerk@example.com",
		Roles:       []string{"HR_STAFF"},
		Permissions: permissions,
	}
}

func signTestToken(t *testing.T, claims *auth.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func allPermissions() []string {
	return []string{
		auth.PermEmployeeView,
		auth.PermEmployeeCreate,
		auth.PermEmployeeUpdate,
		auth.PermEmployeeDelete,
	}
}

// memRepository is an in-memory employee.Repository.
type memRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*employee.Employee
}

func newMemRepository() *memRepository {
	return &memRepository{items: map[uuid.UUID]*employee.Employee{}}
}

var _ employee.Repository = (*memRepository)(nil)

func (r *memRepository) Create(_ context.Context, e *employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Code().Equals(e.Code()) {
			return employee.ErrAlreadyExists
		}
		if existing.NationalID().Equals(e.NationalID()) {
			return employee.ErrNationalIDTaken
		}
	}
	r.items[e.ID()] = e
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id uuid.UUID) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[id]; ok {
		return e, nil
	}
	return nil, employee.ErrNotFound
}

func (r *memRepository) find(match func(*employee.Employee) bool) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if match(e) {
			return e, nil
		}
	}
	return nil, employee.ErrNotFound
}

func (r *memRepository) GetByCode(_ context.Context, code employee.Code) (*employee.Employee, error) {
	return r.find(func(e *employee.Employee) bool { return e.Code().Equals(code) })
}

func (r *memRepository) GetByNationalID(_ context.Context, nationalID employee.NationalID) (*employee.Employee, error) {
	return r.find(func(e *employee.Employee) bool { return e.NationalID().Equals(nationalID) })
}

func (r *memRepository) sorted() []*employee.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*employee.Employee, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code().String() < out[j].Code().String() })
	return out
}

func (r *memRepository) List(_ context.Context, filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	all := r.sorted()
	total := int64(len(all))
	start := filter.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memRepository) ListAll(_ context.Context, _ employee.ExportFilter) ([]*employee.Employee, error) {
	return r.sorted(), nil
}

func (r *memRepository) Update(_ context.Context, e *employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID()]; !ok {
		return employee.ErrNotFound
	}
	r.items[e.ID()] = e
	return nil
}

func (r *memRepository) SoftDelete(_ context.Context, id uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return employee.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memRepository) ExistsByCode(ctx context.Context, code employee.Code) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

func (r *memRepository) ExistsByNationalID(ctx context.Context, nationalID employee.NationalID) (bool, error) {
	_, err := r.GetByNationalID(ctx, nationalID)
	return err == nil, nil
}

func (r *memRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *memRepository) HeadcountByDepartment(_ context.Context) ([]employee.DepartmentHeadcount, error) {
	counts := map[employee.Department]*employee.DepartmentHeadcount{}
	for _, e := range r.sorted() {
		row, ok := counts[e.Department()]
		if !ok {
			row = &employee.DepartmentHeadcount{Department: e.Department()}
			counts[e.Department()] = row
		}
		switch e.Status() {
		case employee.StatusActive:
			row.Active++
		case employee.StatusOnLeave:
			row.OnLeave++
		case employee.StatusTerminated:
			row.Terminated++
		}
	}
	out := make([]employee.DepartmentHeadcount, 0, len(counts))
	for _, row := range counts {
		out = append(out, *row)
	}
	return out, nil
}
