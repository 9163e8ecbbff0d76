package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

const (
	employeeByIDKey = "employee:id:%s"

	defaultTTL = 15 * time.Minute
)

// ErrCacheMiss is returned when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EmployeeCache caches single employees by id.
type EmployeeCache struct {
	client *Client
	ttl    time.Duration
}

// NewEmployeeCache creates a new employee cache. A zero ttl uses the default.
func NewEmployeeCache(client *Client, ttl time.Duration) *EmployeeCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &EmployeeCache{client: client, ttl: ttl}
}

// employeeCacheData is the cached representation of an employee.
type employeeCacheData struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	NationalID  string  `json:"national_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Position    string  `json:"position,omitempty"`
	Department  string  `json:"department"`
	HireDate    string  `json:"hire_date"`
	SalaryCents int64   `json:"salary_cents"`
	Status      string  `json:"status"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CreatedBy   string  `json:"created_by"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
	UpdatedBy   *string `json:"updated_by,omitempty"`
}

// GetByID retrieves an employee from cache. A miss returns ErrCacheMiss.
func (c *EmployeeCache) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	key := fmt.Sprintf(employeeByIDKey, id.String())
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var cached employeeCacheData
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached employee")
		return nil, err
	}
	return cached.toEntity()
}

// SetByID caches an employee.
func (c *EmployeeCache) SetByID(ctx context.Context, entity *employee.Employee) error {
	jsonData, err := json.Marshal(fromEntity(entity))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(employeeByIDKey, entity.ID().String()), string(jsonData), c.ttl)
}

// InvalidateByID removes a cached employee.
func (c *EmployeeCache) InvalidateByID(ctx context.Context, id uuid.UUID) error {
	return c.client.Delete(ctx, fmt.Sprintf(employeeByIDKey, id.String()))
}

// InvalidateAll removes every cached employee.
func (c *EmployeeCache) InvalidateAll(ctx context.Context) error {
	return c.client.DeletePattern(ctx, "employee:*")
}

func fromEntity(e *employee.Employee) employeeCacheData {
	data := employeeCacheData{
		ID:          e.ID().String(),
		Code:        e.Code().String(),
		NationalID:  e.NationalID().String(),
		FirstName:   e.FirstName(),
		LastName:    e.LastName(),
		Email:       e.Email(),
		Phone:       e.Phone(),
		Position:    e.Position(),
		Department:  e.Department().String(),
		HireDate:    e.HireDate().Format(time.DateOnly),
		SalaryCents: e.SalaryCents(),
		Status:      e.Status().String(),
		PhotoURL:    e.PhotoURL(),
		CreatedAt:   e.CreatedAt().Format(time.RFC3339Nano),
		CreatedBy:   e.CreatedBy(),
		UpdatedBy:   e.UpdatedBy(),
	}
	if e.UpdatedAt() != nil {
		s := e.UpdatedAt().Format(time.RFC3339Nano)
		data.UpdatedAt = &s
	}
	return data
}

func (d *employeeCacheData) toEntity() (*employee.Employee, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	code, err := employee.NewCode(d.Code)
	if err != nil {
		return nil, err
	}
	nationalID, err := employee.NewNationalID(d.NationalID)
	if err != nil {
		return nil, err
	}
	hireDate, err := time.Parse(time.DateOnly, d.HireDate)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
	if err != nil {
		return nil, err
	}

	var updatedAt *time.Time
	if d.UpdatedAt != nil {
		t, err := time.Parse(time.RFC3339Nano, *d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		updatedAt = &t
	}

	details := employee.Details{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		Position:    d.Position,
		Department:  employee.Department(d.Department),
		HireDate:    hireDate,
		SalaryCents: d.SalaryCents,
	}

	return employee.ReconstructEmployee(
		id, code, nationalID, details, employee.Status(d.Status), d.PhotoURL,
		createdAt, d.CreatedBy, updatedAt, d.UpdatedBy, nil, nil,
	), nil
}
