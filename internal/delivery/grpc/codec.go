package grpc

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/response"
)

// decode copies a Struct message into a typed request.
func decode(in *structpb.Struct, out any) error {
	if in == nil {
		return nil
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	return nil
}

// encode renders an envelope as a Struct message.
func encode(envelope response.Envelope) (*structpb.Struct, error) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}

// BaseFromStruct reads the base block of a response message.
func BaseFromStruct(msg *structpb.Struct) (response.BaseResponse, error) {
	var envelope struct {
		Base response.BaseResponse `json:"base"`
	}
	if err := decode(msg, &envelope); err != nil {
		return response.BaseResponse{}, err
	}
	return envelope.Base, nil
}

// =============================================================================
// Requests
// =============================================================================

type createRequest struct {
	EmployeeCode string `json:"employee_code"`
	NationalID   string `json:"national_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Department   string `json:"department"`
	HireDate     string `json:"hire_date"`
	SalaryCents  int64  `json:"salary_cents"`
}

type idRequest struct {
	EmployeeID string `json:"employee_id"`
}

type listRequest struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Search     string  `json:"search"`
	Department *string `json:"department"`
	Status     *string `json:"status"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type updateRequest struct {
	EmployeeID  string  `json:"employee_id"`
	NationalID  *string `json:"national_id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Position    *string `json:"position"`
	Department  *string `json:"department"`
	HireDate    *string `json:"hire_date"`
	SalaryCents *int64  `json:"salary_cents"`
}

type statusRequest struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
}

type photoRequest struct {
	EmployeeID  string `json:"employee_id"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

type validateRequest struct {
	NationalID        string `json:"national_id"`
	ExcludeEmployeeID string `json:"exclude_employee_id"`
}

type exportRequest struct {
	Departments []string `json:"departments"`
	Statuses    []string `json:"statuses"`
}

type importRequest struct {
	FileName        string `json:"file_name"`
	FileContent     []byte `json:"file_content"`
	DuplicateAction string `json:"duplicate_action"`
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fieldError{field: field, message: "must be a date in YYYY-MM-DD format"}
}

// =============================================================================
// Responses
// =============================================================================

// EmployeeData is the wire form of an employee.
type EmployeeData struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeCode string     `json:"employee_code"`
	NationalID   string     `json:"national_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Position     string     `json:"position"`
	Department   string     `json:"department"`
	HireDate     string     `json:"hire_date"`
	SalaryCents  int64      `json:"salary_cents"`
	Status       string     `json:"status"`
	PhotoURL     string     `json:"photo_url"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    string     `json:"created_by"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	UpdatedBy    *string    `json:"updated_by,omitempty"`
}

// ToEmployeeData converts a domain employee to its wire form.
func ToEmployeeData(e *employee.Employee) EmployeeData {
	return EmployeeData{
		EmployeeID:   e.ID().String(),
		EmployeeCode: e.Code().String(),
		NationalID:   e.NationalID().String(),
		FirstName:    e.FirstName(),
		LastName:     e.LastName(),
		FullName:     e.FullName(),
		Email:        e.Email(),
		Phone:        e.Phone(),
		Position:     e.Position(),
		Department:   e.Department().String(),
		HireDate:     e.HireDate().Format(time.DateOnly),
		SalaryCents:  e.SalaryCents(),
		Status:       e.Status().String(),
		PhotoURL:     e.PhotoURL(),
		CreatedAt:    e.CreatedAt(),
		CreatedBy:    e.CreatedBy(),
		UpdatedAt:    e.UpdatedAt(),
		UpdatedBy:    e.UpdatedBy(),
	}
}

func toEmployeeList(items []*employee.Employee) []EmployeeData {
	out := make([]EmployeeData, 0, len(items))
	for _, e := range items {
		out = append(out, ToEmployeeData(e))
	}
	return out
}

type pagination struct {
	CurrentPage int32 `json:"current_page"`
	PageSize    int32 `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int32 `json:"total_pages"`
}

type listData struct {
	Items      []EmployeeData `json:"items"`
	Pagination pagination     `json:"pagination"`
}

type headcountData struct {
	Department string `json:"department"`
	Active     int64  `json:"active"`
	OnLeave    int64  `json:"on_leave"`
	Terminated int64  `json:"terminated"`
	Total      int64  `json:"total"`
}

type summaryData struct {
	Departments     []headcountData `json:"departments"`
	TotalActive     int64           `json:"total_active"`
	TotalOnLeave    int64           `json:"total_on_leave"`
	TotalTerminated int64           `json:"total_terminated"`
	TotalEmployees  int64           `json:"total_employees"`
	RecentHires     []EmployeeData  `json:"recent_hires"`
}

func toSummaryData(r *app.SummaryResult) summaryData {
	rows := make([]headcountData, 0, len(r.Departments))
	for _, d := range r.Departments {
		rows = append(rows, headcountData{
			Department: d.Department.String(),
			Active:     d.Active,
			OnLeave:    d.OnLeave,
			Terminated: d.Terminated,
			Total:      d.Total(),
		})
	}
	return summaryData{
		Departments:     rows,
		TotalActive:     r.TotalActive,
		TotalOnLeave:    r.TotalOnLeave,
		TotalTerminated: r.TotalTerminated,
		TotalEmployees:  r.TotalEmployees,
		RecentHires:     toEmployeeList(r.RecentHires),
	}
}

// FileData carries a generated workbook; FileContent is base64 on the wire.
type FileData struct {
	FileName    string `json:"file_name"`
	FileContent []byte `json:"file_content"`
}
