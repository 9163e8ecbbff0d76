package grpc

import (
	"bytes"
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/response"
)

// EmployeeHandler implements EmployeeServiceServer.
type EmployeeHandler struct {
	createHandler   *app.CreateHandler
	getHandler      *app.GetHandler
	listHandler     *app.ListHandler
	updateHandler   *app.UpdateHandler
	deleteHandler   *app.DeleteHandler
	statusHandler   *app.ChangeStatusHandler
	photoHandler    *app.UploadPhotoHandler
	validateHandler *app.ValidateNationalIDHandler
	summaryHandler  *app.SummaryHandler
	exportHandler   *app.ExportHandler
	importHandler   *app.ImportHandler
	templateHandler *app.TemplateHandler
}

// NewEmployeeHandler creates the employee gRPC handler. storage may be nil,
// in which case photo uploads report the storage as unavailable.
func NewEmployeeHandler(repo employee.Repository, storage app.PhotoStorage, deps app.Deps) *EmployeeHandler {
	return &EmployeeHandler{
		createHandler:   app.NewCreateHandler(repo, deps),
		getHandler:      app.NewGetHandler(repo, deps.Cache),
		listHandler:     app.NewListHandler(repo),
		updateHandler:   app.NewUpdateHandler(repo, deps),
		deleteHandler:   app.NewDeleteHandler(repo, deps),
		statusHandler:   app.NewChangeStatusHandler(repo, deps),
		photoHandler:    app.NewUploadPhotoHandler(repo, storage, deps),
		validateHandler: app.NewValidateNationalIDHandler(repo),
		summaryHandler:  app.NewSummaryHandler(repo),
		exportHandler:   app.NewExportHandler(repo),
		importHandler:   app.NewImportHandler(repo, deps),
		templateHandler: app.NewTemplateHandler(),
	}
}

var _ EmployeeServiceServer = (*EmployeeHandler)(nil)

// CreateEmployee creates a new employee.
func (h *EmployeeHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in createRequest
	if err := decode(req, &in); err != nil {
		return reply("create", response.BadRequest(err.Error()), nil)
	}

	var hireDate time.Time
	if in.HireDate != "" {
		parsed, err := parseDate("hire_date", in.HireDate)
		if err != nil {
			return fail(ctx, "create", err)
		}
		hireDate = parsed
	}

	entity, err := h.createHandler.Handle(ctx, app.CreateCommand{
		EmployeeCode: in.EmployeeCode,
		NationalID:   in.NationalID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		Position:     in.Position,
		Department:   in.Department,
		HireDate:     hireDate,
		SalaryCents:  in.SalaryCents,
		CreatedBy:    auth.UserFromContext(ctx),
	})
	if err != nil {
		return fail(ctx, "create", err)
	}

	return reply("create", response.Created("Employee created successfully"), ToEmployeeData(entity))
}

// GetEmployee retrieves an employee by ID.
func (h *EmployeeHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return reply("get", response.BadRequest(err.Error()), nil)
	}

	entity, err := h.getHandler.Handle(ctx, app.GetQuery{EmployeeID: in.EmployeeID})
	if err != nil {
		return fail(ctx, "get", err)
	}

	return reply("get", response.Success("Employee retrieved successfully"), ToEmployeeData(entity))
}

// ListEmployees lists employees with search, filters and pagination.
func (h *EmployeeHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listRequest
	if err := decode(req, &in); err != nil {
		return reply("list", response.BadRequest(err.Error()), nil)
	}

	result, err := h.listHandler.Handle(ctx, app.ListQuery{
		Page:       in.Page,
		PageSize:   in.PageSize,
		Search:     in.Search,
		Department: emptyToNil(in.Department),
		Status:     emptyToNil(in.Status),
		SortBy:     in.SortBy,
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		return fail(ctx, "list", err)
	}

	return reply("list", response.Success("Employees retrieved successfully"), listData{
		Items: toEmployeeList(result.Employees),
		Pagination: pagination{
			CurrentPage: result.CurrentPage,
			PageSize:    result.PageSize,
			TotalItems:  result.TotalItems,
			TotalPages:  result.TotalPages,
		},
	})
}

// UpdateEmployee updates the mutable fields that are present in the request.
func (h *EmployeeHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in updateRequest
	if err := decode(req, &in); err != nil {
		return reply("update", response.BadRequest(err.Error()), nil)
	}

	cmd := app.UpdateCommand{
		EmployeeID:  in.EmployeeID,
		NationalID:  in.NationalID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		Position:    in.Position,
		Department:  in.Department,
		SalaryCents: in.SalaryCents,
		UpdatedBy:   auth.UserFromContext(ctx),
	}
	if in.HireDate != nil {
		hireDate, err := parseDate("hire_date", *in.HireDate)
		if err != nil {
			return fail(ctx, "update", err)
		}
		cmd.HireDate = &hireDate
	}

	entity, err := h.updateHandler.Handle(ctx, cmd)
	if err != nil {
		return fail(ctx, "update", err)
	}

	return reply("update", response.Success("Employee updated successfully"), ToEmployeeData(entity))
}

// DeleteEmployee soft deletes an employee.
func (h *EmployeeHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return reply("delete", response.BadRequest(err.Error()), nil)
	}

	err := h.deleteHandler.Handle(ctx, app.DeleteCommand{
		EmployeeID: in.EmployeeID,
		DeletedBy:  auth.UserFromContext(ctx),
	})
	if err != nil {
		return fail(ctx, "delete", err)
	}

	return reply("delete", response.Success("Employee deleted successfully"), nil)
}

// ChangeEmployeeStatus moves an employee to a new status.
func (h *EmployeeHandler) ChangeEmployeeStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in statusRequest
	if err := decode(req, &in); err != nil {
		return reply("change_status", response.BadRequest(err.Error()), nil)
	}

	entity, err := h.statusHandler.Handle(ctx, app.ChangeStatusCommand{
		EmployeeID: in.EmployeeID,
		Status:     in.Status,
		UpdatedBy:  auth.UserFromContext(ctx),
	})
	if err != nil {
		return fail(ctx, "change_status", err)
	}

	return reply("change_status", response.Success("Employee status changed successfully"), ToEmployeeData(entity))
}

// UploadEmployeePhoto stores a new photo and links it to the employee.
func (h *EmployeeHandler) UploadEmployeePhoto(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in photoRequest
	if err := decode(req, &in); err != nil {
		return reply("upload_photo", response.BadRequest(err.Error()), nil)
	}
	if len(in.Content) == 0 {
		return fail(ctx, "upload_photo", fieldError{field: "photo", message: "photo is required"})
	}

	entity, err := h.photoHandler.Handle(ctx, app.UploadPhotoCommand{
		EmployeeID:  in.EmployeeID,
		Reader:      bytes.NewReader(in.Content),
		Size:        int64(len(in.Content)),
		ContentType: in.ContentType,
		UpdatedBy:   auth.UserFromContext(ctx),
	})
	if err != nil {
		return fail(ctx, "upload_photo", err)
	}

	return reply("upload_photo", response.Success("Employee photo uploaded successfully"), ToEmployeeData(entity))
}

// ValidateNationalID classifies a partially typed national id. It never
// fails: invalid input is reported in the data.
func (h *EmployeeHandler) ValidateNationalID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in validateRequest
	if err := decode(req, &in); err != nil {
		return reply("validate_national_id", response.BadRequest(err.Error()), nil)
	}

	result := h.validateHandler.Handle(ctx, app.ValidateNationalIDQuery{
		Input:             in.NationalID,
		ExcludeEmployeeID: in.ExcludeEmployeeID,
	})
	RecordCedulaValidation(result.ValidationResult)

	return reply("validate_national_id", response.Success("National id validated"), result)
}

// GetHeadcountSummary returns headcount per department and recent hires.
func (h *EmployeeHandler) GetHeadcountSummary(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.summaryHandler.Handle(ctx)
	if err != nil {
		return fail(ctx, "summary", err)
	}

	return reply("summary", response.Success("Headcount summary retrieved successfully"), toSummaryData(result))
}

// ExportEmployees exports employees to an Excel workbook.
func (h *EmployeeHandler) ExportEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in exportRequest
	if err := decode(req, &in); err != nil {
		return reply("export", response.BadRequest(err.Error()), nil)
	}

	result, err := h.exportHandler.Handle(ctx, app.ExportQuery{
		Departments: in.Departments,
		Statuses:    in.Statuses,
	})
	if err != nil {
		return fail(ctx, "export", err)
	}

	return reply("export", response.Success("Employees exported successfully"), FileData{
		FileName:    result.FileName,
		FileContent: result.FileContent,
	})
}

// ImportEmployees imports employees from an Excel workbook.
func (h *EmployeeHandler) ImportEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in importRequest
	if err := decode(req, &in); err != nil {
		return reply("import", response.BadRequest(err.Error()), nil)
	}
	if len(in.FileContent) == 0 {
		return fail(ctx, "import", fieldError{field: "file_content", message: "file is required"})
	}

	result, err := h.importHandler.Handle(ctx, app.ImportCommand{
		FileContent:     in.FileContent,
		FileName:        in.FileName,
		DuplicateAction: in.DuplicateAction,
		CreatedBy:       auth.UserFromContext(ctx),
	})
	if err != nil {
		return fail(ctx, "import", err)
	}

	return reply("import", response.Success("Import completed"), result)
}

// DownloadTemplate returns the Excel import template.
func (h *EmployeeHandler) DownloadTemplate(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.templateHandler.Handle()
	if err != nil {
		return fail(ctx, "template", err)
	}

	return reply("template", response.Success("Template generated successfully"), FileData{
		FileName:    result.FileName,
		FileContent: result.FileContent,
	})
}

// Helper functions

func reply(operation string, base response.BaseResponse, data any) (*structpb.Struct, error) {
	RecordEmployeeOperation(operation, base.IsSuccess)
	return encode(response.Wrap(base, data))
}

func fail(ctx context.Context, operation string, err error) (*structpb.Struct, error) {
	return reply(operation, domainErrorToBaseResponse(ctx, err), nil)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
