// Package employee_test provides unit tests for application layer handlers.
package employee_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

func validCreateCommand() app.CreateCommand {
	return app.CreateCommand{
		EmployeeCode: "EMP-0001",
		NationalID:   "8av-123-4567",
		FirstName:    "Ana",
		LastName:     "Batista",
		Email:        "ana@example.com",
		Department:   "finance",
		HireDate:     time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		SalaryCents:  180000,
		CreatedBy:    "admin",
	}
}

func TestCreateHandler_Handle(t *testing.T) {
	t.Run("success - creates, audits and publishes", func(t *testing.T) {
		repo := new(MockRepository)
		audit := new(MockAudit)
		events := new(MockPublisher)
		handler := app.NewCreateHandler(repo, app.Deps{Audit: audit, Events: events})
		ctx := context.Background()

		repo.On("ExistsByCode", ctx, mock.AnythingOfType("employee.Code")).Return(false, nil)
		repo.On("ExistsByNationalID", ctx, mock.AnythingOfType("employee.NationalID")).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*employee.Employee")).Return(nil)
		audit.On("LogCreate", ctx, app.TableName, mock.Anything, mock.Anything, "admin").Return(nil)
		events.On("Publish", ctx, mock.MatchedBy(func(e employee.Event) bool {
			return e.Type == employee.EventCreated && e.EmployeeCode == "EMP-0001"
		})).Return(nil)

		result, err := handler.Handle(ctx, validCreateCommand())

		require.NoError(t, err)
		assert.Equal(t, "EMP-0001", result.Code().String())
		assert.Equal(t, "8AV-123-4567", result.NationalID().String())
		assert.Equal(t, employee.DepartmentFinance, result.Department())
		repo.AssertExpectations(t)
		audit.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("success - publisher failure does not fail the request", func(t *testing.T) {
		repo := new(MockRepository)
		events := new(MockPublisher)
		handler := app.NewCreateHandler(repo, app.Deps{Events: events})
		ctx := context.Background()

		repo.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		repo.On("ExistsByNationalID", ctx, mock.Anything).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		events.On("Publish", ctx, mock.Anything).Return(errors.New("broker down"))

		result, err := handler.Handle(ctx, validCreateCommand())

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("error - duplicate code", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewCreateHandler(repo, app.Deps{})
		ctx := context.Background()

		repo.On("ExistsByCode", ctx, mock.Anything).Return(true, nil)

		result, err := handler.Handle(ctx, validCreateCommand())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, employee.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("error - national id already registered", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewCreateHandler(repo, app.Deps{})
		ctx := context.Background()

		repo.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		repo.On("ExistsByNationalID", ctx, mock.Anything).Return(true, nil)

		_, err := handler.Handle(ctx, validCreateCommand())

		assert.ErrorIs(t, err, employee.ErrNationalIDTaken)
	})

	t.Run("error - incomplete national id", func(t *testing.T) {
		handler := app.NewCreateHandler(new(MockRepository), app.Deps{})
		cmd := validCreateCommand()
		cmd.NationalID = "8-123-"

		_, err := handler.Handle(context.Background(), cmd)

		assert.ErrorIs(t, err, employee.ErrIncompleteNationalID)
	})

	t.Run("error - invalid department", func(t *testing.T) {
		handler := app.NewCreateHandler(new(MockRepository), app.Deps{})
		cmd := validCreateCommand()
		cmd.Department = "LEGAL"

		_, err := handler.Handle(context.Background(), cmd)

		assert.ErrorIs(t, err, employee.ErrInvalidDepartment)
	})
}

func TestGetHandler_Handle(t *testing.T) {
	t.Run("invalid id is not found", func(t *testing.T) {
		handler := app.NewGetHandler(new(MockRepository), nil)

		_, err := handler.Handle(context.Background(), app.GetQuery{EmployeeID: "not-a-uuid"})

		assert.ErrorIs(t, err, employee.ErrNotFound)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		handler := app.NewGetHandler(repo, cache)
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")

		cache.On("GetByID", ctx, entity.ID()).Return(entity, nil)

		result, err := handler.Handle(ctx, app.GetQuery{EmployeeID: entity.ID().String()})

		require.NoError(t, err)
		assert.Same(t, entity, result)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss loads and fills cache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		handler := app.NewGetHandler(repo, cache)
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")

		cache.On("GetByID", ctx, entity.ID()).Return(nil, errors.New("miss"))
		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		cache.On("SetByID", ctx, entity).Return(nil)

		result, err := handler.Handle(ctx, app.GetQuery{EmployeeID: entity.ID().String()})

		require.NoError(t, err)
		assert.Equal(t, entity.ID(), result.ID())
		cache.AssertExpectations(t)
	})

	t.Run("not found propagates", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewGetHandler(repo, nil)
		ctx := context.Background()
		id := uuid.New()

		repo.On("GetByID", ctx, id).Return(nil, employee.ErrNotFound)

		_, err := handler.Handle(ctx, app.GetQuery{EmployeeID: id.String()})

		assert.ErrorIs(t, err, employee.ErrNotFound)
	})
}

func TestListHandler_Handle(t *testing.T) {
	t.Run("computes pagination", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewListHandler(repo)
		ctx := context.Background()
		dept := "sales"

		repo.On("List", ctx, mock.MatchedBy(func(f employee.ListFilter) bool {
			return f.Page == 2 && f.PageSize == 10 && f.Department != nil && *f.Department == employee.DepartmentSales
		})).Return([]*employee.Employee{mustEmployee("EMP-1", "8-1-1")}, int64(25), nil)

		result, err := handler.Handle(ctx, app.ListQuery{Page: 2, PageSize: 10, Department: &dept})

		require.NoError(t, err)
		assert.Len(t, result.Employees, 1)
		assert.Equal(t, int64(25), result.TotalItems)
		assert.Equal(t, int32(3), result.TotalPages)
		assert.Equal(t, int32(2), result.CurrentPage)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		handler := app.NewListHandler(new(MockRepository))
		status := "RETIRED"

		_, err := handler.Handle(context.Background(), app.ListQuery{Status: &status})

		assert.ErrorIs(t, err, employee.ErrInvalidStatus)
	})
}

func TestUpdateHandler_Handle(t *testing.T) {
	t.Run("success - invalidates cache and audits diff", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		audit := new(MockAudit)
		handler := app.NewUpdateHandler(repo, app.Deps{Cache: cache, Audit: audit})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")
		position := "Controller"
		nationalID := "pe-2-2"

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		repo.On("ExistsByNationalID", ctx, mock.AnythingOfType("employee.NationalID")).Return(false, nil)
		repo.On("Update", ctx, entity).Return(nil)
		cache.On("InvalidateByID", ctx, entity.ID()).Return(nil)
		audit.On("LogUpdate", ctx, app.TableName, entity.ID(),
			mock.MatchedBy(func(old app.EmployeeSnapshot) bool { return old.Position == "Accountant" && old.NationalID == "8-1-1" }),
			mock.MatchedBy(func(cur app.EmployeeSnapshot) bool { return cur.Position == "Controller" && cur.NationalID == "PE-2-2" }),
			"manager").Return(nil)

		result, err := handler.Handle(ctx, app.UpdateCommand{
			EmployeeID: entity.ID().String(),
			Position:   &position,
			NationalID: &nationalID,
			UpdatedBy:  "manager",
		})

		require.NoError(t, err)
		assert.Equal(t, "Controller", result.Position())
		cache.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("unchanged national id skips uniqueness check", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewUpdateHandler(repo, app.Deps{})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")
		same := "8-1-1"

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		repo.On("Update", ctx, entity).Return(nil)

		_, err := handler.Handle(ctx, app.UpdateCommand{EmployeeID: entity.ID().String(), NationalID: &same, UpdatedBy: "m"})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "ExistsByNationalID", mock.Anything, mock.Anything)
	})

	t.Run("error - national id taken", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewUpdateHandler(repo, app.Deps{})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")
		other := "8-2-2"

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		repo.On("ExistsByNationalID", ctx, mock.Anything).Return(true, nil)

		_, err := handler.Handle(ctx, app.UpdateCommand{EmployeeID: entity.ID().String(), NationalID: &other, UpdatedBy: "m"})

		assert.ErrorIs(t, err, employee.ErrNationalIDTaken)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDeleteHandler_Handle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		events := new(MockPublisher)
		handler := app.NewDeleteHandler(repo, app.Deps{Events: events})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		repo.On("SoftDelete", ctx, entity.ID(), "admin").Return(nil)
		events.On("Publish", ctx, mock.MatchedBy(func(e employee.Event) bool { return e.Type == employee.EventDeleted })).Return(nil)

		err := handler.Handle(ctx, app.DeleteCommand{EmployeeID: entity.ID().String(), DeletedBy: "admin"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewDeleteHandler(repo, app.Deps{})
		ctx := context.Background()
		id := uuid.New()

		repo.On("GetByID", ctx, id).Return(nil, employee.ErrNotFound)

		err := handler.Handle(ctx, app.DeleteCommand{EmployeeID: id.String(), DeletedBy: "admin"})

		assert.ErrorIs(t, err, employee.ErrNotFound)
		repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChangeStatusHandler_Handle(t *testing.T) {
	t.Run("success publishes status change", func(t *testing.T) {
		repo := new(MockRepository)
		events := new(MockPublisher)
		handler := app.NewChangeStatusHandler(repo, app.Deps{Events: events})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		repo.On("Update", ctx, entity).Return(nil)
		events.On("Publish", ctx, mock.MatchedBy(func(e employee.Event) bool {
			return e.Type == employee.EventStatusChanged && e.Status == "ON_LEAVE"
		})).Return(nil)

		result, err := handler.Handle(ctx, app.ChangeStatusCommand{EmployeeID: entity.ID().String(), Status: "on_leave", UpdatedBy: "hr"})

		require.NoError(t, err)
		assert.Equal(t, employee.StatusOnLeave, result.Status())
		events.AssertExpectations(t)
	})

	t.Run("terminated is terminal", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewChangeStatusHandler(repo, app.Deps{})
		ctx := context.Background()
		entity := mustEmployee("EMP-1", "8-1-1")
		require.NoError(t, entity.ChangeStatus(employee.StatusTerminated, "hr"))

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)

		_, err := handler.Handle(ctx, app.ChangeStatusCommand{EmployeeID: entity.ID().String(), Status: "ACTIVE", UpdatedBy: "hr"})

		assert.ErrorIs(t, err, employee.ErrInvalidStatusTransition)
	})
}

func TestValidateNationalIDHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("in progress input is valid and incomplete", func(t *testing.T) {
		repo := new(MockRepository)
		handler := app.NewValidateNationalIDHandler(repo)

		result := handler.Handle(ctx, app.ValidateNationalIDQuery{Input: "8-12-"})

		assert.True(t, result.IsValid)
		assert.False(t, result.IsComplete)
		assert.False(t, result.AlreadyRegistered)
		repo.AssertNotCalled(t, "GetByNationalID", mock.Anything, mock.Anything)
	})

	t.Run("invalid input", func(t *testing.T) {
		result := app.NewValidateNationalIDHandler(nil).Handle(ctx, app.ValidateNationalIDQuery{Input: "8-ABC"})

		assert.False(t, result.IsValid)
		assert.Equal(t, "8-ABC", result.Input)
	})

	t.Run("complete and registered", func(t *testing.T) {
		repo := new(MockRepository)
		holder := mustEmployee("EMP-9", "8-1-1")
		repo.On("GetByNationalID", ctx, mock.AnythingOfType("employee.NationalID")).Return(holder, nil)

		result := app.NewValidateNationalIDHandler(repo).Handle(ctx, app.ValidateNationalIDQuery{Input: "8-1-1"})

		assert.True(t, result.IsComplete)
		assert.Equal(t, []string{"8", "", "1", "1"}, result.Parts)
		assert.Equal(t, "8-1-1", result.Canonical)
		assert.True(t, result.AlreadyRegistered)
	})

	t.Run("holder excluded when editing", func(t *testing.T) {
		repo := new(MockRepository)
		holder := mustEmployee("EMP-9", "8-1-1")
		repo.On("GetByNationalID", ctx, mock.Anything).Return(holder, nil)

		result := app.NewValidateNationalIDHandler(repo).Handle(ctx, app.ValidateNationalIDQuery{
			Input:             "8-1-1",
			ExcludeEmployeeID: holder.ID().String(),
		})

		assert.False(t, result.AlreadyRegistered)
	})

	t.Run("lookup failure is not an error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByNationalID", ctx, mock.Anything).Return(nil, errors.New("db down"))

		result := app.NewValidateNationalIDHandler(repo).Handle(ctx, app.ValidateNationalIDQuery{Input: "pe-1-1"})

		assert.True(t, result.IsComplete)
		assert.Equal(t, "PE-1-1", result.Canonical)
		assert.False(t, result.AlreadyRegistered)
	})
}

func TestSummaryHandler_Handle(t *testing.T) {
	repo := new(MockRepository)
	handler := app.NewSummaryHandler(repo)
	ctx := context.Background()

	repo.On("HeadcountByDepartment", mock.Anything).Return([]employee.DepartmentHeadcount{
		{Department: employee.DepartmentFinance, Active: 4, OnLeave: 1},
		{Department: employee.DepartmentTechnology, Active: 10, Terminated: 2},
	}, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f employee.ListFilter) bool {
		return f.SortBy == employee.SortByHireDate && f.SortOrder == "desc"
	})).Return([]*employee.Employee{mustEmployee("EMP-1", "8-1-1")}, int64(17), nil)

	result, err := handler.Handle(ctx)

	require.NoError(t, err)
	assert.Len(t, result.Departments, len(employee.AllDepartments()))
	assert.Equal(t, employee.DepartmentAdministration, result.Departments[0].Department)
	assert.Equal(t, int64(14), result.TotalActive)
	assert.Equal(t, int64(1), result.TotalOnLeave)
	assert.Equal(t, int64(2), result.TotalTerminated)
	assert.Equal(t, int64(17), result.TotalEmployees)
	assert.Len(t, result.RecentHires, 1)
}

func TestSummaryHandler_Error(t *testing.T) {
	repo := new(MockRepository)
	repo.On("HeadcountByDepartment", mock.Anything).Return([]employee.DepartmentHeadcount(nil), errors.New("boom"))
	repo.On("List", mock.Anything, mock.Anything).Return([]*employee.Employee{}, int64(0), nil)

	_, err := app.NewSummaryHandler(repo).Handle(context.Background())

	assert.ErrorContains(t, err, "failed to load headcount")
}

func TestTemplateAndImport_RoundTrip(t *testing.T) {
	tmpl, err := app.NewTemplateHandler().Handle()
	require.NoError(t, err)
	assert.Equal(t, "employee_import_template.xlsx", tmpl.FileName)

	repo := new(MockRepository)
	handler := app.NewImportHandler(repo, app.Deps{})
	ctx := context.Background()

	repo.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
	repo.On("ExistsByNationalID", ctx, mock.Anything).Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*employee.Employee")).Return(nil)

	result, err := handler.Handle(ctx, app.ImportCommand{
		FileContent:     tmpl.FileContent,
		FileName:        tmpl.FileName,
		DuplicateAction: app.DuplicateSkip,
		CreatedBy:       "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), result.SuccessCount)
	assert.Zero(t, result.FailedCount)
	repo.AssertNumberOfCalls(t, "Create", 3)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestImportHandler_Handle(t *testing.T) {
	header := []interface{}{"Employee Code", "National ID", "First Name", "Last Name", "Email", "Phone", "Position", "Department", "Hire Date", "Monthly Salary"}

	t.Run("rejects non xlsx", func(t *testing.T) {
		_, err := app.NewImportHandler(new(MockRepository), app.Deps{}).Handle(context.Background(), app.ImportCommand{FileName: "x.csv"})
		assert.ErrorIs(t, err, app.ErrUnsupportedFileFormat)
	})

	t.Run("collects row errors", func(t *testing.T) {
		content := buildWorkbook(t, [][]interface{}{
			header,
			{"EMP-1", "8-1-", "Ana", "B", "", "", "", "FINANCE", "2023-01-01", "100"},
			{"EMP-2", "8-1-1", "Ana", "B", "", "", "", "LEGAL", "2023-01-01", "100"},
			{"EMP-3", "8-1-2", "Ana", "B", "", "", "", "SALES", "yesterday", "100"},
			{"EMP-4", "8-1-3", "Ana", "B", "", "", "", "SALES", "2023-01-01", "lots"},
		})

		result, err := app.NewImportHandler(new(MockRepository), app.Deps{}).Handle(context.Background(), app.ImportCommand{
			FileContent: content, FileName: "employees.xlsx", CreatedBy: "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, int32(4), result.FailedCount)
		require.Len(t, result.Errors, 4)
		assert.Equal(t, "national_id", result.Errors[0].Field)
		assert.Equal(t, int32(2), result.Errors[0].RowNumber)
		assert.Equal(t, "department", result.Errors[1].Field)
		assert.Equal(t, "hire_date", result.Errors[2].Field)
		assert.Equal(t, "salary", result.Errors[3].Field)
	})

	t.Run("duplicate actions", func(t *testing.T) {
		content := buildWorkbook(t, [][]interface{}{
			header,
			{"EMP-1", "8-1-1", "Ana", "Batista", "", "", "Lead", "FINANCE", "2023-01-01", "2,000.50"},
		})

		for _, tc := range []struct {
			action  string
			skipped int32
			failed  int32
			updated int32
		}{
			{app.DuplicateSkip, 1, 0, 0},
			{app.DuplicateError, 0, 1, 0},
			{app.DuplicateUpdate, 0, 0, 1},
		} {
			t.Run(tc.action, func(t *testing.T) {
				repo := new(MockRepository)
				ctx := context.Background()
				existing := mustEmployee("EMP-1", "8-1-1")

				repo.On("ExistsByCode", ctx, mock.Anything).Return(true, nil)
				repo.On("GetByCode", ctx, mock.Anything).Return(existing, nil)
				repo.On("Update", ctx, existing).Return(nil)

				result, err := app.NewImportHandler(repo, app.Deps{}).Handle(ctx, app.ImportCommand{
					FileContent: content, FileName: "employees.xlsx", DuplicateAction: tc.action, CreatedBy: "admin",
				})

				require.NoError(t, err)
				assert.Equal(t, tc.skipped, result.SkippedCount)
				assert.Equal(t, tc.failed, result.FailedCount)
				assert.Equal(t, tc.updated, result.UpdatedCount)
				if tc.updated == 1 {
					assert.Equal(t, "Lead", existing.Position())
					assert.Equal(t, int64(200050), existing.SalaryCents())
				}
			})
		}
	})

	t.Run("national id held by another employee", func(t *testing.T) {
		content := buildWorkbook(t, [][]interface{}{
			header,
			{"EMP-7", "8-1-1", "Ana", "Batista", "", "", "", "FINANCE", "2023-01-01", "10"},
		})
		repo := new(MockRepository)
		ctx := context.Background()
		repo.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		repo.On("ExistsByNationalID", ctx, mock.Anything).Return(true, nil)

		result, err := app.NewImportHandler(repo, app.Deps{}).Handle(ctx, app.ImportCommand{
			FileContent: content, FileName: "employees.xlsx", CreatedBy: "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, int32(1), result.FailedCount)
		assert.Equal(t, "national_id", result.Errors[0].Field)
	})
}

func TestExportHandler_Handle(t *testing.T) {
	repo := new(MockRepository)
	handler := app.NewExportHandler(repo)
	ctx := context.Background()
	entity := mustEmployee("EMP-1", "8av-1-1")

	repo.On("ListAll", ctx, mock.MatchedBy(func(f employee.ExportFilter) bool {
		return len(f.Statuses) == 1 && f.Statuses[0] == employee.StatusActive
	})).Return([]*employee.Employee{entity}, nil)

	result, err := handler.Handle(ctx, app.ExportQuery{Statuses: []string{"active"}})
	require.NoError(t, err)
	assert.Contains(t, result.FileName, "employees_")

	f, err := excelize.OpenReader(bytes.NewReader(result.FileContent))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Employees")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "No", rows[0][0])
	assert.Equal(t, "EMP-1", rows[1][1])
	assert.Equal(t, "8AV-1-1", rows[1][2])
	assert.Equal(t, "FINANCE", rows[1][8])
}

func TestExportHandler_InvalidFilter(t *testing.T) {
	_, err := app.NewExportHandler(new(MockRepository)).Handle(context.Background(), app.ExportQuery{Departments: []string{"LEGAL"}})
	assert.ErrorIs(t, err, employee.ErrInvalidDepartment)
}

func TestUploadPhotoHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects oversize", func(t *testing.T) {
		handler := app.NewUploadPhotoHandler(new(MockRepository), new(MockStorage), app.Deps{})
		_, err := handler.Handle(ctx, app.UploadPhotoCommand{Size: app.MaxPhotoSize + 1, ContentType: "image/png"})
		assert.ErrorIs(t, err, app.ErrPhotoTooLarge)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		handler := app.NewUploadPhotoHandler(new(MockRepository), new(MockStorage), app.Deps{})
		_, err := handler.Handle(ctx, app.UploadPhotoCommand{Size: 10, ContentType: "application/pdf"})
		assert.ErrorIs(t, err, app.ErrUnsupportedPhotoType)
	})

	t.Run("no storage configured", func(t *testing.T) {
		handler := app.NewUploadPhotoHandler(new(MockRepository), nil, app.Deps{})
		_, err := handler.Handle(ctx, app.UploadPhotoCommand{Size: 10, ContentType: "image/png"})
		assert.ErrorIs(t, err, app.ErrStorageUnavailable)
	})

	t.Run("replaces previous photo", func(t *testing.T) {
		repo := new(MockRepository)
		storage := new(MockStorage)
		handler := app.NewUploadPhotoHandler(repo, storage, app.Deps{})
		entity := mustEmployee("EMP-1", "8-1-1")
		_, err := entity.SetPhoto("http://minio/photos/old.png", "hr")
		require.NoError(t, err)
		reader := bytes.NewReader([]byte("png"))

		repo.On("GetByID", ctx, entity.ID()).Return(entity, nil)
		storage.On("UploadPhoto", ctx, entity.ID(), reader, int64(3), "image/png").Return("http://minio/photos/new.png", nil)
		repo.On("Update", ctx, entity).Return(nil)
		storage.On("DeletePhoto", ctx, "http://minio/photos/old.png").Return(nil)

		result, err := handler.Handle(ctx, app.UploadPhotoCommand{
			EmployeeID:  entity.ID().String(),
			Reader:      reader,
			Size:        3,
			ContentType: "image/png; charset=binary",
			UpdatedBy:   "hr",
		})

		require.NoError(t, err)
		assert.Equal(t, "http://minio/photos/new.png", result.PhotoURL())
		storage.AssertExpectations(t)
	})
}
