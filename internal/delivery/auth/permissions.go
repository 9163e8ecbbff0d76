package auth

import (
	"context"
	"fmt"
)

// Permission codes, formatted {service}.{module}.{entity}.{action}.
const (
	PermEmployeeView   = "hr.master.employee.view"
	PermEmployeeCreate = "hr.master.employee.create"
	PermEmployeeUpdate = "hr.master.employee.update"
	PermEmployeeDelete = "hr.master.employee.delete"
)

// operationPermissions maps an operation (the RPC method name) to its
// permission. Operations absent from the map need authentication only.
var operationPermissions = map[string]string{
	"CreateEmployee":       PermEmployeeCreate,
	"GetEmployee":          PermEmployeeView,
	"ListEmployees":        PermEmployeeView,
	"UpdateEmployee":       PermEmployeeUpdate,
	"DeleteEmployee":       PermEmployeeDelete,
	"ChangeEmployeeStatus": PermEmployeeUpdate,
	"UploadEmployeePhoto":  PermEmployeeUpdate,
	"GetHeadcountSummary":  PermEmployeeView,
	"ExportEmployees":      PermEmployeeView,
	"ImportEmployees":      PermEmployeeCreate,
	"DownloadTemplate":     PermEmployeeView,
}

// RequiredPermission returns the permission needed for an operation, or "".
func RequiredPermission(operation string) string {
	return operationPermissions[operation]
}

// Authorize checks that the caller may run operation.
func Authorize(ctx context.Context, operation string) error {
	if IsSuperAdmin(ctx) {
		return nil
	}
	required := RequiredPermission(operation)
	if required == "" || HasPermission(ctx, required) {
		return nil
	}
	return fmt.Errorf("%w: requires %s", ErrPermissionDenied, required)
}
