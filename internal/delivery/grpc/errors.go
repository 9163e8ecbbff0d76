package grpc

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
	"github.com/mutugading/goapps-backend/services/hr/pkg/response"
)

// fieldError is a request problem tied to one field.
type fieldError struct {
	field   string
	message string
}

func (e fieldError) Error() string { return e.field + ": " + e.message }

// fieldErrors maps domain validation errors to the request field they concern.
var fieldErrors = map[error]string{
	employee.ErrEmptyCode:            "employee_code",
	employee.ErrCodeTooLong:          "employee_code",
	employee.ErrInvalidCodeFormat:    "employee_code",
	employee.ErrEmptyNationalID:      "national_id",
	employee.ErrIncompleteNationalID: "national_id",
	employee.ErrInvalidNationalID:    "national_id",
	employee.ErrEmptyFirstName:       "first_name",
	employee.ErrEmptyLastName:        "last_name",
	employee.ErrNameTooLong:          "name",
	employee.ErrInvalidEmail:         "email",
	employee.ErrInvalidDepartment:    "department",
	employee.ErrInvalidStatus:        "status",
	employee.ErrNegativeSalary:       "salary_cents",
	employee.ErrEmptyHireDate:        "hire_date",
	employee.ErrHireDateInFuture:     "hire_date",
}

// domainErrorToBaseResponse converts an application error to a BaseResponse.
func domainErrorToBaseResponse(ctx context.Context, err error) response.BaseResponse {
	var fe fieldError
	if errors.As(err, &fe) {
		return response.ValidationFailed([]response.ValidationError{{Field: fe.field, Message: fe.message}})
	}
	for sentinel, field := range fieldErrors {
		if errors.Is(err, sentinel) {
			return response.ValidationFailed([]response.ValidationError{{Field: field, Message: sentinel.Error()}})
		}
	}

	switch {
	case errors.Is(err, employee.ErrNotFound):
		return response.NotFound(err.Error())
	case errors.Is(err, employee.ErrAlreadyExists),
		errors.Is(err, employee.ErrNationalIDTaken),
		errors.Is(err, employee.ErrInvalidStatusTransition),
		errors.Is(err, employee.ErrAlreadyDeleted):
		return response.Conflict(err.Error())
	case errors.Is(err, app.ErrUnsupportedFileFormat),
		errors.Is(err, app.ErrTooManyRows),
		errors.Is(err, app.ErrPhotoTooLarge),
		errors.Is(err, app.ErrUnsupportedPhotoType):
		return response.BadRequest(err.Error())
	case errors.Is(err, app.ErrStorageUnavailable):
		return response.ServiceUnavailable(err.Error())
	case errors.Is(err, auth.ErrPermissionDenied):
		return response.Forbidden(err.Error())
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrNotAccessToken),
		errors.Is(err, auth.ErrTokenRevoked):
		return response.Unauthorized(err.Error())
	}

	logger.FromContext(ctx).Error().Err(err).Msg("Unhandled error in employee service")
	return response.InternalError("internal server error")
}

// StructuredErrorInterceptor is the outermost interceptor. It turns status
// errors raised by inner interceptors into a {base} response so gRPC and
// HTTP clients always receive the same envelope.
func StructuredErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := req.(*structpb.Struct); !ok {
			return nil, err
		}

		st := status.Convert(err)
		base := response.BaseResponse{
			StatusCode: strconv.Itoa(grpcCodeToHTTPStatus(st.Code())),
			Message:    st.Message(),
		}
		structured, encErr := encode(response.Wrap(base, nil))
		if encErr != nil {
			return nil, err
		}
		return structured, nil
	}
}

// grpcCodeToHTTPStatus maps gRPC status codes to HTTP status codes.
func grpcCodeToHTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return 200
	case codes.InvalidArgument:
		return 400
	case codes.Unauthenticated:
		return 401
	case codes.PermissionDenied:
		return 403
	case codes.NotFound:
		return 404
	case codes.AlreadyExists:
		return 409
	case codes.ResourceExhausted:
		return 429
	case codes.FailedPrecondition:
		return 412
	case codes.Unimplemented:
		return 501
	case codes.Unavailable:
		return 503
	case codes.DeadlineExceeded:
		return 504
	default:
		return 500
	}
}
