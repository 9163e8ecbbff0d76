// Package grpc provides the gRPC server for the HR service.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeServiceName is the fully qualified gRPC service name.
const EmployeeServiceName = "hr.v1.EmployeeService"

// Employee service methods.
const (
	MethodCreateEmployee       = "CreateEmployee"
	MethodGetEmployee          = "GetEmployee"
	MethodListEmployees        = "ListEmployees"
	MethodUpdateEmployee       = "UpdateEmployee"
	MethodDeleteEmployee       = "DeleteEmployee"
	MethodChangeEmployeeStatus = "ChangeEmployeeStatus"
	MethodUploadEmployeePhoto  = "UploadEmployeePhoto"
	MethodValidateNationalID   = "ValidateNationalID"
	MethodGetHeadcountSummary  = "GetHeadcountSummary"
	MethodExportEmployees      = "ExportEmployees"
	MethodImportEmployees      = "ImportEmployees"
	MethodDownloadTemplate     = "DownloadTemplate"
)

// FullMethod returns "/hr.v1.EmployeeService/{method}".
func FullMethod(method string) string {
	return "/" + EmployeeServiceName + "/" + method
}

// EmployeeServiceServer is the server API for the employee service.
// Every request and response is a Struct; responses carry "base" and "data".
type EmployeeServiceServer interface {
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeEmployeeStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UploadEmployeePhoto(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateNationalID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHeadcountSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DownloadTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EmployeeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(EmployeeServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EmployeeServiceDesc describes the employee service for grpc.Server.RegisterService.
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodCreateEmployee, EmployeeServiceServer.CreateEmployee),
		unaryHandler(MethodGetEmployee, EmployeeServiceServer.GetEmployee),
		unaryHandler(MethodListEmployees, EmployeeServiceServer.ListEmployees),
		unaryHandler(MethodUpdateEmployee, EmployeeServiceServer.UpdateEmployee),
		unaryHandler(MethodDeleteEmployee, EmployeeServiceServer.DeleteEmployee),
		unaryHandler(MethodChangeEmployeeStatus, EmployeeServiceServer.ChangeEmployeeStatus),
		unaryHandler(MethodUploadEmployeePhoto, EmployeeServiceServer.UploadEmployeePhoto),
		unaryHandler(MethodValidateNationalID, EmployeeServiceServer.ValidateNationalID),
		unaryHandler(MethodGetHeadcountSummary, EmployeeServiceServer.GetHeadcountSummary),
		unaryHandler(MethodExportEmployees, EmployeeServiceServer.ExportEmployees),
		unaryHandler(MethodImportEmployees, EmployeeServiceServer.ImportEmployees),
		unaryHandler(MethodDownloadTemplate, EmployeeServiceServer.DownloadTemplate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hr/v1/employee.proto",
}

// RegisterEmployeeServiceServer registers srv on s.
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// EmployeeServiceClient calls the employee service over any client connection.
type EmployeeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewEmployeeServiceClient creates a client on cc.
func NewEmployeeServiceClient(cc grpc.ClientConnInterface) *EmployeeServiceClient {
	return &EmployeeServiceClient{cc: cc}
}

// Call invokes method with in and returns the response message.
func (c *EmployeeServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
