package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	hrgrpc "github.com/mutugading/goapps-backend/services/hr/internal/delivery/grpc"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
	"github.com/mutugading/goapps-backend/services/hr/pkg/response"
)

const (
	apiPrefix = "/api/v1"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxJSONBody   = 1 << 20
	maxImportBody = 16 << 20
)

// Reserved segments under /employees that are not employee ids.
const (
	segmentSummary  = "summary"
	segmentExport   = "export"
	segmentTemplate = "template"
)

func (s *Server) registerRoutes(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodPost, apiPrefix + "/employees", s.createEmployee},
		{http.MethodGet, apiPrefix + "/employees", s.listEmployees},
		{http.MethodGet, apiPrefix + "/employees/{id}", s.getEmployee},
		{http.MethodPut, apiPrefix + "/employees/{id}", s.updateEmployee},
		{http.MethodDelete, apiPrefix + "/employees/{id}", s.deleteEmployee},
		{http.MethodPatch, apiPrefix + "/employees/{id}/status", s.changeStatus},
		{http.MethodPut, apiPrefix + "/employees/{id}/photo", s.uploadPhoto},
		{http.MethodPost, apiPrefix + "/employees/import", s.importEmployees},
		{http.MethodPost, apiPrefix + "/national-ids/validate", s.validateNationalID},
	}

	for _, route := range routes {
		if err := mux.HandlePath(route.method, route.pattern, route.handler); err != nil {
			return fmt.Errorf("%s %s: %w", route.method, route.pattern, err)
		}
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, ok := readJSONBody(w, r)
	if !ok {
		return
	}
	s.forward(w, r, hrgrpc.MethodCreateEmployee, in)
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	in := map[string]any{}
	for _, key := range []string{"search", "department", "status", "sort_by", "sort_order"} {
		if v := q.Get(key); v != "" {
			in[key] = v
		}
	}
	for _, key := range []string{"page", "page_size"} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeEnvelope(w, response.Wrap(response.ValidationFailed([]response.ValidationError{
					{Field: key, Message: "must be a number"},
				}), nil))
				return
			}
			in[key] = n
		}
	}
	s.forwardMap(w, r, hrgrpc.MethodListEmployees, in)
}

// getEmployee also serves the reserved collection paths, so their routing
// does not depend on registration order.
func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	switch params["id"] {
	case segmentSummary:
		s.forwardMap(w, r, hrgrpc.MethodGetHeadcountSummary, nil)
	case segmentExport:
		q := r.URL.Query()
		s.forwardFile(w, r, hrgrpc.MethodExportEmployees, map[string]any{
			"departments": toAnyList(listParam(q["department"])),
			"statuses":    toAnyList(listParam(q["status"])),
		})
	case segmentTemplate:
		s.forwardFile(w, r, hrgrpc.MethodDownloadTemplate, nil)
	default:
		s.forwardMap(w, r, hrgrpc.MethodGetEmployee, map[string]any{"employee_id": params["id"]})
	}
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	in, ok := readJSONBody(w, r)
	if !ok {
		return
	}
	in.Fields["employee_id"] = structpb.NewStringValue(params["id"])
	s.forward(w, r, hrgrpc.MethodUpdateEmployee, in)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.forwardMap(w, r, hrgrpc.MethodDeleteEmployee, map[string]any{"employee_id": params["id"]})
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	in, ok := readJSONBody(w, r)
	if !ok {
		return
	}
	in.Fields["employee_id"] = structpb.NewStringValue(params["id"])
	s.forward(w, r, hrgrpc.MethodChangeEmployeeStatus, in)
}

func (s *Server) uploadPhoto(w http.ResponseWriter, r *http.Request, params map[string]string) {
	content, header, ok := readMultipartFile(w, r, "photo", app.MaxPhotoSize)
	if !ok {
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	s.forwardMap(w, r, hrgrpc.MethodUploadEmployeePhoto, map[string]any{
		"employee_id":  params["id"],
		"content_type": contentType,
		"content":      content,
	})
}

func (s *Server) importEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	content, header, ok := readMultipartFile(w, r, "file", maxImportBody)
	if !ok {
		return
	}

	fileName := header.Filename
	if fileName == "" {
		fileName = "import.xlsx"
	}

	s.forwardMap(w, r, hrgrpc.MethodImportEmployees, map[string]any{
		"file_name":        fileName,
		"file_content":     content,
		"duplicate_action": r.FormValue("duplicate_action"),
	})
}

func (s *Server) validateNationalID(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, ok := readJSONBody(w, r)
	if !ok {
		return
	}
	s.forward(w, r, hrgrpc.MethodValidateNationalID, in)
}

// =============================================================================
// gRPC forwarding
// =============================================================================

func (s *Server) forwardMap(w http.ResponseWriter, r *http.Request, method string, in map[string]any) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest(err.Error()), nil))
		return
	}
	s.forward(w, r, method, req)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, method string, in *structpb.Struct) {
	out, ok := s.invoke(w, r, method, in)
	if !ok {
		return
	}
	writeStruct(w, out)
}

// forwardFile writes the workbook on success and the JSON envelope otherwise.
func (s *Server) forwardFile(w http.ResponseWriter, r *http.Request, method string, in map[string]any) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest(err.Error()), nil))
		return
	}

	out, ok := s.invoke(w, r, method, req)
	if !ok {
		return
	}

	var envelope struct {
		Base response.BaseResponse `json:"base"`
		Data *hrgrpc.FileData      `json:"data"`
	}
	raw, err := protojson.Marshal(out)
	if err == nil {
		err = json.Unmarshal(raw, &envelope)
	}
	if err != nil || !envelope.Base.IsSuccess || envelope.Data == nil {
		writeStruct(w, out)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": envelope.Data.FileName,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(envelope.Data.FileContent)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(envelope.Data.FileContent)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request, method string, in *structpb.Struct) (*structpb.Struct, bool) {
	ctx := outgoingContext(r)
	out, err := s.client.Call(ctx, method, in)
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("method", method).Msg("Failed to call employee service")
		writeEnvelope(w, response.Wrap(response.ServiceUnavailable("employee service unavailable"), nil))
		return nil, false
	}
	return out, true
}

// outgoingContext carries the caller identity, request id and trace context to gRPC.
func outgoingContext(r *http.Request) context.Context {
	ctx := r.Context()
	md := metadata.MD{}

	if v := r.Header.Get("Authorization"); v != "" {
		md.Set(hrgrpc.MetadataAuthorization, v)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		md.Set(hrgrpc.MetadataRequestID, id)
	}
	md.Set(hrgrpc.MetadataForwardedFor, clientIP(r))
	if ua := r.UserAgent(); ua != "" {
		md.Set(hrgrpc.MetadataClientAgent, ua)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		md.Set(k, v)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// =============================================================================
// Request helpers
// =============================================================================

func readJSONBody(w http.ResponseWriter, r *http.Request) (*structpb.Struct, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest("failed to read request body"), nil))
		return nil, false
	}

	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if len(strings.TrimSpace(string(body))) == 0 {
		return in, true
	}
	if err := protojson.Unmarshal(body, in); err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest("request body must be a JSON object"), nil))
		return nil, false
	}
	if in.Fields == nil {
		in.Fields = map[string]*structpb.Value{}
	}
	return in, true
}

// readMultipartFile reads one file part of at most limit+1 bytes.
func readMultipartFile(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest("request must be multipart/form-data within the size limit"), nil))
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeEnvelope(w, response.Wrap(response.ValidationFailed([]response.ValidationError{
			{Field: field, Message: field + " is required"},
		}), nil))
		return nil, nil, false
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeEnvelope(w, response.Wrap(response.BadRequest("failed to read "+field), nil))
		return nil, nil, false
	}
	return content, header, true
}

// listParam accepts repeated and comma separated values.
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func toAnyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// =============================================================================
// Response helpers
// =============================================================================

var structMarshaler = protojson.MarshalOptions{UseProtoNames: true}

// writeStruct writes a gRPC response, taking the HTTP status from base.status_code.
func writeStruct(w http.ResponseWriter, out *structpb.Struct) {
	status := http.StatusInternalServerError
	if base, err := hrgrpc.BaseFromStruct(out); err == nil {
		status = base.HTTPStatus()
	}

	body, err := structMarshaler.Marshal(out)
	if err != nil {
		writeEnvelope(w, response.Wrap(response.InternalError("failed to encode response"), nil))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeEnvelope(w http.ResponseWriter, envelope response.Envelope) {
	writeRawJSON(w, envelope.Base.HTTPStatus(), envelope)
}

func writeRawJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
