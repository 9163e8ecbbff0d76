package employee

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// MaxPhotoSize is the largest accepted photo, in bytes.
const MaxPhotoSize = 5 << 20

// Photo upload errors.
var (
	ErrPhotoTooLarge        = errors.New("photo must be at most 5 MB")
	ErrUnsupportedPhotoType = errors.New("photo must be a JPEG, PNG or WebP image")
	ErrStorageUnavailable   = errors.New("photo storage is not configured")
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadPhotoCommand represents the upload employee photo command.
type UploadPhotoCommand struct {
	EmployeeID  string
	Reader      io.Reader
	Size        int64
	ContentType string
	UpdatedBy   string
}

// UploadPhotoHandler handles the UploadEmployeePhoto command.
type UploadPhotoHandler struct {
	repo    employee.Repository
	storage PhotoStorage
	deps    Deps
}

// NewUploadPhotoHandler creates a new UploadPhotoHandler.
func NewUploadPhotoHandler(repo employee.Repository, storage PhotoStorage, deps Deps) *UploadPhotoHandler {
	return &UploadPhotoHandler{repo: repo, storage: storage, deps: deps}
}

// Handle stores the photo, points the employee at it and removes the previous object.
func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (*employee.Employee, error) {
	if h.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if cmd.Size > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(cmd.ContentType, ";")[0]))
	if !allowedPhotoTypes[contentType] {
		return nil, ErrUnsupportedPhotoType
	}

	id, err := parseID(cmd.EmployeeID)
	if err != nil {
		return nil, err
	}

	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := Snapshot(entity)

	url, err := h.storage.UploadPhoto(ctx, id, cmd.Reader, cmd.Size, contentType)
	if err != nil {
		return nil, err
	}

	previous, err := entity.SetPhoto(url, cmd.UpdatedBy)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, entity); err != nil {
		if delErr := h.storage.DeletePhoto(ctx, url); delErr != nil {
			logger.FromContext(ctx).Warn().Err(delErr).Msg("Failed to remove orphaned photo")
		}
		return nil, err
	}

	if previous != "" && previous != url {
		if err := h.storage.DeletePhoto(ctx, previous); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("employee_id", id.String()).Msg("Failed to delete previous photo")
		}
	}

	h.deps.invalidate(ctx, id)
	h.deps.auditUpdate(ctx, before, entity, cmd.UpdatedBy)
	h.deps.publish(ctx, employee.EventUpdated, entity, cmd.UpdatedBy)

	return entity, nil
}
