package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/config"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

// FilesHandler receives avatar uploads and stores them on local disk.
type FilesHandler struct {
	service *service.FileService
	cfg     config.FilesConfig
}

// NewFilesHandler constructs handler.
func NewFilesHandler(fileService *service.FileService, cfg config.FilesConfig) *FilesHandler {
	return &FilesHandler{service: fileService, cfg: cfg}
}

// UploadAvatar POST /files.
func (h *FilesHandler) UploadAvatar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}

	diskName := uuid.NewString() + filepath.Ext(header.Filename)
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := c.SaveFile(header, filepath.Join(h.cfg.UploadDir, diskName)); err != nil {
		return apperrors.NewInternalError(err)
	}

	file, err := h.service.StoreAvatar(c.Context(), principal.User.ID, header.Filename, diskName)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fileResponse(file, h.cfg.BaseURL)})
}
