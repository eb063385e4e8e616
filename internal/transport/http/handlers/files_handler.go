package handlers

import (
	"errors"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

type FilesHandler struct {
	service ports.WorkspaceService
	logger  *logger.Logger
}

func NewFilesHandler(service ports.WorkspaceService, logger *logger.Logger) *FilesHandler {
	return &FilesHandler{service: service, logger: logger}
}

// GetFileTree returns the stored workspace files as a nested tree.
func (h *FilesHandler) GetFileTree(c *fiber.Ctx) error {
	tree, err := h.service.GetFileTree(c.Context())
	if err != nil {
		h.logger.Errorw("files_tree_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to fetch files",
		})
	}

	return c.JSON(dto.SandboxFilesResponse{Files: tree})
}

func (h *FilesHandler) CreateFile(c *fiber.Ctx) error {
	var req dto.CreateWorkspaceFileRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("files_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errs := req.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errs,
		})
	}

	file, err := h.service.CreateFile(c.Context(), ports.CreateWorkspaceFileInput{
		Path:        req.Path,
		IsDirectory: req.IsDirectory,
		Content:     req.Content,
	})
	if err != nil {
		if errors.Is(err, services.ErrWorkspacePathRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		h.logger.Errorw("files_create_failed", "path", req.Path, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to create file",
		})
	}

	h.logger.Infow("files_create_success", "path", file.Path)
	return c.Status(fiber.StatusCreated).JSON(dto.CreateWorkspaceFileResponse{
		Success: true,
		File:    file,
	})
}

func (h *FilesHandler) GetFileContent(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "path query parameter is required",
		})
	}

	file, err := h.service.GetFileContent(c.Context(), path)
	if err != nil {
		if errors.Is(err, services.ErrWorkspaceFileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "file not found",
			})
		}
		h.logger.Errorw("files_content_failed", "path", path, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to fetch file content",
		})
	}

	return c.JSON(dto.WorkspaceFileContentResponse{
		Path:    file.Path,
		Content: file.Content,
	})
}
