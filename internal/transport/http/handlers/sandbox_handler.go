package handlers

import (
	"errors"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

type SandboxHandler struct {
	service ports.SandboxService
	logger  *logger.Logger
}

func NewSandboxHandler(service ports.SandboxService, logger *logger.Logger) *SandboxHandler {
	return &SandboxHandler{service: service, logger: logger}
}

// RunFragment provisions a sandbox, executes the fragment in it and returns
// either the interpreter output or the preview URL.
func (h *SandboxHandler) RunFragment(c *fiber.Ctx) error {
	var req dto.RunSandboxRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("sandbox_run_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Type:  "validation_error",
		})
	}

	input := ports.RunFragmentInput{
		Fragment: req.Fragment.ToDomain(),
		UserID:   req.UserID,
		Credentials: ports.SandboxCredentials{
			TeamID:      req.TeamID,
			AccessToken: req.AccessToken,
		},
	}

	result, err := h.service.RunFragment(c.Context(), input)
	if err != nil {
		return h.sandboxError(c, err)
	}

	h.logger.Infow("sandbox_run_success", "sbx_id", result.SbxID, "template", result.Template)
	return c.JSON(dto.ExecutionResultToResponse(result))
}

// GetFiles returns the current file tree of a running sandbox.
func (h *SandboxHandler) GetFiles(c *fiber.Ctx) error {
	sbxID := c.Params("sbxId")
	creds := ports.SandboxCredentials{
		TeamID:      c.Get("X-Team-ID"),
		AccessToken: c.Get("X-Access-Token"),
	}

	files, err := h.service.SnapshotFiles(c.Context(), sbxID, creds)
	if err != nil {
		return h.sandboxError(c, err)
	}

	return c.JSON(dto.SandboxFilesResponse{Files: files})
}

// GetFileContent returns the content of one file inside a running sandbox.
func (h *SandboxHandler) GetFileContent(c *fiber.Ctx) error {
	sbxID := c.Params("sbxId")
	path := c.Query("path")
	creds := ports.SandboxCredentials{
		TeamID:      c.Get("X-Team-ID"),
		AccessToken: c.Get("X-Access-Token"),
	}

	content, err := h.service.ReadSandboxFile(c.Context(), sbxID, path, creds)
	if err != nil {
		return h.sandboxError(c, err)
	}

	return c.JSON(dto.SandboxFileContentResponse{Path: path, Content: content})
}

// WriteFileContent writes content to one file inside a running sandbox.
func (h *SandboxHandler) WriteFileContent(c *fiber.Ctx) error {
	sbxID := c.Params("sbxId")

	var req dto.WriteSandboxFileRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("sandbox_file_write_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Type:  "validation_error",
		})
	}

	creds := ports.SandboxCredentials{
		TeamID:      c.Get("X-Team-ID"),
		AccessToken: c.Get("X-Access-Token"),
	}

	if err := h.service.WriteSandboxFile(c.Context(), sbxID, req.Path, req.Content, creds); err != nil {
		return h.sandboxError(c, err)
	}

	h.logger.Infow("sandbox_file_written", "sbx_id", sbxID, "path", req.Path)
	return c.JSON(dto.WriteSandboxFileResponse{Success: true, Path: req.Path})
}

// sandboxError maps sandbox service errors to status codes and the error
// type classification the clients branch on.
func (h *SandboxHandler) sandboxError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSandboxPathInvalid):
		h.logger.Warnw("sandbox_path_rejected", "error", err)
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "Access denied: Invalid path",
			Type:  "validation_error",
		})
	case errors.Is(err, services.ErrFragmentMissing), errors.Is(err, services.ErrFragmentMissingCode):
		h.logger.Warnw("sandbox_run_validation_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Type:  "validation_error",
		})
	case errors.Is(err, services.ErrSandboxNotConfigured):
		h.logger.Warnw("sandbox_run_not_configured")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "Code execution service is not configured",
			Type:  "config_error",
		})
	case errors.Is(err, services.ErrSandboxCreation):
		h.logger.Errorw("sandbox_run_creation_failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Type:  "sandbox_creation_error",
		})
	case errors.Is(err, services.ErrSandboxExecution):
		h.logger.Errorw("sandbox_run_execution_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Type:  "execution_error",
		})
	default:
		h.logger.Errorw("sandbox_run_unknown_error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "An unexpected error occurred",
			Type:  "unknown_error",
		})
	}
}
