package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/transport/http/dto"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type TerminalHandler struct {
	service ports.SandboxService
	logger  *logger.Logger
}

func NewTerminalHandler(service ports.SandboxService, logger *logger.Logger) *TerminalHandler {
	return &TerminalHandler{service: service, logger: logger}
}

// RunCommand executes one shell command inside a running sandbox. Failed
// commands still return 200; the failure lives in stderr and exitCode.
func (h *TerminalHandler) RunCommand(c *fiber.Ctx) error {
	var req dto.TerminalCommandRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("terminal_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	input := ports.TerminalCommandInput{
		SandboxID:        req.SbxID,
		Command:          req.Command,
		WorkingDirectory: req.WorkingDirectory,
		Credentials: ports.SandboxCredentials{
			TeamID:      req.TeamID,
			AccessToken: req.AccessToken,
		},
	}

	result, err := h.service.RunTerminalCommand(c.Context(), input)
	if err != nil {
		return h.terminalError(c, err)
	}

	return c.JSON(dto.TerminalCommandResponse{
		Stdout:           result.Stdout,
		Stderr:           result.Stderr,
		ExitCode:         result.ExitCode,
		WorkingDirectory: workingDirOrDefault(req.WorkingDirectory),
	})
}

// Handle runs the websocket terminal loop for one sandbox: each text frame is
// a JSON command request, each reply a JSON command result.
func (h *TerminalHandler) Handle(c *websocket.Conn) {
	sbxID := c.Params("sbxId")
	if sbxID == "" {
		h.logger.Warnw("terminal_ws_missing_sandbox_id")
		h.writeWSError(c, "sandbox id is required")
		c.Close()
		return
	}

	h.logger.Infow("terminal_ws_session_start", "sbx_id", sbxID)
	defer h.logger.Infow("terminal_ws_session_closed", "sbx_id", sbxID)

	for {
		_, payload, err := c.ReadMessage()
		if err != nil {
			break
		}

		var req dto.TerminalCommandRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			h.writeWSError(c, "invalid command payload")
			continue
		}

		input := ports.TerminalCommandInput{
			SandboxID:        sbxID,
			Command:          req.Command,
			WorkingDirectory: req.WorkingDirectory,
			Credentials: ports.SandboxCredentials{
				TeamID:      req.TeamID,
				AccessToken: req.AccessToken,
			},
		}

		result, err := h.service.RunTerminalCommand(context.Background(), input)
		if err != nil {
			h.logger.Warnw("terminal_ws_command_failed", "sbx_id", sbxID, "error", err)
			h.writeWSError(c, err.Error())
			continue
		}

		resp := dto.TerminalCommandResponse{
			Stdout:           result.Stdout,
			Stderr:           result.Stderr,
			ExitCode:         result.ExitCode,
			WorkingDirectory: workingDirOrDefault(req.WorkingDirectory),
		}
		body, _ := json.Marshal(resp)
		if err := c.WriteMessage(websocket.TextMessage, body); err != nil {
			break
		}
	}
}

func (h *TerminalHandler) writeWSError(c *websocket.Conn, message string) {
	body, _ := json.Marshal(dto.TerminalCommandResponse{Error: message, ExitCode: -1})
	c.WriteMessage(websocket.TextMessage, body)
}

func (h *TerminalHandler) terminalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTerminalInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Command and sandbox ID are required",
		})
	case errors.Is(err, services.ErrSandboxNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "Code execution service is not configured",
			Type:  "config_error",
		})
	case errors.Is(err, services.ErrSandboxExecution):
		h.logger.Errorw("terminal_command_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Type:  "execution_error",
		})
	default:
		h.logger.Errorw("terminal_unknown_error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to execute command",
			Type:  "unknown_error",
		})
	}
}

func workingDirOrDefault(dir string) string {
	if dir == "" {
		return "/home/user"
	}
	return dir
}
