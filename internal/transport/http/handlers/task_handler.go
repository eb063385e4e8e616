package handlers

import (
	"fmt"
	"strings"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	service ports.TaskService
	logger  *logger.Logger
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.logger.Warnw("task_create_validation_failed", "details", errs)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errs,
		})
	}

	input := ports.CreateTaskInput{
		Prompt:        req.Prompt,
		RepoURL:       req.RepoURL,
		SelectedAgent: req.SelectedAgent,
		SelectedModel: req.SelectedModel,
	}

	h.logger.Infow("task_create_request", "agent", req.SelectedAgent)
	task, err := h.service.CreateTask(c.Context(), input)
	if err != nil {
		if err == services.ErrTaskInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Prompt is required",
			})
		}
		h.logger.Errorw("task_create_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to create task",
		})
	}

	h.logger.Infow("task_create_success", "id", task.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.TaskResponse{Task: task})
}

func (h *TaskHandler) GetTasks(c *fiber.Ctx) error {
	tasks, err := h.service.GetTasks(c.Context())
	if err != nil {
		h.logger.Errorw("tasks_list_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to fetch tasks",
		})
	}

	return c.JSON(dto.TaskListResponse{Tasks: tasks})
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id := c.Params("id")

	task, err := h.service.GetTaskByID(c.Context(), id)
	if err != nil {
		h.logger.Warnw("task_get_not_found", "id", id)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "task not found",
		})
	}

	return c.JSON(dto.TaskResponse{Task: task})
}

func (h *TaskHandler) DeleteTasks(c *fiber.Ctx) error {
	action := c.Query("action")
	if action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Action parameter is required",
		})
	}

	statuses, invalid := dto.ParseDeleteActions(action)
	if len(invalid) > 0 {
		h.logger.Warnw("task_delete_invalid_actions", "invalid", invalid)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: fmt.Sprintf("Invalid action(s): %s. Valid actions: completed, failed", strings.Join(invalid, ", ")),
		})
	}
	if len(statuses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "No valid actions specified",
		})
	}

	count, err := h.service.DeleteTasksByStatus(c.Context(), statuses)
	if err != nil {
		if err == services.ErrTaskStatusNotDeletable {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		h.logger.Errorw("task_delete_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to delete tasks",
		})
	}

	message := "No tasks found to delete"
	if count > 0 {
		message = fmt.Sprintf("%d task(s) deleted successfully", count)
	}

	return c.JSON(dto.DeleteTasksResponse{Message: message, DeletedCount: count})
}
