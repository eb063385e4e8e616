package http

import (
	"context"

	"github.com/fragbox/backend/internal/config"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/db"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/infrastructure/sandbox"
	"github.com/fragbox/backend/internal/transport/http/handlers"
	httpmw "github.com/fragbox/backend/internal/transport/http/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	// Initialize repositories
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)
	fileRepo := db.NewWorkspaceFileRepository(cfg.DB, cfg.Logger)
	settingRepo := db.NewSystemSettingRepository(cfg.DB, cfg.Logger)

	// Initialize services
	settingService := services.NewSystemSettingService(settingRepo, cfg.Logger, cfg.Config.Security.EncryptionKey)

	sandboxClient := sandbox.NewClient(sandbox.ClientConfig{
		Config: cfg.Config.Sandbox,
		KeyFunc: func(ctx context.Context) string {
			key, err := settingService.GetSandboxAPIKey(ctx)
			if err != nil {
				cfg.Logger.Warnw("sandbox_key_lookup_failed", "error", err)
				return ""
			}
			return key
		},
		Logger: cfg.Logger,
	})

	sandboxService := services.NewSandboxService(services.SandboxServiceConfig{
		Client:    sandboxClient,
		Logger:    cfg.Logger,
		FilesRoot: cfg.Config.Sandbox.FilesRoot,
	})

	taskRunner := services.NewSandboxTaskRunner(services.SandboxTaskRunnerConfig{
		Client:   sandboxClient,
		Repo:     taskRepo,
		Logger:   cfg.Logger,
		Template: cfg.Config.Sandbox.Template,
	})

	taskService := services.NewTaskService(services.TaskServiceConfig{
		Repo:      taskRepo,
		Runner:    taskRunner,
		Logger:    cfg.Logger,
		WarnAfter: cfg.Config.Tasks.WarnAfter,
		Timeout:   cfg.Config.Tasks.Timeout,
	})

	workspaceService := services.NewWorkspaceService(fileRepo, cfg.Logger)

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService, cfg.Logger)
	sandboxHandler := handlers.NewSandboxHandler(sandboxService, cfg.Logger)
	terminalHandler := handlers.NewTerminalHandler(sandboxService, cfg.Logger)
	filesHandler := handlers.NewFilesHandler(workspaceService, cfg.Logger)
	settingHandler := handlers.NewSettingHandler(settingService, cfg.Logger)

	// Web terminal route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/terminal/:sbxId", websocket.New(terminalHandler.Handle))

	// API v1 routes
	api := app.Group("/api/v1")

	// Task routes
	tasks := api.Group("/tasks")
	tasks.Post("/", taskHandler.CreateTask)
	tasks.Get("/", taskHandler.GetTasks)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Delete("/", taskHandler.DeleteTasks)

	// Sandbox routes
	sbx := api.Group("/sandbox")
	sbx.Post("/", sandboxHandler.RunFragment)
	sbx.Get("/:sbxId/files", sandboxHandler.GetFiles)
	sbx.Get("/:sbxId/files/content", sandboxHandler.GetFileContent)
	sbx.Post("/:sbxId/files/content", sandboxHandler.WriteFileContent)

	// Terminal route
	api.Post("/terminal", terminalHandler.RunCommand)

	// Workspace file routes
	files := api.Group("/files")
	files.Get("/", filesHandler.GetFileTree)
	files.Post("/", filesHandler.CreateFile)
	files.Get("/content", filesHandler.GetFileContent)

	// Settings routes
	settings := api.Group("/settings", httpmw.AdminAuth(cfg.Config))
	settings.Post("/sandbox-key", settingHandler.UpdateSandboxKey)
	settings.Get("/sandbox-key", settingHandler.GetSandboxKeyStatus)
}
