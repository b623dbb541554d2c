package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers, jwtSecret string) {
	tasks := api.Group("/tasks")
	tasks.Use(middleware.Protected(jwtSecret))

	tasks.Get("/", h.TaskHandler.ListTasks)
	tasks.Post("/", h.TaskHandler.CreateTask)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Patch("/:id", h.TaskHandler.UpdateTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)

	tasks.Put("/:id/status", h.TaskHandler.TransitionStatus)
	tasks.Post("/:id/archive", h.TaskHandler.ArchiveTask)
	tasks.Post("/:id/unarchive", h.TaskHandler.UnarchiveTask)
	tasks.Put("/:id/assignees", h.TaskHandler.AssignTask)

	tasks.Post("/:id/split", h.TaskHandler.SplitTask)
	tasks.Get("/:id/splits", h.TaskHandler.ListSplitRecords)

	tasks.Post("/:id/comments", h.TaskHandler.AddComment)

	// time-gate
	tasks.Post("/:id/effort", h.TaskHandler.LogEffort)
	tasks.Get("/:id/effort", h.TaskHandler.ListEffortLogs)
}
