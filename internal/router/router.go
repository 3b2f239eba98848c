package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskdesk/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Data     *apiHandler.DataHandler
	Task     *apiHandler.TaskHandler
	Assignee *apiHandler.AssigneeHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/api/v1/data", authMiddleware(handlers.Data.GetData))
	r.GET("/api/v1/stats", authMiddleware(handlers.Data.GetStats))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.PUT("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.SetStatus))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.POST("/api/v1/assignees", authMiddleware(handlers.Assignee.AddAssignee))
	r.DELETE("/api/v1/assignees/{name}", authMiddleware(handlers.Assignee.RemoveAssignee))

	return r
}
