package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskflow/client/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New wires the dashboard routes. The guard middleware owns the redirect
// rules between auth pages and the task view.
func New(handlers Handlers, guard func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth surface
	r.POST("/auth/signin", handlers.Auth.SignIn)
	r.POST("/auth/signup", handlers.Auth.SignUp)
	r.POST("/auth/signout", guard(handlers.Auth.SignOut))
	r.GET("/auth/signin", guard(signInPage))
	r.GET("/auth/signup", guard(signInPage))

	// Task view
	r.GET("/", guard(rootRedirect))
	r.GET("/dashboard", guard(handlers.Task.GetTasks))

	// API consumed by the dashboard
	r.GET("/api/v1/tasks", guard(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", guard(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", guard(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", guard(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/analyze", guard(handlers.Task.AnalyzeTask))
	r.POST("/api/v1/suggestions/accept", guard(handlers.Task.AcceptSuggestion))
	r.GET("/api/v1/users", guard(handlers.Task.GetUsers))

	return r
}

func rootRedirect(ctx *fasthttp.RequestCtx) {
	ctx.Redirect("/dashboard", fasthttp.StatusFound)
}

func signInPage(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetBodyString(`{"status":"success","data":{"message":"post credentials to this path"}}`)
}
