package router

import (
	"recosim/internal/middleware"
	"recosim/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler) {
	auth := api.Group("/auth")

	auth.POST("/login", handler.Login)
}

func SetupSimulationRoutes(api *echo.Group, handler *rest.SimulationHandler) {
	sims := api.Group("/simulations", middleware.AuthMiddleware())

	sims.POST("", handler.Create)
	sims.POST("/replay", handler.Replay)
	sims.GET("/:id", handler.Get)
	sims.GET("/:id/events", handler.GetEvents)
}

func SetupEvaluationRoutes(api *echo.Group, handler *rest.EvaluationHandler) {
	evals := api.Group("/evaluations", middleware.AuthMiddleware())

	evals.POST("", handler.Create)
}

func SetupSimAdminRoutes(api *echo.Group, handler *rest.SimAdminHandler) {
	admin := api.Group("/admin/sim", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)
	admin.POST("/reseed", handler.Reseed)
}
