package routes

import (
	"beautyfood-backend/internal/api/handlers"
	"beautyfood-backend/internal/middleware"
	"beautyfood-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App           *fiber.App
	UserHandler   handlers.UserHandler
	MealHandler   handlers.MealHandler
	StatsHandler  handlers.StatsHandler
	ReportHandler handlers.ReportHandler
	Middleware    middleware.Middleware
	JWTService    jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.User()
	c.Meals()
	c.Stats()
	c.Reports()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	user.Get("/me", c.UserHandler.Me)
	user.Put("/me/profile", c.UserHandler.UpdateProfile)
}

func (c *Config) Meals() {
	meals := c.App.Group("/api/v1/meals")
	// no bearer token means a guest analysis
	meals.Post("/analyze", c.Middleware.OptionalAuthMiddleware(c.JWTService), c.MealHandler.AnalyzeMeal)

	history := meals.Group("", c.Middleware.AuthMiddleware(c.JWTService))
	history.Get("", c.MealHandler.GetMeals)
	history.Get("/:id", c.MealHandler.GetMeal)
	history.Delete("/:id", c.MealHandler.DeleteMeal)
}

func (c *Config) Stats() {
	stats := c.App.Group("/api/v1/stats", c.Middleware.AuthMiddleware(c.JWTService))
	stats.Get("/daily", c.StatsHandler.GetDailyStats)
}

func (c *Config) Reports() {
	reports := c.App.Group("/api/v1/reports", c.Middleware.AuthMiddleware(c.JWTService))
	reports.Get("/weekly", c.ReportHandler.GetWeeklyReport)
	reports.Get("/monthly", c.ReportHandler.GetMonthlyReport)
	reports.Post("/weekly/email", c.ReportHandler.SendWeeklyReportEmail)
}
