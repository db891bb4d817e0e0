package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-categorias/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC  *usecase.CategoryUseCase
	JWTSecret   string
	ServiceName string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log))

	app.Get("/health", health(deps.ServiceName))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	categories := api.Group("/categories")
	h := NewCategoryHandler(deps.CategoryUC)
	canWrite := RequireRole(RoleAdmin, RoleBodeguero)

	// Rutas fijas antes de /:id
	categories.Get("/", h.List)
	categories.Get("/tree", h.Tree)
	categories.Get("/tree.pdf", h.TreePDF)
	categories.Get("/options", h.Options)
	categories.Get("/:id", h.GetByID)

	categories.Post("/", canWrite, h.Create)
	categories.Put("/:id", canWrite, h.Update)
	categories.Delete("/:id", canWrite, h.Delete)
}

// health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200
// @Router       /health [get]
func health(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	}
}
