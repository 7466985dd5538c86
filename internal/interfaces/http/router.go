package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/correction-backoffice/internal/application/auth"
	"github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/application/dto"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	InvoicePDF  *billing.InvoicePDFUseCase
	JWTSecret   string
	ServiceName string
	StorageMode string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName, Storage: deps.StorageMode})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Group("/auth").Post("/login", authHandler.Login)

	// Back-office (Bearer Token + rol admin)
	admin := api.Group("/admin", AuthMiddleware(deps.JWTSecret), RequireRole(entity.RoleAdmin))

	factures := admin.Group("/factures")
	invoiceHandler := NewInvoiceHandler(deps.InvoicePDF, deps.Log)
	factures.Get("/:id", invoiceHandler.GetByID)
	factures.Get("/:id/pdf", invoiceHandler.PDF)
	factures.Get("/:id/download", invoiceHandler.Download)
	factures.Post("/:id/regenerate", invoiceHandler.Regenerate)
}
