package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/correction-backoffice/internal/application/auth"
	"github.com/jhoicas/correction-backoffice/internal/application/billing"
	infrapdf "github.com/jhoicas/correction-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/correction-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/correction-backoffice/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/correction-backoffice/internal/interfaces/http"
	"github.com/jhoicas/correction-backoffice/pkg/config"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// Almacenamiento: S3 con credenciales completas, simulado si no.
	objectStore := storage.NewObjectStore(cfg.Storage, log)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(infrapdf.OptionsFromConfig(cfg.Invoice), log)
	background := billing.NewBackground(log, cfg.Invoice.BackgroundTimeout)
	invoicePDFUC := billing.NewInvoicePDFUseCase(
		invoiceRepo, auditRepo, pdfGenerator, objectStore, background, log,
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Correction Back-office API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		InvoicePDF:  invoicePDFUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		StorageMode: objectStore.Mode(),
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Los PDF que aún se están guardando tras /download terminan antes de cerrar el pool.
	if err := background.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("trabajos en segundo plano sin terminar")
	}

	log.Info().Msg("aplicación detenida")
}
