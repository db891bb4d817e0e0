// Servidor HTTP de categorías del ERP.
//
// docs/swagger.json se genera con swag desde estas anotaciones y las de los handlers.
//
// @title                       ERP Categorías API
// @version                     1.0
// @description                 Árbol de categorías del ERP: listado, árbol completo, opciones del selector jerárquico y CRUD.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	"github.com/jhoicas/erp-categorias/internal/application/usecase"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/erp-categorias/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/upstream"
	httpRouter "github.com/jhoicas/erp-categorias/internal/interfaces/http"
	"github.com/jhoicas/erp-categorias/pkg/config"
	"github.com/jhoicas/erp-categorias/pkg/logger"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init -d ../../ -g cmd/api/main.go -o ../../docs --outputTypes json --parseInternal

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("source", cfg.Source.Kind).
		Str("upstream", cfg.Upstream.BaseURL).
		Msg("iniciando aplicación")

	// La API externa es la dueña de las categorías: todas las escrituras pasan por ella.
	client := upstream.NewCategoryClient(upstream.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		Token:         cfg.Upstream.Token,
		Timeout:       cfg.Upstream.Timeout,
		RatePerSecond: cfg.Upstream.RatePerSecond,
		Burst:         cfg.Upstream.Burst,
		Retries:       cfg.Upstream.Retries,
	}, log.Zerolog())

	var reader repository.CategoryReader = client
	if cfg.Source.Kind == config.SourcePostgres {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		pool, err := postgres.NewPool(ctx, cfg.DB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL (réplica de lectura)")
		}
		defer pool.Close()
		reader = postgres.NewCategoryRepository(pool)
	}

	var writer repository.CategoryWriter = client
	if cfg.Cache.TTL > 0 {
		store := cache.NewCategoryStore(reader, client, cfg.Cache.Size, cfg.Cache.TTL, log.Zerolog())
		reader, writer = store, store
	}

	categoryUC := usecase.NewCategoryUseCase(reader, writer, infrapdf.NewCategoryTreePDF())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.DocsEnabled {
		if _, err := os.Stat(swaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: swaggerFile,
				Path:     "docs",
				Title:    "ERP Categorías API",
			}))
		} else {
			log.Warn().Str("file", swaggerFile).Msg("documentación deshabilitada: archivo no encontrado")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC:  categoryUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Log:         log.Zerolog(),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
