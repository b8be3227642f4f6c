package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/events"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/handler"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/auth"
	"github.com/foodtrace/foodtrace-backend/pkg/config"
	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
	"github.com/foodtrace/foodtrace-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("ledger-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("ledger-service", cfg.Server.Environment)
	log.Info().Msg("starting Ledger Service")

	db, err := database.New(&cfg.Database, cfg.Ledger.TxMaxRetries, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// The broker is optional: without it the service runs with event
	// publishing disabled.
	var rmq *messaging.RabbitMQ
	var publisher *messaging.Publisher
	rmq, err = messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, events disabled")
		rmq = nil
	} else {
		defer rmq.Close()
		publisher, err = messaging.NewPublisher(rmq, messaging.ExchangeLedgerEvents, "ledger-service", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}
	eventPublisher := events.NewPublisher(publisher, log)

	jwtManager := auth.NewManager(&cfg.JWT)

	// Repositories
	departmentRepo := repository.NewDepartmentRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	lotRepo := repository.NewLotRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	expiredRepo := repository.NewExpiredRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	ledgerService := service.NewLedgerService(
		db, productRepo, lotRepo, txnRepo, recipeRepo, saleRepo,
		expiredRepo, qualityRepo, eventPublisher, cfg.Ledger, log,
	)
	catalogService := service.NewCatalogService(departmentRepo, supplierRepo, productRepo, recipeRepo, log)
	qualityService := service.NewQualityService(qualityRepo, productRepo, lotRepo, eventPublisher, log)
	reportService := service.NewReportService(reportRepo, cfg.Ledger, log)
	authService := service.NewAuthService(userRepo, jwtManager, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	stockHandler := handler.NewStockHandler(ledgerService, log)
	saleHandler := handler.NewSaleHandler(ledgerService, log)
	productionHandler := handler.NewProductionHandler(ledgerService, log)
	expiryHandler := handler.NewExpiryHandler(ledgerService, log)
	qualityHandler := handler.NewQualityHandler(qualityService, log)
	reportHandler := handler.NewReportHandler(reportService, log)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "ledger-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtManager))

			r.Post("/auth/register", authHandler.Register)

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", catalogHandler.ListDepartments)
				r.Post("/", catalogHandler.CreateDepartment)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", catalogHandler.ListSuppliers)
				r.Post("/", catalogHandler.CreateSupplier)
				r.Post("/{id}/departments/{departmentID}", catalogHandler.LinkSupplierDepartment)
			})

			r.Route("/packaging", func(r chi.Router) {
				r.Get("/", catalogHandler.ListPackaging)
				r.Post("/", catalogHandler.CreatePackaging)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogHandler.ListProducts)
				r.Post("/", catalogHandler.CreateProduct)
				r.Get("/{id}", catalogHandler.GetProduct)
				r.Put("/{id}", catalogHandler.UpdateProduct)
				r.Delete("/{id}", catalogHandler.DeleteProduct)
				r.Get("/{id}/lots", stockHandler.ListLots)
				r.Get("/{id}/verify-balance", stockHandler.VerifyBalance)
				r.Get("/{id}/quality-checks", qualityHandler.ChecksByProduct)
			})

			r.Route("/ingredients", func(r chi.Router) {
				r.Get("/", catalogHandler.ListIngredients)
				r.Post("/", catalogHandler.MarkIngredient)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", catalogHandler.ListRecipes)
				r.Post("/", catalogHandler.CreateRecipe)
				r.Get("/{id}", catalogHandler.GetRecipe)
				r.Delete("/{id}", catalogHandler.DeleteRecipe)
				r.Get("/{id}/productions", productionHandler.ListRuns)
			})

			r.Route("/stock", func(r chi.Router) {
				r.Post("/receive", stockHandler.Receive)
				r.Post("/adjust", stockHandler.Adjust)
				r.Get("/inventory", stockHandler.Inventory)
				r.Get("/transactions", stockHandler.Transactions)
			})

			r.Route("/lots", func(r chi.Router) {
				r.Get("/{id}", stockHandler.GetLot)
				r.Get("/{id}/trace", stockHandler.Trace)
				r.Get("/{id}/quality-checks", qualityHandler.ChecksByLot)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", saleHandler.List)
				r.Post("/", saleHandler.Create)
				r.Get("/{id}", saleHandler.Get)
			})

			r.Post("/productions", productionHandler.Produce)

			r.Route("/expiry", func(r chi.Router) {
				r.Get("/expiring", expiryHandler.Expiring)
				r.Get("/expired", expiryHandler.Expired)
				r.Post("/write-off", expiryHandler.MarkExpired)
				r.Get("/write-offs", expiryHandler.WriteOffs)
			})

			r.Route("/quality", func(r chi.Router) {
				r.Get("/check-types", qualityHandler.ListCheckTypes)
				r.Post("/check-types", qualityHandler.CreateCheckType)
				r.Post("/checks", qualityHandler.RecordCheck)
				r.Get("/failure-rates", qualityHandler.FailureRates)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/products", reportHandler.Products)
				r.Get("/products/export", reportHandler.ExportProducts)
				r.Get("/dashboard", reportHandler.Dashboard)
			})
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
