package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/backend/internal/config"
	"storefront/backend/internal/httpserver"
	"storefront/backend/internal/infrastructure/mailer"
	"storefront/backend/internal/infrastructure/password"
	"storefront/backend/internal/infrastructure/postgres"
	"storefront/backend/internal/infrastructure/token"
	authusecase "storefront/backend/internal/usecase/auth"
	productusecase "storefront/backend/internal/usecase/product"
	userusecase "storefront/backend/internal/usecase/user"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	tokenManager := token.NewJWTManager(
		cfg.AccessSecret,
		cfg.ResetSecret,
		cfg.AccessTokenTTL,
		cfg.ResetTokenTTL,
		cfg.TokenIssuer,
	)
	hasher := password.NewBcryptHasher(bcrypt.DefaultCost)

	userRepo := postgres.NewUserRepository(db.Pool)
	authService := authusecase.NewService(userRepo, tokenManager, hasher, mailer.NewLogMailer())
	productService := productusecase.NewService(postgres.NewProductRepository(db.Pool))
	userService := userusecase.NewService(userRepo)

	server := httpserver.NewServer(cfg, authService, productService, userService, tokenManager)
	log.Printf("HTTP server listening on %s", server.Addr())

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server closed: %v", err)
				return
			}
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	} else {
		log.Printf("graceful shutdown completed")
	}
}
