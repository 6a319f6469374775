package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthledger/hearth/internal/category"
	categoryStore "github.com/hearthledger/hearth/internal/category/store"
	"github.com/hearthledger/hearth/internal/config"
	"github.com/hearthledger/hearth/internal/database"
	hearthHttp "github.com/hearthledger/hearth/internal/http"
	aiHandler "github.com/hearthledger/hearth/internal/http/ai"
	bulkHandler "github.com/hearthledger/hearth/internal/http/bulk"
	categoryHandler "github.com/hearthledger/hearth/internal/http/category"
	matchingHandler "github.com/hearthledger/hearth/internal/http/matching"
	previewHandler "github.com/hearthledger/hearth/internal/http/preview"
	txHandler "github.com/hearthledger/hearth/internal/http/transaction"
	"github.com/hearthledger/hearth/internal/importer"
	"github.com/hearthledger/hearth/internal/matching"
	matchingStore "github.com/hearthledger/hearth/internal/matching/store"
	"github.com/hearthledger/hearth/internal/recognition"
	"github.com/hearthledger/hearth/internal/recognition/gemini"
	"github.com/hearthledger/hearth/internal/transaction"
	txStore "github.com/hearthledger/hearth/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var recognizer recognition.Recognizer

	if cfg.Recognition.APIKey != "" {
		g, err := gemini.New(ctx, cfg.Recognition.APIKey, cfg.Recognition.Model)
		if err != nil {
			slog.Error("failed to create recognizer", "error", err)
			os.Exit(1)
		}

		recognizer = g
	} else {
		slog.Warn("GEMINI_API_KEY not set, recognition endpoints disabled")
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService()
	)

	handlers := hearthHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService),
		Preview: previewHandler.NewHandler(
			importService, categoryService, matchingService, transactionService, cfg.YearPolicy()),
		Categories: categoryHandler.NewHandler(categoryService),
		Matching:   matchingHandler.NewHandler(matchingService),
		Bulk:       bulkHandler.NewHandler(transactionService),
		AI:         aiHandler.NewHandler(recognizer, cfg.Recognition.Timeout),
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, requests are not authenticated")
	}

	router := hearthHttp.New(handlers, hearthHttp.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Recognition.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "app", cfg.App.Name)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
