package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finsoc/splitledger/internal/api"
	"github.com/finsoc/splitledger/internal/auth"
	"github.com/finsoc/splitledger/internal/service"
	"github.com/finsoc/splitledger/internal/storage/sqlite"
	"github.com/finsoc/splitledger/pkg/logging"
)

const defaultTokenDuration = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}
	logging.Setup()

	addr := getEnv("ADDR", ":8080")
	dbPath := getEnv("DB_PATH", "./data/splitledger.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	hooks := service.Hooks{
		BillSettled: func(billID string) {
			slog.Info("Bill fully settled", "bill_id", billID)
		},
	}

	server := api.NewServer(
		service.NewMatchService(store),
		service.NewBillService(store, hooks),
		service.NewSettlementService(store, hooks),
		auth.NewJWTManager(jwtSecret, defaultTokenDuration),
	)

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	handler := h2c.NewHandler(server.Handler(), &http2.Server{})

	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
