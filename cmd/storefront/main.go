package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	catalogsqlite "github.com/jcmexdev/storefront/internal/catalog/sqlite"
	couponsqlite "github.com/jcmexdev/storefront/internal/coupon/sqlite"
	"github.com/jcmexdev/storefront/internal/httpx"
	"github.com/jcmexdev/storefront/internal/pages"
	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/session/redisstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	catalogRepo, err := catalogsqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open catalog store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer catalogRepo.Close()

	couponRepo, err := couponsqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open coupon store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer couponRepo.Close()

	sessions := redisstore.Open(cfg.RedisAddr, cfg.SessionTTL())
	defer sessions.Close()

	catalogService := catalog.NewService(catalogRepo)
	pagesService := pages.NewService(catalogRepo)

	handler := httpx.NewHandler(catalogService, pagesService, couponRepo, cart.Keys{
		Cart:   cfg.CartSessionKey,
		Coupon: cfg.CouponSessionKey,
	})
	router := httpx.NewRouter(handler, sessions, cfg.SessionCookie, cfg.SessionTTL())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
