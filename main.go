package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcheckout "github.com/revcart/fulfillment/internal/application/checkout"
	apppayment "github.com/revcart/fulfillment/internal/application/payment"
	"github.com/revcart/fulfillment/internal/config"
	"github.com/revcart/fulfillment/internal/infrastructure/gateway"
	"github.com/revcart/fulfillment/internal/infrastructure/id"
	"github.com/revcart/fulfillment/internal/infrastructure/memory"
	"github.com/revcart/fulfillment/internal/infrastructure/notifier"
	"github.com/revcart/fulfillment/internal/infrastructure/outbox"
	"github.com/revcart/fulfillment/internal/metrics"
	"github.com/revcart/fulfillment/internal/pkg/logging"
	httptransport "github.com/revcart/fulfillment/internal/presentation/http"
)

func main() {
	configPath := flag.String("config", os.Getenv("FULFILLMENT_CONFIG"), "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.Server.Name, cfg.Server.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	metrics.Register()

	orderRepo := memory.NewOrderRepository()
	inventoryRepo := memory.NewInventoryRepository()
	paymentRepo := memory.NewPaymentRepository()
	trackingRepo := memory.NewTrackingRepository()
	agentDirectory := memory.NewAgentDirectory()
	cartStore := memory.NewCartStore()
	addressBook := memory.NewAddressBook()
	idGenerator := id.NewUUIDGenerator()

	// In-memory event bus acting as the post-commit notification queue.
	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	notificationStore := notifier.NewStore(idGenerator)
	notificationWorker := notifier.NewWorker(notificationStore, baseLogger)
	notificationWorker.Start(bus)

	razorpay := gateway.NewRazorpayClient(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	paymentService := apppayment.NewService(
		paymentRepo, orderRepo, razorpay, bus, idGenerator, cfg.Gateway.Currency,
	)
	checkoutService := appcheckout.NewService(
		orderRepo, inventoryRepo, trackingRepo, agentDirectory,
		cartStore, addressBook, paymentService, bus, idGenerator,
	)

	handler := httptransport.NewHandler(
		checkoutService, paymentService, notificationStore,
		inventoryRepo, agentDirectory, cartStore, addressBook,
		baseLogger,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
