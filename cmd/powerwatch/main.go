package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/BrandonDHaskell/powerwatch/internal/bot"
	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/config"
	"github.com/BrandonDHaskell/powerwatch/internal/grpcapi"
	"github.com/BrandonDHaskell/powerwatch/internal/httpapi"
	"github.com/BrandonDHaskell/powerwatch/internal/observability/metrics"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/service"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/backend"
	"github.com/BrandonDHaskell/powerwatch/internal/telegram"
)

func main() {
	logger := log.New(os.Stdout, "powerwatch ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Printf("fatal: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	metrics.Init()

	kv, err := backend.Open(ctx, cfg.StoreAddress)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()
	state := store.NewState(kv)

	tg, err := telegram.New(cfg.BotToken, cfg.Debug(), logger)
	if err != nil {
		return err
	}
	logger.Printf("logged in as @%s", tg.UserName())

	clk := clock.System{}

	reconciler := service.NewReconciler(state, tg, service.ReconcilerConfig{
		ReportChatID: cfg.ReportChatID,
		Clock:        clk,
	}, logger)
	heartbeat := service.NewHeartbeatWriter(state, service.HeartbeatConfig{
		Interval: cfg.HeartbeatInterval,
		Clock:    clk,
	}, logger)

	statusSvc := service.NewStatusService(state, clk)
	dispatcher := bot.NewDispatcher(bot.Dependencies{
		Logger:    logger,
		Endpoint:  tg,
		Approvals: service.NewApprovalService(state),
		Status:    statusSvc,
		AdminID:   cfg.AdminUserID,
		BotName:   tg.UserName(),
		Clock:     clk,
	})

	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	defer cancelDispatch()
	dispatched, err := startup(dispatchCtx, reconciler, heartbeat, dispatcher)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 2)

	var httpSrv *httpapi.Server
	if cfg.HTTPAddr != "" {
		httpSrv = httpapi.NewServer(httpapi.Dependencies{
			Logger: logger,
			Addr:   cfg.HTTPAddr,
			Status: statusSvc,
			Clock:  clk,
		})
		go func() {
			logger.Printf("http listening on %s", cfg.HTTPAddr)
			if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	var grpcSrv *grpcapi.Server
	if cfg.GRPCAddr != "" {
		grpcSrv = grpcapi.NewServer(logger)
		go func() {
			if err := grpcSrv.Start(cfg.GRPCAddr); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serveErr <- fmt.Errorf("grpc: %w", err)
			}
		}()
		grpcSrv.SetServing()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Printf("shutting down")
	case runErr = <-serveErr:
	case <-dispatched:
		logger.Printf("update stream closed")
	}

	heartbeat.Stop()
	cancelDispatch()
	<-dispatched

	if grpcSrv != nil {
		grpcSrv.Shutdown()
	}
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}

	return runErr
}
