package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookstore/config"
	"bookstore/database"
	"bookstore/email"
	"bookstore/logger"
	"bookstore/registry"
	"bookstore/server"

	"go.uber.org/zap"
)

func main() {
	config.InitConfig()
	cfg := &config.AppConfig

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs a failed run and flushes the logger before the process exits.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Configuration loaded", zap.Stringer("config", cfg))
	if cfg.UsesDefaultSecret() {
		log.Warn("Using the default JWT signing key; set JwtAuthOptions.SecretKey before deploying")
	}

	db, err := database.InitDB(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	svc := server.NewServices(cfg, db, email.NewSender(cfg.Smtp, log), log)

	handler, err := server.NewHTTPHandler(cfg, svc, sqlDB, log)
	if err != nil {
		return err
	}
	httpServer := server.NewHTTPServer(cfg, handler)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %d: %w", cfg.GRPCPort, err)
	}
	grpcServer, grpcHealth := server.NewGRPCServer(svc, log)

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("gRPC server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var (
		reg       registry.ServiceRegistry
		instances []registry.Instance
	)
	if cfg.Consul.Enabled {
		reg, err = registry.NewConsulRegistry(cfg.Consul, log.Sugar())
		if err != nil {
			log.Warn("Service registration disabled", zap.Error(err))
		} else if instances, err = registry.RegisterSelf(reg, cfg, ""); err != nil {
			log.Warn("Service registration failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case runErr = <-errCh:
		log.Error("Server failed, shutting down", zap.Error(runErr))
	}

	if reg != nil {
		registry.DeregisterAll(reg, instances, log.Sugar())
	}
	grpcHealth.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown did not complete", zap.Error(err))
	}
	grpcServer.GracefulStop()
	return runErr
}
