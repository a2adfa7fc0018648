package registry

import (
	"fmt"
	"os"

	"bookstore/config"

	"go.uber.org/zap"
)

// Instance is one registration made on start-up and undone on shutdown.
type Instance struct {
	ID   string
	Name string
}

// RegisterSelf announces the HTTP API (checked on /health) and the gRPC auth
// API (checked with the gRPC health protocol) under hostname host.
func RegisterSelf(r ServiceRegistry, cfg *config.Config, host string) ([]Instance, error) {
	if host == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve hostname: %w", err)
		}
		host = h
	}

	httpID := fmt.Sprintf("%s-http-%s-%d", cfg.ServiceName, host, cfg.HTTPPort)
	grpcID := fmt.Sprintf("%s-grpc-%s-%d", cfg.ServiceName, host, cfg.GRPCPort)
	grpcName := cfg.ServiceName + "-grpc"

	var done []Instance
	err := r.Register(httpID, cfg.ServiceName, host, cfg.HTTPPort, []string{"http", "api"},
		CreateHTTPCheck(httpID, host, cfg.HTTPPort, "/health", cfg.Consul.CheckInterval, cfg.Consul.CheckTimeout))
	if err != nil {
		return nil, err
	}
	done = append(done, Instance{ID: httpID, Name: cfg.ServiceName})

	err = r.Register(grpcID, grpcName, host, cfg.GRPCPort, []string{"grpc", "auth"},
		CreateGRPCCheck(grpcID, fmt.Sprintf("%s:%d", host, cfg.GRPCPort), cfg.Consul.CheckInterval, cfg.Consul.CheckTimeout))
	if err != nil {
		DeregisterAll(r, done, zap.NewNop().Sugar())
		return nil, err
	}
	return append(done, Instance{ID: grpcID, Name: grpcName}), nil
}

// DeregisterAll removes every instance, logging failures.
func DeregisterAll(r ServiceRegistry, instances []Instance, logger *zap.SugaredLogger) {
	for _, inst := range instances {
		if err := r.Deregister(inst.ID); err != nil {
			logger.Warnw("Deregister failed", "service_id", inst.ID, "error", err)
		}
	}
}
