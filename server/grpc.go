package server

import (
	grpcserver "bookstore/grpc_server"
	"bookstore/interceptors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer builds the gRPC server hosting the auth service and the
// standard health service. Login, ValidateToken and health checks need no token.
func NewGRPCServer(svc *Services, logger *zap.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptors.RecoveryInterceptor(logger),
		interceptors.ZapLoggingInterceptor(logger),
		interceptors.AuthInterceptor(svc.Tokens,
			grpcserver.LoginMethod,
			grpcserver.ValidateTokenMethod,
			healthpb.Health_Check_FullMethodName,
		),
	))

	grpcserver.RegisterAuthServiceServer(s, grpcserver.NewAuthServiceServer(svc.Accounts, svc.Tokens, svc.Store.Roles, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcserver.AuthServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	return s, healthServer
}
