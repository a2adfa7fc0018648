// Package grpcserver exposes token issuing and checking over gRPC for other
// services. Messages are protobuf well-known types, so no generated code is
// involved.
package grpcserver

import (
	"context"
	"errors"

	"bookstore/auth"
	"bookstore/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const AuthServiceName = "bookstore.auth.AuthService"

// Full method names, as seen by interceptors.
const (
	LoginMethod           = "/" + AuthServiceName + "/Login"
	ValidateTokenMethod   = "/" + AuthServiceName + "/ValidateToken"
	CheckPermissionMethod = "/" + AuthServiceName + "/CheckPermission"
)

// AuthServiceServer is the server side of bookstore.auth.AuthService.
//
//	Login(Struct{email, password}) -> Struct{success, token, message}
//	ValidateToken(StringValue) -> Struct{valid, user_id, user_name, roles, error}
//	CheckPermission(Struct{token, permission}) -> Struct{granted, error}
type AuthServiceServer interface {
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	CheckPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type authServiceServer struct {
	accounts    services.AccountService
	tokens      *auth.TokenManager
	permissions auth.PermissionResolver
	logger      *zap.Logger
}

var _ AuthServiceServer = (*authServiceServer)(nil)

// NewAuthServiceServer creates the gRPC auth service.
func NewAuthServiceServer(accounts services.AccountService, tokens *auth.TokenManager, permissions auth.PermissionResolver, logger *zap.Logger) AuthServiceServer {
	return &authServiceServer{accounts: accounts, tokens: tokens, permissions: permissions, logger: logger.Named("grpc.auth")}
}

// RegisterAuthServiceServer attaches srv to s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&authServiceDesc, srv)
}

func (s *authServiceServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &services.LoginInput{
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	}
	token, _, err := s.accounts.Login(ctx, input)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrValidation):
		// A failed login is a normal answer, not an RPC error.
		return newStruct(map[string]any{"success": false, "token": "", "message": "Invalid credentials"})
	case err != nil:
		s.logger.Error("Login failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "login failed")
	}
	return newStruct(map[string]any{"success": true, "token": token, "message": ""})
}

func (s *authServiceServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	claims, err := s.tokens.ParseAndValidateToken(req.GetValue())
	if err != nil {
		return newStruct(map[string]any{"valid": false, "error": err.Error()})
	}
	roles := make([]any, len(claims.Roles))
	for i, r := range claims.Roles {
		roles[i] = r
	}
	return newStruct(map[string]any{
		"valid":     true,
		"user_id":   float64(claims.UserID),
		"user_name": claims.UserName,
		"roles":     roles,
		"error":     "",
	})
}

// CheckPermission answers granted=false, not an error, for an invalid token or
// a permission the user lacks.
func (s *authServiceServer) CheckPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	permission := stringField(req, "permission")
	if permission == "" {
		return nil, status.Error(codes.InvalidArgument, "permission is required")
	}
	token := stringField(req, "token")
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required for permission check")
	}

	claims, err := s.tokens.ParseAndValidateToken(token)
	if err != nil {
		return newStruct(map[string]any{"granted": false, "error": "Invalid token: " + err.Error()})
	}

	granted, err := auth.HasPermission(ctx, s.permissions, claims.UserID, permission)
	if err != nil {
		s.logger.Error("Permission lookup failed", zap.Uint("user_id", claims.UserID), zap.String("permission", permission), zap.Error(err))
		return newStruct(map[string]any{"granted": false, "error": "Error checking permissions"})
	}
	if !granted {
		return newStruct(map[string]any{"granted": false, "error": "Permission denied"})
	}
	return newStruct(map[string]any{"granted": true, "error": ""})
}

func stringField(s *structpb.Struct, key string) string {
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
