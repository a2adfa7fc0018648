package auth

import (
	"context"
	"net/http"
	"strings"

	restful "github.com/emicklei/go-restful/v3"
)

const claimsAttribute = "auth.claims"

// PermissionResolver looks up the permissions a user currently holds.
// Deleted users hold none.
type PermissionResolver interface {
	PermissionsForUser(ctx context.Context, userID uint) ([]string, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthFilter rejects requests that do not carry a valid bearer token and
// stores the token's claims on the request for later filters and handlers.
func (m *TokenManager) AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		authHeader := req.HeaderParameter("Authorization")
		if authHeader == "" {
			writeMessage(resp, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			writeMessage(resp, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.ParseAndValidateToken(tokenString)
		if err != nil {
			writeMessage(resp, http.StatusUnauthorized, err.Error())
			return
		}

		req.SetAttribute(claimsAttribute, claims)
		chain.ProcessFilter(req, resp)
	}
}

// ClaimsFrom returns the claims stored by AuthFilter.
func ClaimsFrom(req *restful.Request) (*CustomClaims, bool) {
	claims, ok := req.Attribute(claimsAttribute).(*CustomClaims)
	return claims, ok && claims != nil
}

// RequireRole lets the request through when the token carries any of roles.
// It must run after AuthFilter.
func RequireRole(roles ...string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		claims, ok := ClaimsFrom(req)
		if !ok {
			writeMessage(resp, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
			return
		}
		if !claims.HasRole(roles...) {
			writeMessage(resp, http.StatusForbidden, "Forbidden: missing required role")
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// RequirePermission lets the request through when the token's user currently
// holds permission. Roles are read from the store, not from the token, so a
// demoted or deleted user loses access before the token expires.
// It must run after AuthFilter.
func RequirePermission(resolver PermissionResolver, permission string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		claims, ok := ClaimsFrom(req)
		if !ok {
			writeMessage(resp, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
			return
		}
		granted, err := HasPermission(req.Request.Context(), resolver, claims.UserID, permission)
		if err != nil {
			writeMessage(resp, http.StatusInternalServerError, "Error checking permissions")
			return
		}
		if !granted {
			writeMessage(resp, http.StatusForbidden, "Forbidden: You need '"+permission+"' permission")
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// HasPermission reports whether the user holds every one of required.
func HasPermission(ctx context.Context, resolver PermissionResolver, userID uint, required ...string) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}
	granted, err := resolver.PermissionsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func writeMessage(resp *restful.Response, status int, message string) {
	_ = resp.WriteHeaderAndJson(status, map[string]string{"message": message}, restful.MIME_JSON)
}
