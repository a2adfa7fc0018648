// Package middleware holds the go-restful container filters shared by every
// web service: request logging, metrics, rate limiting and panic recovery.
package middleware

import (
	"net"
	"strings"
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// LoggingFilter writes one line per request after the handler returns. An
// incoming X-Request-ID is kept, otherwise a new one is generated; either way
// it is echoed on the response.
func LoggingFilter(logger *zap.Logger) restful.FilterFunction {
	logger = logger.Named("http")
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		requestID := req.HeaderParameter(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		resp.AddHeader(RequestIDHeader, requestID)

		chain.ProcessFilter(req, resp)

		logger.Info("Request",
			zap.String("request_id", requestID),
			zap.String("client_ip", ClientIP(req)),
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
		)
	}
}

// ClientIP prefers the first X-Forwarded-For hop and falls back to the peer address.
func ClientIP(req *restful.Request) string {
	if fwd := req.HeaderParameter("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(req.Request.RemoteAddr)
	if err != nil {
		return req.Request.RemoteAddr
	}
	return host
}
