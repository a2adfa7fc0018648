// Package server assembles the HTTP and gRPC front ends from the
// application services.
package server

import (
	"fmt"
	"net/http"
	"time"

	"bookstore/config"
	"bookstore/controllers"
	"bookstore/middleware"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Routes is implemented by every controller.
type Routes interface {
	RegisterRoutes(ws *restful.WebService)
}

// NewHTTPHandler builds the go-restful container serving the JSON API, the
// OpenAPI document, metrics, health and the single-page front end.
func NewHTTPHandler(cfg *config.Config, svc *Services, db controllers.Pinger, logger *zap.Logger) (*restful.Container, error) {
	container := restful.NewContainer()
	container.DoNotRecover(false)
	container.RecoverHandler(middleware.RecoverHandler(logger, cfg.IsDevelopment()))

	metrics := middleware.NewMetrics(cfg.ServiceName)
	container.Filter(middleware.LoggingFilter(logger))
	container.Filter(metrics.Filter())
	if cfg.RateLimit.RPS > 0 {
		container.Filter(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger).Filter())
	}

	for _, ctl := range []Routes{
		controllers.NewAccountController(svc.Accounts, logger),
		controllers.NewUserController(svc.Users, svc.Tokens, svc.Store.Roles, logger),
		controllers.NewBookController(svc.Books, svc.Tokens, svc.Store.Roles, logger),
		controllers.NewAuthorController(svc.Authors, svc.Tokens, svc.Store.Roles, logger),
		controllers.NewHealthController(db, logger),
	} {
		ws := new(restful.WebService)
		ctl.RegisterRoutes(ws)
		container.Add(ws)
	}

	container.Add(newOpenAPIService(container, cfg.ServiceName))
	container.Handle("/metrics", metrics.Handler())

	spa, err := NewSPAHandler(cfg.SPA, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	container.Handle("/", spa)

	return container, nil
}

// NewHTTPServer wraps handler in an http.Server listening on the configured port.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
