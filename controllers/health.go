package controllers

import (
	"context"
	"net/http"
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthController reports whether the database answers.
type HealthController struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthController creates a HealthController.
func NewHealthController(db Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, logger: logger.Named("health")}
}

// RegisterRoutes sets up GET /health.
func (ctl *HealthController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/health").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(ctl.healthHandler).
		Doc("Liveness and database reachability").
		Returns(http.StatusOK, "Healthy", nil).
		Returns(http.StatusServiceUnavailable, "Database unreachable", nil))
}

func (ctl *HealthController) healthHandler(request *restful.Request, response *restful.Response) {
	ctx, cancel := context.WithTimeout(request.Request.Context(), 2*time.Second)
	defer cancel()
	if err := ctl.db.PingContext(ctx); err != nil {
		ctl.logger.Warn("Health check failed", zap.Error(err))
		_ = response.WriteHeaderAndJson(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, restful.MIME_JSON)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, map[string]string{"status": "ok"}, restful.MIME_JSON)
}
