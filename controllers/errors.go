package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"bookstore/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeMessage(response *restful.Response, status int, message string) {
	_ = response.WriteHeaderAndJson(status, map[string]string{"message": message}, restful.MIME_JSON)
}

// handleServiceError translates service errors to HTTP responses. Errors
// that map to no sentinel are logged and reported as 500.
func handleServiceError(response *restful.Response, logger *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Fields: verr.Fields}, restful.MIME_JSON)
	case errors.Is(err, services.ErrValidation):
		writeMessage(response, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeMessage(response, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeMessage(response, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeMessage(response, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(response, http.StatusUnauthorized, "Invalid credentials")
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "An internal error occurred")
	}
}

// readEntity decodes the JSON body into entity and answers 400 on failure.
func readEntity(request *restful.Request, response *restful.Response, entity any) bool {
	if err := request.ReadEntity(entity); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer path parameter and answers 400 otherwise.
func pathID(request *restful.Request, response *restful.Response, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 32)
	if err != nil || id == 0 {
		writeMessage(response, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

func pagination(request *restful.Request) (page int, pageSize int) {
	page, err := strconv.Atoi(request.QueryParameter("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(request.QueryParameter("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func withPagination(ws *restful.WebService, rb *restful.RouteBuilder) *restful.RouteBuilder {
	return rb.
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Items per page (default 10, max 100)").DataType("integer").DefaultValue("10"))
}
