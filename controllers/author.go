package controllers

import (
	"net/http"

	"bookstore/auth"
	"bookstore/models"
	"bookstore/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// AuthorController serves the /author routes.
type AuthorController struct {
	authorService services.AuthorService
	tokens        *auth.TokenManager
	permissions   auth.PermissionResolver
	logger        *zap.Logger
}

// NewAuthorController creates an AuthorController.
func NewAuthorController(authorService services.AuthorService, tokens *auth.TokenManager, permissions auth.PermissionResolver, logger *zap.Logger) *AuthorController {
	return &AuthorController{authorService: authorService, tokens: tokens, permissions: permissions, logger: logger.Named("authors")}
}

// PaginatedAuthorsResponse is one page of authors.
type PaginatedAuthorsResponse services.Page[models.Author]

// RegisterRoutes sets up the author routes. Reads are public, writes need authors:write.
func (ctl *AuthorController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/author").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"authors"}
	canWrite := auth.RequirePermission(ctl.permissions, models.PermAuthorsWrite)

	ws.Route(withPagination(ws, ws.GET("").To(ctl.listAuthorsHandler)).
		Doc("List authors").
		Param(ws.QueryParameter("q", "Filter by name")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedAuthorsResponse{}).
		Returns(http.StatusOK, "OK", PaginatedAuthorsResponse{}))

	ws.Route(ws.GET("/{id}").To(ctl.getAuthorHandler).
		Doc("Get an author").
		Param(ws.PathParameter("id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(models.Author{}).
		Returns(http.StatusOK, "OK", models.Author{}).
		Returns(http.StatusNotFound, "Author not found", ErrorResponse{}))

	ws.Route(ws.PUT("").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.createAuthorHandler).
		Doc("Create an author").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.AuthorInput{}).
		Returns(http.StatusCreated, "Author created", models.Author{}).
		Returns(http.StatusBadRequest, "Invalid request body", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}))

	ws.Route(ws.PATCH("/{id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.updateAuthorHandler).
		Doc("Rename an author").
		Param(ws.PathParameter("id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.AuthorInput{}).
		Returns(http.StatusOK, "Author updated", models.Author{}).
		Returns(http.StatusNotFound, "Author not found", ErrorResponse{}))

	ws.Route(ws.DELETE("/{id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.deleteAuthorHandler).
		Doc("Delete an author and its book links").
		Param(ws.PathParameter("id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Author deleted", nil).
		Returns(http.StatusNotFound, "Author not found", ErrorResponse{}))

	ws.Route(ws.GET("/{id}/book").To(ctl.listBooksHandler).
		Doc("List the books of an author").
		Param(ws.PathParameter("id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]models.Book{}).
		Returns(http.StatusOK, "OK", []models.Book{}).
		Returns(http.StatusNotFound, "Author not found", ErrorResponse{}))
}

func (ctl *AuthorController) listAuthorsHandler(request *restful.Request, response *restful.Response) {
	page, pageSize := pagination(request)
	authors, err := ctl.authorService.ListAuthors(request.Request.Context(), request.QueryParameter("q"), page, pageSize)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedAuthorsResponse(*authors), restful.MIME_JSON)
}

func (ctl *AuthorController) getAuthorHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	author, err := ctl.authorService.GetAuthor(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, author, restful.MIME_JSON)
}

func (ctl *AuthorController) createAuthorHandler(request *restful.Request, response *restful.Response) {
	input := new(services.AuthorInput)
	if !readEntity(request, response, input) {
		return
	}
	author, err := ctl.authorService.CreateAuthor(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, author, restful.MIME_JSON)
}

func (ctl *AuthorController) updateAuthorHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	input := new(services.AuthorInput)
	if !readEntity(request, response, input) {
		return
	}
	author, err := ctl.authorService.UpdateAuthor(request.Request.Context(), id, input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, author, restful.MIME_JSON)
}

func (ctl *AuthorController) deleteAuthorHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	if err := ctl.authorService.DeleteAuthor(request.Request.Context(), id); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "Author deleted")
}

func (ctl *AuthorController) listBooksHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	books, err := ctl.authorService.BooksOfAuthor(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, books, restful.MIME_JSON)
}
