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

// BookController serves the /book routes.
type BookController struct {
	bookService services.BookService
	tokens      *auth.TokenManager
	permissions auth.PermissionResolver
	logger      *zap.Logger
}

// NewBookController creates a BookController.
func NewBookController(bookService services.BookService, tokens *auth.TokenManager, permissions auth.PermissionResolver, logger *zap.Logger) *BookController {
	return &BookController{bookService: bookService, tokens: tokens, permissions: permissions, logger: logger.Named("books")}
}

// PaginatedBooksResponse is one page of books.
type PaginatedBooksResponse services.Page[models.Book]

// RegisterRoutes sets up the /book routes. Reads are public, writes need the
// books:write permission.
func (ctl *BookController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/book").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"books"}
	canWrite := auth.RequirePermission(ctl.permissions, models.PermBooksWrite)

	ws.Route(withPagination(ws, ws.GET("").To(ctl.listBooksHandler)).
		Doc("List books").
		Param(ws.QueryParameter("q", "Filter by title")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedBooksResponse{}).
		Returns(http.StatusOK, "OK", PaginatedBooksResponse{}))

	ws.Route(ws.GET("/{id}").To(ctl.getBookHandler).
		Doc("Get a book").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(models.Book{}).
		Returns(http.StatusOK, "OK", models.Book{}).
		Returns(http.StatusBadRequest, "Invalid id", ErrorResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.PUT("").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.createBookHandler).
		Doc("Create a book").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.BookInput{}).
		Returns(http.StatusCreated, "Book created", models.Book{}).
		Returns(http.StatusBadRequest, "Invalid request body", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}))

	ws.Route(ws.PATCH("/{id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.updateBookHandler).
		Doc("Update a book").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateBookInput{}).
		Returns(http.StatusOK, "Book updated", models.Book{}).
		Returns(http.StatusBadRequest, "Invalid request body or id", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.DELETE("/{id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.deleteBookHandler).
		Doc("Delete a book and its author links").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Book deleted", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.GET("/{id}/author").To(ctl.listAuthorsHandler).
		Doc("List the authors of a book").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]models.Author{}).
		Returns(http.StatusOK, "OK", []models.Author{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.PUT("/{id}/author/{author-id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.linkAuthorHandler).
		Doc("Add an author to a book").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Param(ws.PathParameter("author-id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusCreated, "Author linked", nil).
		Returns(http.StatusNotFound, "Book or author not found", ErrorResponse{}).
		Returns(http.StatusConflict, "Author already linked", ErrorResponse{}))

	ws.Route(ws.DELETE("/{id}/author/{author-id}").Filter(ctl.tokens.AuthFilter()).Filter(canWrite).To(ctl.unlinkAuthorHandler).
		Doc("Remove an author from a book").
		Param(ws.PathParameter("id", "Identifier of the book").DataType("integer")).
		Param(ws.PathParameter("author-id", "Identifier of the author").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Author unlinked", nil).
		Returns(http.StatusNotFound, "Link not found", ErrorResponse{}))
}

func (ctl *BookController) listBooksHandler(request *restful.Request, response *restful.Response) {
	page, pageSize := pagination(request)
	books, err := ctl.bookService.ListBooks(request.Request.Context(), request.QueryParameter("q"), page, pageSize)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedBooksResponse(*books), restful.MIME_JSON)
}

func (ctl *BookController) getBookHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	book, err := ctl.bookService.GetBook(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, book, restful.MIME_JSON)
}

func (ctl *BookController) createBookHandler(request *restful.Request, response *restful.Response) {
	input := new(services.BookInput)
	if !readEntity(request, response, input) {
		return
	}
	book, err := ctl.bookService.CreateBook(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, book, restful.MIME_JSON)
}

func (ctl *BookController) updateBookHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	input := new(services.UpdateBookInput)
	if !readEntity(request, response, input) {
		return
	}
	book, err := ctl.bookService.UpdateBook(request.Request.Context(), id, input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, book, restful.MIME_JSON)
}

func (ctl *BookController) deleteBookHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	if err := ctl.bookService.DeleteBook(request.Request.Context(), id); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "Book deleted")
}

func (ctl *BookController) listAuthorsHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	authors, err := ctl.bookService.AuthorsOfBook(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, authors, restful.MIME_JSON)
}

func (ctl *BookController) linkAuthorHandler(request *restful.Request, response *restful.Response) {
	bookID, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	authorID, ok := pathID(request, response, "author-id")
	if !ok {
		return
	}
	if err := ctl.bookService.LinkAuthor(request.Request.Context(), bookID, authorID); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusCreated, "Author linked")
}

func (ctl *BookController) unlinkAuthorHandler(request *restful.Request, response *restful.Response) {
	bookID, ok := pathID(request, response, "id")
	if !ok {
		return
	}
	authorID, ok := pathID(request, response, "author-id")
	if !ok {
		return
	}
	if err := ctl.bookService.UnlinkAuthor(request.Request.Context(), bookID, authorID); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "Author unlinked")
}
