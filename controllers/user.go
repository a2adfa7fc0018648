package controllers

import (
	"net/http"
	"time"

	"bookstore/auth"
	"bookstore/models"
	"bookstore/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// UserController serves the /user routes. Every route needs a token.
type UserController struct {
	userService services.UserService
	tokens      *auth.TokenManager
	permissions auth.PermissionResolver
	logger      *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(userService services.UserService, tokens *auth.TokenManager, permissions auth.PermissionResolver, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, tokens: tokens, permissions: permissions, logger: logger.Named("users")}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID             uint      `json:"id"`
	UserName       string    `json:"user_name"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PaginatedUsersResponse is one page of users.
type PaginatedUsersResponse struct {
	Items    []UserResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:             user.ID,
		UserName:       user.UserName,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		EmailConfirmed: user.EmailConfirmed,
		Roles:          user.RoleNames(),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// RegisterRoutes sets up the /user routes. Every route needs a valid token.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/user").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Filter(ctl.tokens.AuthFilter())
	tags := []string{"users"}

	ws.Route(withPagination(ws, ws.GET("").
		Filter(auth.RequirePermission(ctl.permissions, models.PermUsersList)).
		To(ctl.listUsersHandler)).
		Doc("List users").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedUsersResponse{}).
		Returns(http.StatusOK, "OK", PaginatedUsersResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}))

	ws.Route(ws.GET("/me").To(ctl.currentUserHandler).
		Doc("Get the signed-in user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "OK", UserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.PATCH("/password").To(ctl.changePasswordHandler).
		Doc("Change the password of the signed-in user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.ChangePasswordInput{}).
		Returns(http.StatusOK, "Password changed", nil).
		Returns(http.StatusBadRequest, "Validation failed", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.GET("/{user-id}").To(ctl.getUserByIDHandler).
		Doc("Get user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "User found", UserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}))

	ws.Route(ws.PATCH("/{user-id}").To(ctl.updateUserHandler).
		Doc("Update user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateUserInput{}).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "User updated successfully", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body or user ID", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}).
		Returns(http.StatusConflict, "Email conflict", ErrorResponse{}))

	ws.Route(ws.DELETE("/{user-id}").
		Filter(auth.RequirePermission(ctl.permissions, models.PermUsersManage)).
		To(ctl.deleteUserHandler).
		Doc("Delete user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "User deleted successfully", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}).
		Returns(http.StatusForbidden, "Forbidden", ErrorResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}))
}

// requester builds the service-level view of the caller from the token claims.
func (ctl *UserController) requester(request *restful.Request, response *restful.Response) (services.Requester, bool) {
	claims, ok := auth.ClaimsFrom(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
		return services.Requester{}, false
	}
	canManage, err := auth.HasPermission(request.Request.Context(), ctl.permissions, claims.UserID, models.PermUsersManage)
	if err != nil {
		ctl.logger.Error("Permission lookup failed", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Error checking permissions")
		return services.Requester{}, false
	}
	return services.Requester{UserID: claims.UserID, CanManageUsers: canManage}, true
}

func (ctl *UserController) listUsersHandler(request *restful.Request, response *restful.Response) {
	page, pageSize := pagination(request)
	users, err := ctl.userService.ListUsers(request.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}

	userResponses := make([]UserResponse, len(users.Items))
	for i := range users.Items {
		userResponses[i] = mapModelToUserResponse(&users.Items[i])
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedUsersResponse{
		Items:    userResponses,
		Total:    users.Total,
		Page:     users.Page,
		PageSize: users.PageSize,
	}, restful.MIME_JSON)
}

func (ctl *UserController) currentUserHandler(request *restful.Request, response *restful.Response) {
	requester, ok := ctl.requester(request, response)
	if !ok {
		return
	}
	user, err := ctl.userService.GetUserByID(request.Request.Context(), requester.UserID, requester)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *UserController) changePasswordHandler(request *restful.Request, response *restful.Response) {
	claims, ok := auth.ClaimsFrom(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
		return
	}
	input := new(services.ChangePasswordInput)
	if !readEntity(request, response, input) {
		return
	}
	if err := ctl.userService.ChangePassword(request.Request.Context(), claims.UserID, input); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "Password changed")
}

func (ctl *UserController) getUserByIDHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requester, ok := ctl.requester(request, response)
	if !ok {
		return
	}
	user, err := ctl.userService.GetUserByID(request.Request.Context(), targetUserID, requester)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *UserController) updateUserHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requester, ok := ctl.requester(request, response)
	if !ok {
		return
	}
	input := new(services.UpdateUserInput)
	if !readEntity(request, response, input) {
		return
	}
	updatedUser, err := ctl.userService.UpdateUser(request.Request.Context(), targetUserID, requester, input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(updatedUser), restful.MIME_JSON)
}

func (ctl *UserController) deleteUserHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requester, ok := ctl.requester(request, response)
	if !ok {
		return
	}
	if err := ctl.userService.DeleteUser(request.Request.Context(), targetUserID, requester); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "User deleted")
}
