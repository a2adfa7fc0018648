package controllers

import (
	"errors"
	"net/http"

	"bookstore/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// AccountController serves the public /account routes.
type AccountController struct {
	accountService services.AccountService
	logger         *zap.Logger
}

// NewAccountController creates an AccountController.
func NewAccountController(accountService services.AccountService, logger *zap.Logger) *AccountController {
	return &AccountController{accountService: accountService, logger: logger.Named("account")}
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterRoutes sets up the public /account routes.
func (ctl *AccountController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/account").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"account"}

	ws.Route(ws.POST("/register").To(ctl.registerHandler).
		Doc("Register a new user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RegisterInput{}).
		Returns(http.StatusCreated, "User created successfully", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", ErrorResponse{}).
		Returns(http.StatusConflict, "Username or Email already exists", ErrorResponse{}))

	ws.Route(ws.POST("/login").To(ctl.loginHandler).
		Doc("Exchange credentials for a bearer token").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.LoginInput{}).
		Returns(http.StatusOK, "OK", LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", ErrorResponse{}))

	ws.Route(ws.POST("/forgot-password").To(ctl.forgotPasswordHandler).
		Doc("Email a newly generated password").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.ForgotPasswordInput{}).
		Returns(http.StatusOK, "Request accepted", nil).
		Returns(http.StatusBadRequest, "Invalid email", ErrorResponse{}))

	ws.Route(ws.GET("/confirm-email").To(ctl.confirmEmailHandler).
		Doc("Confirm an email address with the code sent at registration").
		Param(ws.QueryParameter("email", "Address being confirmed").Required(true)).
		Param(ws.QueryParameter("code", "Confirmation code").Required(true)).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Email confirmed", nil).
		Returns(http.StatusBadRequest, "Invalid or expired code", ErrorResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}))
}

func (ctl *AccountController) registerHandler(request *restful.Request, response *restful.Response) {
	input := new(services.RegisterInput)
	if !readEntity(request, response, input) {
		return
	}
	user, err := ctl.accountService.Register(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *AccountController) loginHandler(request *restful.Request, response *restful.Response) {
	input := new(services.LoginInput)
	if !readEntity(request, response, input) {
		return
	}
	token, user, err := ctl.accountService.Login(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token, User: mapModelToUserResponse(user)}, restful.MIME_JSON)
}

// forgotPasswordHandler answers 200 for every well-formed request, whether or
// not the address is registered.
func (ctl *AccountController) forgotPasswordHandler(request *restful.Request, response *restful.Response) {
	input := new(services.ForgotPasswordInput)
	if !readEntity(request, response, input) {
		return
	}
	err := ctl.accountService.ForgotPassword(request.Request.Context(), input)
	if errors.Is(err, services.ErrValidation) {
		handleServiceError(response, ctl.logger, err)
		return
	}
	if err != nil {
		ctl.logger.Error("Password reset failed", zap.Error(err))
	}
	writeMessage(response, http.StatusOK, "If the address is registered, a new password has been sent")
}

func (ctl *AccountController) confirmEmailHandler(request *restful.Request, response *restful.Response) {
	err := ctl.accountService.ConfirmEmail(request.Request.Context(), request.QueryParameter("email"), request.QueryParameter("code"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	writeMessage(response, http.StatusOK, "Email confirmed")
}
