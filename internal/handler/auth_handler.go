package handler

import (
	"net/http"

	"github.com/Piyushbhatti32/gas-agency/internal/middleware"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/service"
	"github.com/Piyushbhatti32/gas-agency/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService   service.AuthService
	userService   service.UserService
	agencyService service.AgencyService
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, agencyService service.AgencyService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, agencyService: agencyService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/agency-register", h.RegisterAgency)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireRole(model.RoleUser, model.RoleAdmin, model.RoleAgency), h.GetMe)
	}
}

// Register creates a user account
// @Summary      Register a new user
// @Description  Creates a user account starting with the full annual cylinder allocation
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterUserRequest  true  "Registration Payload"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// RegisterAgency creates an agency account pending admin verification
// @Summary      Register a new agency
// @Description  Creates an agency account that cannot log in until verified by an admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterAgencyRequest  true  "Agency Registration Payload"
// @Success      201      {object}  response.Response{data=model.Agency}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/auth/agency-register [post]
func (h *AuthHandler) RegisterAgency(c *gin.Context) {
	var req service.RegisterAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agency, err := h.authService.RegisterAgency(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, agency))
}

// Login authenticates a user or agency by email and password
// @Summary      Login
// @Description  Resolves the email against users first, then agencies, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout clears the auth cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// GetMe returns the authenticated account
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	if middleware.CurrentRole(c) == model.RoleAgency {
		agency, err := h.agencyService.Get(c.Request.Context(), userID)
		if err != nil {
			status := statusFor(err)
			c.JSON(status, response.Error(status, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, agency))
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
