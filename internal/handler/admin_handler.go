package handler

import (
	"net/http"

	"github.com/Piyushbhatti32/gas-agency/internal/middleware"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/service"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"
	"github.com/Piyushbhatti32/gas-agency/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler groups the admin-only management surface: users,
// agencies, the full booking list and the audit log.
type AdminHandler struct {
	userService    service.UserService
	agencyService  service.AgencyService
	bookingService service.BookingService
	auditService   service.AuditService
}

func NewAdminHandler(userService service.UserService, agencyService service.AgencyService, bookingService service.BookingService, auditService service.AuditService) *AdminHandler {
	return &AdminHandler{
		userService:    userService,
		agencyService:  agencyService,
		bookingService: bookingService,
		auditService:   auditService,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id/toggle-status", h.ToggleUserStatus)
		admin.POST("/users/:id/reset-barrels", h.ResetUserBarrels)
		admin.DELETE("/users/:id", h.DeleteUser)

		admin.GET("/agencies", h.ListAgencies)
		admin.POST("/agencies/:id/verify", h.VerifyAgency)
		admin.POST("/agencies/:id/toggle-status", h.ToggleAgencyStatus)

		admin.GET("/logs", h.ListLogs)
	}
}

// ListLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/admin/logs [get]
func (h *AdminHandler) ListLogs(c *gin.Context) {
	params := pagination.Parse(c)
	logs, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}

// ListBookings returns all bookings, optionally filtered by status
// @Summary      List all bookings
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Router       /api/admin/bookings [get]
func (h *AdminHandler) ListBookings(c *gin.Context) {
	params := pagination.Parse(c)
	bookings, total, err := h.bookingService.ListAll(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, params.Page, params.Limit))
}

// ListUsers returns all registered users
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)
	users, total, err := h.userService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, users, total, params.Page, params.Limit))
}

// ToggleUserStatus blocks or unblocks a user
// @Summary      Toggle user active status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/users/{id}/toggle-status [post]
func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	userID, adminID, ok := h.pathAndActor(c)
	if !ok {
		return
	}

	user, err := h.userService.ToggleStatus(c.Request.Context(), userID, adminID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

type resetBarrelsRequest struct {
	Count *int `json:"count"`
}

// ResetUserBarrels sets one user's barrel balance; defaults to the annual quota
// @Summary      Reset a user's barrels
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "User ID"
// @Param        payload  body      resetBarrelsRequest  false  "Optional explicit count"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      404      {object}  response.Response
// @Router       /api/admin/users/{id}/reset-barrels [post]
func (h *AdminHandler) ResetUserBarrels(c *gin.Context) {
	userID, adminID, ok := h.pathAndActor(c)
	if !ok {
		return
	}

	count := model.DefaultAnnualBarrels
	var req resetBarrelsRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Count != nil {
		count = *req.Count
	}

	user, err := h.userService.ResetBarrels(c.Request.Context(), userID, adminID, count)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeleteUser removes a user account
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, adminID, ok := h.pathAndActor(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID, adminID); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "user deleted"}))
}

// ListAgencies returns all agencies including unverified ones
// @Summary      List agencies
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/admin/agencies [get]
func (h *AdminHandler) ListAgencies(c *gin.Context) {
	params := pagination.Parse(c)
	agencies, total, err := h.agencyService.ListAll(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, agencies, total, params.Page, params.Limit))
}

// VerifyAgency approves a pending agency registration
// @Summary      Verify agency
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Agency ID"
// @Success      200  {object}  response.Response{data=model.Agency}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/agencies/{id}/verify [post]
func (h *AdminHandler) VerifyAgency(c *gin.Context) {
	agencyID, adminID, ok := h.pathAndActor(c)
	if !ok {
		return
	}

	agency, err := h.agencyService.Verify(c.Request.Context(), agencyID, adminID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agency))
}

// ToggleAgencyStatus activates or deactivates an agency
// @Summary      Toggle agency active status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Agency ID"
// @Success      200  {object}  response.Response{data=model.Agency}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/agencies/{id}/toggle-status [post]
func (h *AdminHandler) ToggleAgencyStatus(c *gin.Context) {
	agencyID, adminID, ok := h.pathAndActor(c)
	if !ok {
		return
	}

	agency, err := h.agencyService.ToggleStatus(c.Request.Context(), agencyID, adminID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agency))
}

func (h *AdminHandler) pathAndActor(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return uuid.Nil, uuid.Nil, false
	}
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return uuid.Nil, uuid.Nil, false
	}
	return id, adminID, true
}
