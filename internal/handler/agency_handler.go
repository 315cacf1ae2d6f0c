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

type AgencyHandler struct {
	agencyService  service.AgencyService
	bookingService service.BookingService
}

func NewAgencyHandler(agencyService service.AgencyService, bookingService service.BookingService) *AgencyHandler {
	return &AgencyHandler{agencyService: agencyService, bookingService: bookingService}
}

func (h *AgencyHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public directory
	router.GET("/api/agencies", h.Directory)
	router.GET("/api/agencies/:id", h.GetAgency)

	// Agency self-service
	agency := router.Group("/api/agency", middleware.RequireRole(model.RoleAgency))
	{
		agency.PUT("/profile", h.UpdateProfile)
		agency.GET("/bookings", h.Bookings)
	}
}

// Directory lists verified, active agencies
// @Summary      Agency directory
// @Tags         agencies
// @Produce      json
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/agencies [get]
func (h *AgencyHandler) Directory(c *gin.Context) {
	params := pagination.Parse(c)
	agencies, total, err := h.agencyService.Directory(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, agencies, total, params.Page, params.Limit))
}

// GetAgency returns one agency's public profile
// @Summary      Agency detail
// @Tags         agencies
// @Produce      json
// @Param        id   path      string  true  "Agency ID"
// @Success      200  {object}  response.Response{data=model.Agency}
// @Failure      404  {object}  response.Response
// @Router       /api/agencies/{id} [get]
func (h *AgencyHandler) GetAgency(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid agency id"))
		return
	}

	agency, err := h.agencyService.Get(c.Request.Context(), id)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agency))
}

// UpdateProfile updates the authenticated agency's profile
// @Summary      Update agency profile
// @Tags         agencies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateAgencyRequest  true  "Profile Payload"
// @Success      200      {object}  response.Response{data=model.Agency}
// @Failure      400      {object}  response.Response
// @Router       /api/agency/profile [put]
func (h *AgencyHandler) UpdateProfile(c *gin.Context) {
	agencyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Agency ID not found in context"))
		return
	}

	var req service.UpdateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agency, err := h.agencyService.UpdateProfile(c.Request.Context(), agencyID, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agency))
}

// Bookings lists the bookings routed to the authenticated agency
// @Summary      Agency booking queue
// @Tags         agencies
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Router       /api/agency/bookings [get]
func (h *AgencyHandler) Bookings(c *gin.Context) {
	agencyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Agency ID not found in context"))
		return
	}

	params := pagination.Parse(c)
	bookings, total, err := h.bookingService.QueueForAgency(c.Request.Context(), agencyID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, params.Page, params.Limit))
}
