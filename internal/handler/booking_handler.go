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

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	booking := router.Group("/api/booking")
	{
		booking.POST("/create", middleware.RequireRole(model.RoleUser), h.Create)
		booking.GET("/history", middleware.RequireRole(model.RoleUser), h.History)

		booking.POST("/approve", middleware.RequireRole(model.RoleAdmin, model.RoleAgency), h.Approve)
		booking.POST("/reject", middleware.RequireRole(model.RoleAdmin, model.RoleAgency), h.Reject)
		booking.POST("/deliver", middleware.RequireRole(model.RoleAdmin, model.RoleAgency), h.Deliver)
		booking.POST("/schedule", middleware.RequireRole(model.RoleAdmin, model.RoleAgency), h.Schedule)
	}
}

type bookingActionRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Reason    string `json:"reason"`
	Notes     string `json:"delivery_notes"`
}

// Create places a new cylinder booking
// @Summary      Create a booking
// @Description  Creates a PENDING booking; regular bookings reserve one barrel from the annual quota
// @Tags         booking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBookingRequest  true  "Booking Payload"
// @Success      201      {object}  response.Response{data=model.Booking}
// @Failure      400      {object}  response.Response
// @Router       /api/booking/create [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// The booking is always placed for the authenticated user.
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}
	req.UserID = userID.String()

	booking, err := h.bookingService.Create(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, booking))
}

// History lists the authenticated user's bookings
// @Summary      Booking history
// @Tags         booking
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/booking/history [get]
func (h *BookingHandler) History(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	params := pagination.Parse(c)
	bookings, total, err := h.bookingService.HistoryForUser(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, params.Page, params.Limit))
}

// Approve moves a PENDING booking to APPROVED
// @Summary      Approve a booking
// @Tags         booking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bookingActionRequest  true  "Approval Payload"
// @Success      200      {object}  response.Response{data=model.Booking}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/booking/approve [post]
func (h *BookingHandler) Approve(c *gin.Context) {
	bookingID, actorID, ok := h.actionIDs(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Approve(c.Request.Context(), bookingID, actorID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// Reject moves a PENDING booking to REJECTED and restores the reserved barrel
// @Summary      Reject a booking
// @Tags         booking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bookingActionRequest  true  "Rejection Payload"
// @Success      200      {object}  response.Response{data=model.Booking}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/booking/reject [post]
func (h *BookingHandler) Reject(c *gin.Context) {
	var req bookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid booking id"))
		return
	}
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	booking, err := h.bookingService.Reject(c.Request.Context(), bookingID, actorID, req.Reason)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// Deliver moves an APPROVED booking to DELIVERED
// @Summary      Mark a booking delivered
// @Tags         booking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bookingActionRequest  true  "Delivery Payload"
// @Success      200      {object}  response.Response{data=model.Booking}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/booking/deliver [post]
func (h *BookingHandler) Deliver(c *gin.Context) {
	var req bookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid booking id"))
		return
	}
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	booking, err := h.bookingService.Deliver(c.Request.Context(), bookingID, actorID, req.Notes)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// Schedule sets the delivery slot for an APPROVED booking
// @Summary      Schedule a delivery
// @Tags         booking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ScheduleBookingRequest  true  "Schedule Payload"
// @Success      200      {object}  response.Response{data=model.Booking}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/booking/schedule [post]
func (h *BookingHandler) Schedule(c *gin.Context) {
	var req service.ScheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}
	req.AdminID = actorID.String()

	booking, err := h.bookingService.Schedule(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

func (h *BookingHandler) actionIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var req bookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return uuid.Nil, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid booking id"))
		return uuid.Nil, uuid.Nil, false
	}

	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return uuid.Nil, uuid.Nil, false
	}
	return bookingID, actorID, true
}
