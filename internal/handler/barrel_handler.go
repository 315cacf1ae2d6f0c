package handler

import (
	"net/http"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/middleware"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/service"
	"github.com/Piyushbhatti32/gas-agency/pkg/response"

	"github.com/gin-gonic/gin"
)

// BarrelHandler exposes the annual allocation reset: the manual trigger
// and the stats endpoint the admin dashboard polls.
type BarrelHandler struct {
	ledgerService service.LedgerService
}

func NewBarrelHandler(ledgerService service.LedgerService) *BarrelHandler {
	return &BarrelHandler{ledgerService: ledgerService}
}

func (h *BarrelHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/barrel-reset", h.ManualReset)
		admin.GET("/barrel-reset", h.Stats)
	}
}

// ManualReset resets every user's balance to the annual quota
// @Summary      Trigger a manual barrel reset
// @Tags         barrels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/barrel-reset [post]
func (h *BarrelHandler) ManualReset(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	if err := h.ledgerService.ManualReset(c.Request.Context(), adminID); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "barrel reset completed"}))
}

// Stats returns allocation stats and whether the annual reset is due
// @Summary      Barrel allocation stats
// @Tags         barrels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.BarrelStatsResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/admin/barrel-reset [get]
func (h *BarrelHandler) Stats(c *gin.Context) {
	stats, err := h.ledgerService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	due, err := h.ledgerService.IsResetDue(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"stats":           stats,
		"is_reset_needed": due,
	}))
}
