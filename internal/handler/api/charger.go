package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "chargeslot/internal/handler/dto/request"
	"chargeslot/internal/handler/middleware"
	"chargeslot/internal/infra"
	"chargeslot/internal/usecase/commands"
	"chargeslot/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChargerHandler struct {
	chargerCommands commands.ChargerCommands
	chargerQueries  queries.ChargerQueries
}

func NewChargerHandler(chargerCommands commands.ChargerCommands, chargerQueries queries.ChargerQueries) *ChargerHandler {
	return &ChargerHandler{
		chargerCommands: chargerCommands,
		chargerQueries:  chargerQueries,
	}
}

// @Summary Register charger
// @Description Register a charging point owned by the current operator
// @Tags chargers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterChargerRequest true "Charger request"
// @Success 201 {object} queries.ChargerView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /chargers [post]
func (h *ChargerHandler) RegisterCharger(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.RegisterChargerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.chargerCommands.RegisterCharger(c.Request.Context(), ownerID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid charger data",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary List chargers
// @Description List charging points
// @Tags chargers
// @Produce json
// @Param active query bool false "Only active chargers"
// @Success 200 {array} queries.ChargerView
// @Router /chargers [get]
func (h *ChargerHandler) ListChargers(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") == "true"

	views, err := h.chargerQueries.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, views)
}

// @Summary Get charger
// @Description Get charging point by ID
// @Tags chargers
// @Produce json
// @Param id path string true "Charger ID"
// @Success 200 {object} queries.ChargerView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chargers/{id} [get]
func (h *ChargerHandler) GetCharger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid charger ID format",
		})
		return
	}

	view, err := h.chargerQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Charger not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Charger availability
// @Description List occupied windows for a charger in a time range
// @Tags chargers
// @Produce json
// @Param id path string true "Charger ID"
// @Param from query string false "Range start (RFC3339), default now"
// @Param to query string false "Range end (RFC3339), default now+7d"
// @Success 200 {array} queries.BookedSlot
// @Failure 400 {object} map[string]string
// @Router /chargers/{id}/availability [get]
func (h *ChargerHandler) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid charger ID format",
		})
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid time range",
		})
		return
	}

	slots, err := h.chargerQueries.ListBookedSlots(c.Request.Context(), id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, slots)
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now
	to := now.Add(7 * 24 * time.Hour)

	if s := c.Query("from"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("empty range")
	}
	return from, to, nil
}
