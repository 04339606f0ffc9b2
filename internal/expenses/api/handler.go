package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	"github.com/morganoide1/constructora-sub000/internal/expenses/service"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

type LiquidationHandler struct {
	svc *service.LiquidationService
}

func NewLiquidationHandler(svc *service.LiquidationService) *LiquidationHandler {
	return &LiquidationHandler{svc: svc}
}

func (h *LiquidationHandler) RegisterRoutes(r *gin.RouterGroup) {
	buildings := r.Group("/buildings/:buildingId/liquidations/:month/:year")
	{
		buildings.GET("", h.GetOrSuggest)
		buildings.PUT("", h.SaveDraft)
		buildings.GET("/charges", h.ListCharges)
	}
	r.POST("/liquidations/:id/settle", h.Settle)
	r.PUT("/properties/:id/coefficient", h.SetCoefficient)
	r.POST("/charges/:id/pay", h.PayCharge)
}

func periodParams(c *gin.Context) (buildingID int64, month, year int, ok bool) {
	buildingID, err := strconv.ParseInt(c.Param("buildingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid building id"})
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return 0, 0, 0, false
	}
	year, err = strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, 0, false
	}
	return buildingID, month, year, true
}

func (h *LiquidationHandler) GetOrSuggest(c *gin.Context) {
	buildingID, month, year, ok := periodParams(c)
	if !ok {
		return
	}
	liq, err := h.svc.GetOrSuggest(c.Request.Context(), buildingID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, liq)
}

func (h *LiquidationHandler) SaveDraft(c *gin.Context) {
	buildingID, month, year, ok := periodParams(c)
	if !ok {
		return
	}
	var req SaveDraftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	in := service.SaveDraftInput{
		BuildingID: buildingID,
		Month:      month,
		Year:       year,
		Currency:   ledgerdomain.Currency(req.Currency),
		Notes:      req.Notes,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date, expected YYYY-MM-DD"})
			return
		}
		in.DueDate = &due
	}
	for _, item := range req.Items {
		amount, err := decimal.NewFromString(item.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item amount format"})
			return
		}
		in.Items = append(in.Items, service.ItemInput{
			Description: item.Description,
			Amount:      amount,
			Recurring:   item.Recurring,
		})
	}

	liq, err := h.svc.SaveDraft(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, liq)
}

func (h *LiquidationHandler) Settle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid liquidation id"})
		return
	}
	result, err := h.svc.Settle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LiquidationHandler) ListCharges(c *gin.Context) {
	buildingID, month, year, ok := periodParams(c)
	if !ok {
		return
	}
	charges, err := h.svc.ListCharges(c.Request.Context(), buildingID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charges)
}

func (h *LiquidationHandler) SetCoefficient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}
	var req SetCoefficientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	value, err := decimal.NewFromString(req.Coefficient)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coefficient format"})
		return
	}
	if err := h.svc.SetCoefficient(c.Request.Context(), id, value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *LiquidationHandler) PayCharge(c *gin.Context) {
	var req PayChargeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	charge, err := h.svc.PayCharge(c.Request.Context(), service.PayChargeInput{
		ChargeID:  c.Param("id"),
		AccountID: req.AccountID,
		UserID:    c.GetString("x-user-id"),
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ledgerdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrNoCoefficients),
		errors.Is(err, domain.ErrChargeAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
