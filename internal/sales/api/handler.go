package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	"github.com/morganoide1/constructora-sub000/internal/sales/domain"
	"github.com/morganoide1/constructora-sub000/internal/sales/service"
)

type SaleHandler struct {
	svc *service.SaleService
}

func NewSaleHandler(svc *service.SaleService) *SaleHandler {
	return &SaleHandler{svc: svc}
}

func (h *SaleHandler) RegisterRoutes(r *gin.RouterGroup) {
	sales := r.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.PATCH("/:id", h.UpdateSale)
		sales.POST("/:id/payments", h.ApplyPayment)
		sales.POST("/:id/status", h.ChangeStatus)
		sales.POST("/:id/mark-overdue", h.MarkOverdue)
	}
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req CreateSaleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price format"})
		return
	}
	down := decimal.Zero
	if req.DownPayment != "" {
		down, err = decimal.NewFromString(req.DownPayment)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid down payment format"})
			return
		}
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	sale, err := h.svc.CreateSale(c.Request.Context(), service.CreateSaleInput{
		PropertyID:       req.PropertyID,
		ClientID:         req.ClientID,
		Date:             date,
		Price:            price,
		Currency:         ledgerdomain.Currency(req.Currency),
		DownPayment:      down,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	sale, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) ApplyPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	var req ApplyPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format"})
		return
	}

	sale, err := h.svc.ApplyPayment(c.Request.Context(), service.ApplyPaymentInput{
		SaleID:            id,
		InstallmentNumber: req.InstallmentNumber,
		DownPayment:       req.DownPayment,
		Amount:            amount,
		AccountID:         req.AccountID,
		ReceiptNumber:     req.ReceiptNumber,
		UserID:            c.GetString("x-user-id"),
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	var req UpdateSaleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	in := service.UpdateSaleInput{SaleID: id}
	if req.Price != nil {
		p, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price format"})
			return
		}
		in.Price = &p
	}
	if req.DownPayment != nil {
		d, err := decimal.NewFromString(*req.DownPayment)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid down payment format"})
			return
		}
		in.DownPayment = &d
	}

	sale, err := h.svc.UpdateSale(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	var req ChangeStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sale, err := h.svc.ChangeStatus(c.Request.Context(), id, domain.SaleStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) MarkOverdue(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	sale, err := h.svc.MarkOverdue(c.Request.Context(), id, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ledgerdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, ledgerdomain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInstallment),
		errors.Is(err, domain.ErrDownPaymentPaid),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
