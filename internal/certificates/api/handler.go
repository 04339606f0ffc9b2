package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	"github.com/morganoide1/constructora-sub000/internal/certificates/service"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

type CertificateHandler struct {
	svc *service.CertificateService
}

func NewCertificateHandler(svc *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{svc: svc}
}

func (h *CertificateHandler) RegisterRoutes(r *gin.RouterGroup) {
	certs := r.Group("/certificates")
	{
		certs.POST("", h.Create)
		certs.GET("/:id", h.Get)
		certs.POST("/:id/approve", h.Approve)
		certs.POST("/:id/reject", h.Reject)
		certs.POST("/:id/pay", h.Pay)
	}
}

func (h *CertificateHandler) Create(c *gin.Context) {
	var req CreateCertificateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	items := make([]service.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity format"})
			return
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit price format"})
			return
		}
		items = append(items, service.ItemInput{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}

	cert, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		ProjectID:       req.ProjectID,
		ContractorName:  req.ContractorName,
		ContractorTaxID: req.ContractorTaxID,
		Currency:        ledgerdomain.Currency(req.Currency),
		Items:           items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cert, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificateHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cert, err := h.svc.Approve(c.Request.Context(), id, c.GetString("x-user-id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificateHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RejectReq
	// reason is optional; an empty or missing body is fine
	_ = c.ShouldBindJSON(&req)
	cert, err := h.svc.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificateHandler) Pay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	cert, err := h.svc.Pay(c.Request.Context(), id, req.AccountID, c.GetString("x-user-id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certificate id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ledgerdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, ledgerdomain.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
