package api

// CreateSaleReq carries the terms of a new financed sale. Monetary fields
// travel as strings.
type CreateSaleReq struct {
	PropertyID       int64  `json:"property_id" binding:"required"`
	ClientID         int64  `json:"client_id" binding:"required"`
	Date             string `json:"date"`
	Price            string `json:"price" binding:"required"`
	Currency         string `json:"currency" binding:"required,oneof=USD ARS"`
	DownPayment      string `json:"down_payment"`
	InstallmentCount int    `json:"installment_count" binding:"omitempty,min=0"`
}

// ApplyPaymentReq registers a payment. down_payment targets the anticipo,
// installment_number a scheduled installment; omitting both makes it a free
// payment. account_id books the credit into that cash account.
type ApplyPaymentReq struct {
	InstallmentNumber *int   `json:"installment_number"`
	DownPayment       bool   `json:"down_payment"`
	Amount            string `json:"amount" binding:"required"`
	AccountID         *int64 `json:"account_id"`
	ReceiptNumber     string `json:"receipt_number"`
	Notes             string `json:"notes"`
}

// UpdateSaleReq edits price and/or down payment.
type UpdateSaleReq struct {
	Price       *string `json:"price"`
	DownPayment *string `json:"down_payment"`
}

// ChangeStatusReq moves the sale along its administrative lifecycle.
type ChangeStatusReq struct {
	Status string `json:"status" binding:"required,oneof=reserved contract deed cancelled"`
}
