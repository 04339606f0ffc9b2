package api

// ItemReq is one line of a new certificate: quantity x unit price.
type ItemReq struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// CreateCertificateReq registers a contractor claim; the sequential number
// and the total are assigned server-side.
type CreateCertificateReq struct {
	ProjectID       int64     `json:"project_id" binding:"required"`
	ContractorName  string    `json:"contractor_name" binding:"required"`
	ContractorTaxID string    `json:"contractor_tax_id"`
	Currency        string    `json:"currency" binding:"required,oneof=USD ARS"`
	Items           []ItemReq `json:"items" binding:"required,min=1"`
}

// RejectReq carries the optional rejection reason.
type RejectReq struct {
	Reason string `json:"reason"`
}

// PayReq names the account the certificate is settled from.
type PayReq struct {
	AccountID int64 `json:"account_id" binding:"required"`
}
