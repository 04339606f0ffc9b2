package api

// CreateAccountReq opens a new cash box.
type CreateAccountReq struct {
	Name        string `json:"name" binding:"required"`
	Currency    string `json:"currency" binding:"required,oneof=USD ARS"`
	Category    string `json:"category" binding:"omitempty,oneof=primary petty"`
	Description string `json:"description"`
}

// ApplyEntryReq posts a single credit or debit. Amounts travel as strings to
// avoid float precision loss on the wire.
type ApplyEntryReq struct {
	AccountID     int64  `json:"account_id" binding:"required"`
	Kind          string `json:"kind" binding:"required,oneof=credit debit"`
	Amount        string `json:"amount" binding:"required"`
	Concept       string `json:"concept" binding:"required"`
	SaleID        *int64 `json:"sale_id"`
	CertificateID *int64 `json:"certificate_id"`
	BuildingID    *int64 `json:"building_id"`
	Notes         string `json:"notes"`
}

// TransferReq moves funds between two accounts. Rate is mandatory when the
// account currencies differ, quoted as ARS per USD.
type TransferReq struct {
	FromAccountID int64  `json:"from_account_id" binding:"required"`
	ToAccountID   int64  `json:"to_account_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Rate          string `json:"rate"`
	Concept       string `json:"concept" binding:"required"`
	Notes         string `json:"notes"`
}
