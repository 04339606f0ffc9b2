package api

// ExpenseItemReq is one shared cost line of a draft.
type ExpenseItemReq struct {
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Recurring   bool   `json:"recurring"`
}

// SaveDraftReq upserts the liquidation for (building, month, year).
type SaveDraftReq struct {
	Items    []ExpenseItemReq `json:"items"`
	Currency string           `json:"currency" binding:"required,oneof=USD ARS"`
	DueDate  string           `json:"due_date"`
	Notes    string           `json:"notes"`
}

// SetCoefficientReq assigns a property's share of building costs.
type SetCoefficientReq struct {
	Coefficient string `json:"coefficient" binding:"required"`
}

// PayChargeReq marks a unit charge as collected.
type PayChargeReq struct {
	AccountID *int64 `json:"account_id"`
	Notes     string `json:"notes"`
}
