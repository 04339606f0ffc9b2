package domain

import "github.com/shopspring/decimal"

// Currency is the closed set of currencies the operator works in.
type Currency string

const (
	USD Currency = "USD" // strong currency, rates are quoted against it
	ARS Currency = "ARS" // local currency
)

func (c Currency) IsValid() bool {
	return c == USD || c == ARS
}

// Convert converts amount between the two currencies using rate, which is
// always quoted as ARS per USD. USD to ARS multiplies, ARS to USD divides.
// This is the only place the direction convention lives; nothing else in the
// codebase touches an exchange rate directly.
func Convert(amount decimal.Decimal, from, to Currency, rate decimal.Decimal) decimal.Decimal {
	if from == to {
		return amount
	}
	if from == USD && to == ARS {
		return amount.Mul(rate).Round(2)
	}
	return amount.DivRound(rate, 2)
}

// AccountCategory distinguishes the operator's main accounts from petty cash.
type AccountCategory string

const (
	CategoryPrimary AccountCategory = "primary"
	CategoryPetty   AccountCategory = "petty"
)

func (c AccountCategory) IsValid() bool {
	return c == CategoryPrimary || c == CategoryPetty
}

// EntryKind is the kind of a ledger entry.
type EntryKind string

const (
	KindCredit      EntryKind = "credit"
	KindDebit       EntryKind = "debit"
	KindTransferIn  EntryKind = "transfer_in"
	KindTransferOut EntryKind = "transfer_out"
)

func (k EntryKind) IsValid() bool {
	switch k {
	case KindCredit, KindDebit, KindTransferIn, KindTransferOut:
		return true
	}
	return false
}

// IsOutflow reports whether the kind reduces the account balance.
func (k EntryKind) IsOutflow() bool {
	return k == KindDebit || k == KindTransferOut
}

// Signed returns the balance delta the entry applies: positive for inflows,
// negative for outflows.
func (k EntryKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k.IsOutflow() {
		return amount.Neg()
	}
	return amount
}
