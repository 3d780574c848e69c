package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
)

// Currency is the fixed set of currencies a fund request can be raised in.
// It is set at creation and never changed by any transition.
type Currency string

const (
	CurrencyETB Currency = "ETB"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyCHF Currency = "CHF"
	CurrencyYEN Currency = "YEN"
	CurrencyDHM Currency = "DHM"
)

var validCurrencies = map[Currency]bool{
	CurrencyETB: true,
	CurrencyEUR: true,
	CurrencyUSD: true,
	CurrencyCHF: true,
	CurrencyYEN: true,
	CurrencyDHM: true,
}

// IsValid returns true if the currency is one of the supported currencies.
func (c Currency) IsValid() bool {
	return validCurrencies[c]
}

// Level grades the urgency or importance of a request. An empty level
// means the submitter left the field unset.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// IsValid returns true for a known level or the unset value.
func (l Level) IsValid() bool {
	switch l {
	case "", LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// FundRequest is a monetary request moving through the approval workflow.
type FundRequest struct {
	ID              int64
	Subject         string
	CaseDescription string
	AmountRequired  decimal.Decimal
	AmountApproved  *decimal.Decimal
	Currency        Currency
	UrgencyLevel    Level
	ImportanceLevel Level
	Status          workflow.Status
	Remark          string
	UserID          *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApprovedAmount returns the approved amount, treating an unset value as zero.
func (r *FundRequest) ApprovedAmount() decimal.Decimal {
	if r.AmountApproved == nil {
		return decimal.Zero
	}
	return *r.AmountApproved
}

// ChartAmount is the amount a request contributes to the chart series:
// a pending request counts its required amount, anything else counts what
// was actually approved.
func (r *FundRequest) ChartAmount() decimal.Decimal {
	if r.Status == workflow.StatusPending {
		return r.AmountRequired
	}
	return r.ApprovedAmount()
}
