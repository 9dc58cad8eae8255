package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DebtDirection says who owes whom.
type DebtDirection string

const (
	TheyOweMe DebtDirection = "they_owe_me"
	IOwe      DebtDirection = "i_owe"
)

// IsValid reports whether d is a known direction.
func (d DebtDirection) IsValid() bool {
	return d == TheyOweMe || d == IOwe
}

// DebtStatus is the debt lifecycle state. Paid is terminal.
type DebtStatus string

const (
	DebtActive DebtStatus = "active"
	DebtPaid   DebtStatus = "paid"
)

// Debt models a lending or borrowing relationship whose principal is held in one
// currency and may be repaid in another.
//
// PrincipalBaseValue == PrincipalAmount * RateOnStart is frozen at creation.
// Payments are exclusively owned by the debt and kept in the order they were recorded.
type Debt struct {
	DebtID                       string           `json:"id"`
	UserID                       string           `json:"userId"`
	Direction                    DebtDirection    `json:"direction"`
	CounterpartyID               string           `json:"counterpartyId,omitempty"`
	CounterpartyName             string           `json:"counterpartyName"`
	PrincipalAmount              decimal.Decimal  `json:"principalAmount"`
	PrincipalOriginalAmount      *decimal.Decimal `json:"principalOriginalAmount,omitempty"`
	PrincipalCurrency            CurrencyCode     `json:"principalCurrency"`
	PrincipalOriginalCurrency    CurrencyCode     `json:"principalOriginalCurrency,omitempty"`
	BaseCurrency                 CurrencyCode     `json:"baseCurrency"`
	RateOnStart                  decimal.Decimal  `json:"rateOnStart"`
	PrincipalBaseValue           decimal.Decimal  `json:"principalBaseValue"`
	RepaymentCurrency            CurrencyCode     `json:"repaymentCurrency,omitempty"`
	RepaymentAmount              *decimal.Decimal `json:"repaymentAmount,omitempty"`
	RepaymentRateOnStart         *decimal.Decimal `json:"repaymentRateOnStart,omitempty"`
	IsFixedRepaymentAmount       bool             `json:"isFixedRepaymentAmount"`
	Status                       DebtStatus       `json:"status"`
	Payments                     []DebtPayment    `json:"payments"`
	StartDate                    time.Time        `json:"startDate"`
	DueDate                      *time.Time       `json:"dueDate,omitempty"`
	AccountID                    string           `json:"accountId,omitempty"`
	TransactionID                string           `json:"transactionId,omitempty"`
	Comment                      string           `json:"comment,omitempty"`
	SettledAt                    *time.Time       `json:"settledAt,omitempty"`
	FinalRateUsed                *decimal.Decimal `json:"finalRateUsed,omitempty"`
	FinalProfitLoss              *decimal.Decimal `json:"finalProfitLoss,omitempty"`
	FinalProfitLossCurrency      CurrencyCode     `json:"finalProfitLossCurrency,omitempty"`
	TotalPaidInRepaymentCurrency *decimal.Decimal `json:"totalPaidInRepaymentCurrency,omitempty"`
	ShowStatus                   ShowStatus       `json:"showStatus"`
	AuditFields
}

// DebtPayment is one repayment, with every conversion frozen at the rate prevailing on PaymentDate.
type DebtPayment struct {
	PaymentID                  string          `json:"id"`
	Amount                     decimal.Decimal `json:"amount"`
	CurrencyCode               CurrencyCode    `json:"currency"`
	BaseCurrency               CurrencyCode    `json:"baseCurrency"`
	RateUsedToBase             decimal.Decimal `json:"rateUsedToBase"`
	ConvertedAmountToBase      decimal.Decimal `json:"convertedAmountToBase"`
	RateUsedToDebt             decimal.Decimal `json:"rateUsedToDebt"`
	ConvertedAmountToDebt      decimal.Decimal `json:"convertedAmountToDebt"`
	RateUsedToRepayment        decimal.Decimal `json:"rateUsedToRepayment"`
	ConvertedAmountToRepayment decimal.Decimal `json:"convertedAmountToRepayment"`
	PaymentDate                time.Time       `json:"paymentDate"`
	AccountID                  string          `json:"accountId,omitempty"`
	TransactionID              string          `json:"transactionId,omitempty"`
	Note                       string          `json:"note,omitempty"`
}

// Counterparty is the person or organisation on the other side of a debt. It has no financial state.
type Counterparty struct {
	CounterpartyID string     `json:"id"`
	UserID         string     `json:"userId"`
	DisplayName    string     `json:"displayName"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	ShowStatus     ShowStatus `json:"showStatus"`
	AuditFields
}

// EffectiveRepaymentCurrency is the currency payments are measured in at settlement.
func (d Debt) EffectiveRepaymentCurrency() CurrencyCode {
	if d.RepaymentCurrency != "" {
		return d.RepaymentCurrency
	}
	return d.PrincipalCurrency
}

// EffectiveRepaymentRate is the repayment-per-principal rate agreed at creation.
func (d Debt) EffectiveRepaymentRate() decimal.Decimal {
	if d.RepaymentRateOnStart != nil {
		return *d.RepaymentRateOnStart
	}
	return decimal.NewFromInt(1)
}

// AgreedRepaymentAmount is what the payer agreed to hand over, in the repayment currency.
func (d Debt) AgreedRepaymentAmount() decimal.Decimal {
	if d.RepaymentAmount != nil {
		return *d.RepaymentAmount
	}
	return d.PrincipalAmount.Mul(d.EffectiveRepaymentRate())
}

// PaidInDebtCurrency sums the payments converted to the principal currency.
func (d Debt) PaidInDebtCurrency() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.ConvertedAmountToDebt)
	}
	return total
}

// PaidInRepaymentCurrency sums the payments converted to the repayment currency.
func (d Debt) PaidInRepaymentCurrency() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.ConvertedAmountToRepayment)
	}
	return total
}

// OutstandingAmount is the principal still open, never below zero.
func (d Debt) OutstandingAmount() decimal.Decimal {
	open := d.PrincipalAmount.Sub(d.PaidInDebtCurrency())
	if open.IsNegative() {
		return decimal.Zero
	}
	return open
}

// IsSettleable reports whether the payments cover the obligation.
// An agreed repayment amount is measured in the repayment currency; otherwise the
// obligation is the principal, measured in the principal currency.
func (d Debt) IsSettleable() bool {
	if d.RepaymentAmount != nil {
		return d.PaidInRepaymentCurrency().GreaterThanOrEqual(*d.RepaymentAmount)
	}
	return d.PaidInDebtCurrency().GreaterThanOrEqual(d.PrincipalAmount)
}

// Settle freezes the final figures and moves the debt to paid.
//
// FinalProfitLoss is the difference between what the payments would have cost at
// RepaymentRateOnStart and what was actually paid in the repayment currency.
// Positive favours the payer. For a fixed repayment amount the agreed figure is the reference.
func (d *Debt) Settle(now time.Time) error {
	if d.Status == DebtPaid {
		return apperrors.ErrDebtAlreadySettled
	}
	if !d.IsSettleable() {
		return fmt.Errorf("%w: paid %s of %s", apperrors.ErrDebtNotSettleable, d.PaidInDebtCurrency(), d.PrincipalAmount)
	}

	paid := d.PaidInRepaymentCurrency()
	paidInDebt := d.PaidInDebtCurrency()

	var expected decimal.Decimal
	if d.IsFixedRepaymentAmount {
		expected = d.AgreedRepaymentAmount()
	} else {
		expected = paidInDebt.Mul(d.EffectiveRepaymentRate())
	}
	profitLoss := expected.Sub(paid)

	finalRate := d.EffectiveRepaymentRate()
	if paidInDebt.IsPositive() {
		finalRate = paid.DivRound(paidInDebt, RatePrecision)
	}

	settledAt := now
	d.Status = DebtPaid
	d.SettledAt = &settledAt
	d.FinalRateUsed = &finalRate
	d.FinalProfitLoss = &profitLoss
	d.FinalProfitLossCurrency = d.EffectiveRepaymentCurrency()
	d.TotalPaidInRepaymentCurrency = &paid
	return nil
}

// UserProfitLoss expresses FinalProfitLoss from the ledger owner's side: when the
// counterparty is the payer, their gain is the owner's loss.
func (d Debt) UserProfitLoss() decimal.Decimal {
	if d.FinalProfitLoss == nil {
		return decimal.Zero
	}
	if d.Direction == TheyOweMe {
		return d.FinalProfitLoss.Neg()
	}
	return *d.FinalProfitLoss
}

// FindPayment returns the index of the payment with the given ID, or -1.
func (d Debt) FindPayment(paymentID string) int {
	for i, p := range d.Payments {
		if p.PaymentID == paymentID {
			return i
		}
	}
	return -1
}
