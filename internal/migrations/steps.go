package migrations

import (
	"encoding/json"
	"strings"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	repo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Steps is the built-in schema history. Version 1 is the layout written before versioning existed.
var Steps = []Step{
	{
		Version: 2,
		Name:    "visibility",
		Rules: map[string][]Rule{
			repo.CollectionAccounts:       {showStatusRule, syncStatusRule},
			repo.CollectionTransactions:   {showStatusRule, syncStatusRule},
			repo.CollectionBudgets:        {showStatusRule, syncStatusRule},
			repo.CollectionCounterparties: {showStatusRule, syncStatusRule},
			repo.CollectionDebts: {
				showStatusRule,
				syncStatusRule,
				{Field: "status", Derive: func(doc map[string]any) (any, bool) {
					return string(debtStatusFromSettlement(doc)), true
				}},
			},
			repo.CollectionFxRates:    {syncStatusRule},
			repo.CollectionCurrencies: {syncStatusRule},
		},
		Renames: map[string][]Rename{
			repo.CollectionDebts: {{
				Field: "status",
				Values: map[string]string{
					"open":    string(domain.DebtActive),
					"closed":  string(domain.DebtPaid),
					"settled": string(domain.DebtPaid),
				},
				// Visibility labels used to live in status; showStatus has already captured them.
				Resolve: func(doc map[string]any, old string) (string, bool) {
					switch old {
					case "archived", "deleted", "hidden":
						return string(debtStatusFromSettlement(doc)), true
					}
					return "", false
				},
			}},
		},
	},
	{
		Version: 3,
		Name:    "fx_rate_quotes",
		Rules: map[string][]Rule{
			repo.CollectionFxRates: {
				copyRule("rateMid", "rate"),
				constRule("nominal", "1"),
				{Field: "spreadPercent", Derive: spreadFromQuotes},
				{Field: "source", Derive: func(map[string]any) (any, bool) {
					return string(domain.RateSourceManual), true
				}},
				{Field: "isOverridden", Derive: func(doc map[string]any) (any, bool) {
					source := str(doc, "source")
					return source == string(domain.RateSourceManual) || source == "user", true
				}},
				copyRule("effectiveFrom", "date"),
				{Field: "version", Derive: func(map[string]any) (any, bool) { return 1, true }},
			},
		},
		Renames: map[string][]Rename{
			repo.CollectionFxRates: {{
				Field: "source",
				Values: map[string]string{
					"cbu":      string(domain.RateSourceCentralBank),
					"cb":       string(domain.RateSourceCentralBank),
					"user":     string(domain.RateSourceManual),
					"api":      string(domain.RateSourceMarket),
					"computed": string(domain.RateSourceDerived),
				},
			}},
		},
	},
	{
		Version: 4,
		Name:    "transaction_snapshots",
		Rules: map[string][]Rule{
			repo.CollectionTransactions: {
				copyRule("baseCurrency", "currency"),
				{Field: "rateUsedToBase", Derive: func(doc map[string]any) (any, bool) {
					return impliedRate(doc, "convertedAmountToBase", "amount", "baseCurrency", "currency")
				}},
				{Field: "convertedAmountToBase", Derive: func(doc map[string]any) (any, bool) {
					return product(doc, "amount", "rateUsedToBase")
				}},
				{Field: "accountAmount", Derive: func(doc map[string]any) (any, bool) {
					if str(doc, "type") == string(domain.Transfer) {
						return nil, false
					}
					return copyValue(doc, "amount")
				}},
				{Field: "rateUsedToAccount", Derive: func(doc map[string]any) (any, bool) {
					if str(doc, "type") == string(domain.Transfer) {
						return nil, false
					}
					return "1", true
				}},
				{Field: "toAmount", Derive: func(doc map[string]any) (any, bool) {
					if str(doc, "type") != string(domain.Transfer) {
						return nil, false
					}
					return copyValue(doc, "amount")
				}},
				{Field: "toCurrency", Derive: func(doc map[string]any) (any, bool) {
					if str(doc, "type") != string(domain.Transfer) {
						return nil, false
					}
					return copyValue(doc, "currency")
				}},
				constRule("isRateOverridden", false),
			},
		},
	},
	{
		Version: 5,
		Name:    "debts_and_budgets",
		Rules: map[string][]Rule{
			repo.CollectionDebts: {
				copyRule("principalAmount", "amount"),
				copyRule("principalCurrency", "currency"),
				copyRule("baseCurrency", "principalCurrency"),
				{Field: "rateOnStart", Derive: func(doc map[string]any) (any, bool) {
					return impliedRate(doc, "principalBaseValue", "principalAmount", "baseCurrency", "principalCurrency")
				}},
				{Field: "principalBaseValue", Derive: func(doc map[string]any) (any, bool) {
					return product(doc, "principalAmount", "rateOnStart")
				}},
				copyRule("repaymentCurrency", "principalCurrency"),
				constRule("isFixedRepaymentAmount", false),
				{Field: "payments", Derive: func(map[string]any) (any, bool) { return []any{}, true }},
			},
			repo.CollectionBudgets: {
				{Field: "categoryIds", Derive: func(doc map[string]any) (any, bool) {
					if id := str(doc, "categoryId"); id != "" {
						return []any{id}, true
					}
					return []any{}, true
				}},
				copyRule("limitAmount", "limit"),
				constRule("periodType", string(domain.PeriodNone)),
				constRule("rolloverMode", string(domain.RolloverNone)),
				constRule("spentAmount", "0"),
				copyRule("remainingAmount", "limitAmount"),
				constRule("percentUsed", "0"),
				constRule("isOverspent", false),
			},
		},
	},
}

var (
	showStatusRule = Rule{Field: "showStatus", Derive: func(doc map[string]any) (any, bool) {
		return string(showStatusFromLegacy(doc)), true
	}}
	syncStatusRule = constRule("syncStatus", string(domain.SyncPending))
)

// showStatusFromLegacy folds the old visibility flags into one status. Deletion wins over archiving.
func showStatusFromLegacy(doc map[string]any) domain.ShowStatus {
	status := strings.ToLower(str(doc, "status"))
	switch {
	case truthy(doc, "isDeleted"), !absent(doc, "deletedAt"), status == "deleted":
		return domain.ShowDeleted
	case truthy(doc, "isArchived"), status == "archived", status == "hidden":
		return domain.ShowArchived
	}
	return domain.ShowActive
}

func debtStatusFromSettlement(doc map[string]any) domain.DebtStatus {
	if !absent(doc, "settledAt") {
		return domain.DebtPaid
	}
	return domain.DebtActive
}

func constRule(field string, value any) Rule {
	return Rule{Field: field, Derive: func(map[string]any) (any, bool) { return value, true }}
}

func copyRule(field, from string) Rule {
	return Rule{Field: field, Derive: func(doc map[string]any) (any, bool) { return copyValue(doc, from) }}
}

func copyValue(doc map[string]any, field string) (any, bool) {
	if absent(doc, field) {
		return nil, false
	}
	return doc[field], true
}

// impliedRate recovers a rate from a stored snapshot, or is 1 when both currencies match.
func impliedRate(doc map[string]any, convertedField, amountField, toField, fromField string) (any, bool) {
	converted, okConverted := num(doc, convertedField)
	amount, okAmount := num(doc, amountField)
	if okConverted && okAmount && !amount.IsZero() {
		return converted.DivRound(amount, 10).String(), true
	}
	if to := str(doc, toField); to != "" && to == str(doc, fromField) {
		return "1", true
	}
	return nil, false
}

func product(doc map[string]any, a, b string) (any, bool) {
	x, okX := num(doc, a)
	y, okY := num(doc, b)
	if !okX || !okY {
		return nil, false
	}
	return x.Mul(y).String(), true
}

func spreadFromQuotes(doc map[string]any) (any, bool) {
	bid, okBid := num(doc, "rateBid")
	ask, okAsk := num(doc, "rateAsk")
	mid, okMid := num(doc, "rateMid")
	if !okMid {
		mid, okMid = num(doc, "rate")
	}
	if okBid && okAsk && okMid && mid.IsPositive() {
		return ask.Sub(bid).Div(mid).Mul(decimal.NewFromInt(100)).Round(4).String(), true
	}
	return "0", true
}

func str(doc map[string]any, field string) string {
	s, _ := doc[field].(string)
	return s
}

func truthy(doc map[string]any, field string) bool {
	b, _ := doc[field].(bool)
	return b
}

// num reads a decimal stored either as a JSON string or a JSON number.
func num(doc map[string]any, field string) (decimal.Decimal, bool) {
	var raw string
	switch v := doc[field].(type) {
	case string:
		raw = v
	case json.Number:
		raw = v.String()
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
