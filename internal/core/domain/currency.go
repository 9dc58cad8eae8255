package domain

// CurrencyCode is a canonical, registry-validated currency code such as "USD" or "UZS".
// Raw strings must go through the currency registry before becoming a CurrencyCode.
type CurrencyCode string

func (c CurrencyCode) String() string { return string(c) }

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode CurrencyCode `json:"code"`       // Primary Key (e.g., "USD")
	Symbol       string       `json:"symbol"`     // e.g., "$"
	Name         string       `json:"name"`       // e.g., "US Dollar"
	MinorUnits   int32        `json:"minorUnits"` // digits after the decimal point used for display
	Aliases      []string     `json:"aliases,omitempty"`
	AuditFields
}
