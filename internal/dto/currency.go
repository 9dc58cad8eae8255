package dto

// CreateCurrencyRequest defines the input for registering a currency.
type CreateCurrencyRequest struct {
	CurrencyCode string   `json:"code" yaml:"code" validate:"required,len=3,alpha"`
	Symbol       string   `json:"symbol" yaml:"symbol" validate:"required,max=8"`
	Name         string   `json:"name" yaml:"name" validate:"required,max=100"`
	MinorUnits   int32    `json:"minorUnits" yaml:"minorUnits" validate:"min=0,max=8"`
	Aliases      []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}
