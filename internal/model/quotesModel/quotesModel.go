package quotesModel

import "github.com/shopspring/decimal"

type Quote struct {
	Ticker   string          `json:"ticker"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// RawQuotesResponse is the quotes API wire format.
type RawQuotesResponse struct {
	Quotes []Quote `json:"quotes"`
}
