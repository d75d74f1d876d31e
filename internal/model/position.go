package model

import "github.com/shopspring/decimal"

type Position struct {
	Ticker      string
	AssetType   AssetType
	Quantity    decimal.Decimal
	Cost        decimal.Decimal // signed sum of trade amounts, negative = money spent
	MarketPrice decimal.Decimal // zero when no quote is available
	MarketValue decimal.Decimal
}

type PortfolioSummary struct {
	AccountID      int64
	PositionsCount int
	MarketValue    decimal.Decimal
	CashIncome     decimal.Decimal // dividends + interest
}
