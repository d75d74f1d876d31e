package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TransactionID int64               `db:"transaction_id"`
	AccountID     int64               `db:"account_id"`
	Date          time.Time           `db:"transaction_date"`
	Ticker        string              `db:"ticker"`
	AssetType     string              `db:"asset_type"`
	Action        string              `db:"action"`
	Quantity      decimal.Decimal     `db:"quantity"`
	Price         decimal.Decimal     `db:"price"`
	Fees          decimal.Decimal     `db:"fees"`
	TotalAmount   decimal.Decimal     `db:"total_amount"`
	Notes         sql.NullString      `db:"notes"`
	OptionType    sql.NullString      `db:"option_type"`
	StrikePrice   decimal.NullDecimal `db:"strike_price"`
	ExpiryDate    sql.NullTime        `db:"expiry_date"`
	CreatedAt     time.Time           `db:"dt_create"`
}

type Position struct {
	Ticker    string          `db:"ticker"`
	AssetType string          `db:"asset_type"`
	Quantity  decimal.Decimal `db:"quantity"`
	Cost      decimal.Decimal `db:"cost"`
}

type CashIncome struct {
	Total decimal.Decimal `db:"total"`
}
