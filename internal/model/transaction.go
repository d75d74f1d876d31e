package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionBuy         ActionType = "BUY"
	ActionSell        ActionType = "SELL"
	ActionBuyToOpen   ActionType = "BUY_TO_OPEN"
	ActionSellToOpen  ActionType = "SELL_TO_OPEN"
	ActionBuyToClose  ActionType = "BUY_TO_CLOSE"
	ActionSellToClose ActionType = "SELL_TO_CLOSE"
	ActionDividend    ActionType = "DIVIDEND"
	ActionInterest    ActionType = "INTEREST"
)

type AssetType string

const (
	AssetStock  AssetType = "STOCK"
	AssetOption AssetType = "OPTION"
	AssetCash   AssetType = "CASH"
)

type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// IsTrade reports whether the action moves a position
// (as opposed to dividends and interest which only move cash).
func (a ActionType) IsTrade() bool {
	switch a {
	case ActionBuy, ActionSell, ActionBuyToOpen, ActionSellToOpen, ActionBuyToClose, ActionSellToClose:
		return true
	}
	return false
}

type Transaction struct {
	TransactionID int64
	AccountID     int64
	Date          time.Time
	Ticker        string
	AssetType     AssetType
	Action        ActionType
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Fees          decimal.Decimal
	TotalAmount   decimal.Decimal
	Notes         string
	OptionType    *OptionType
	StrikePrice   *decimal.Decimal
	ExpiryDate    *time.Time
}

// ParsedTransaction is a broker CSV row normalized by a parser,
// not yet bound to an account.
type ParsedTransaction struct {
	Date           time.Time
	Action         ActionType
	AssetType      AssetType
	Ticker         string
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	Fees           decimal.Decimal
	TotalAmount    decimal.Decimal
	OptionType     *OptionType
	OptionStrike   *decimal.Decimal
	OptionExpiry   *time.Time
	RawDescription string
	RawSymbol      string
}

type ImportResult struct {
	Imported int
	Skipped  int
}
