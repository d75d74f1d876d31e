package dbConverter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertAccount(t *testing.T) {
	now := time.Now()
	account := ConvertAccount(dbModel.Account{
		AccountID:     7,
		FriendlyName:  sql.NullString{String: "Brokerage", Valid: true},
		AccountNumber: "ACC-1",
		BrokerName:    sql.NullString{String: "schwab", Valid: true},
		CreatedAt:     now,
	})

	assert.Equal(t, int64(7), account.AccountID)
	assert.Equal(t, "Brokerage", account.FriendlyName)
	assert.Equal(t, "ACC-1", account.AccountNumber)
	assert.Equal(t, "schwab", account.BrokerName)
	assert.Equal(t, now, account.CreatedAt)
}

func TestConvertAccount_NullFields(t *testing.T) {
	account := ConvertAccount(dbModel.Account{AccountNumber: "ACC-2"})
	assert.Empty(t, account.FriendlyName)
	assert.Empty(t, account.BrokerName)
}

func TestConvertTransaction_Option(t *testing.T) {
	expiry := time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC)
	tx := ConvertTransaction(dbModel.Transaction{
		TransactionID: 1,
		AccountID:     7,
		Ticker:        "MSFT",
		AssetType:     "OPTION",
		Action:        "SELL_TO_OPEN",
		Quantity:      decimal.RequireFromString("3"),
		OptionType:    sql.NullString{String: "PUT", Valid: true},
		StrikePrice:   decimal.NullDecimal{Decimal: decimal.RequireFromString("400"), Valid: true},
		ExpiryDate:    sql.NullTime{Time: expiry, Valid: true},
	})

	assert.Equal(t, model.AssetOption, tx.AssetType)
	assert.Equal(t, model.ActionSellToOpen, tx.Action)
	require.NotNil(t, tx.OptionType)
	assert.Equal(t, model.OptionPut, *tx.OptionType)
	require.NotNil(t, tx.StrikePrice)
	assert.True(t, tx.StrikePrice.Equal(decimal.RequireFromString("400")))
	require.NotNil(t, tx.ExpiryDate)
	assert.Equal(t, expiry, *tx.ExpiryDate)
}

func TestConvertTransaction_Stock(t *testing.T) {
	tx := ConvertTransaction(dbModel.Transaction{
		Ticker:    "AAPL",
		AssetType: "STOCK",
		Action:    "BUY",
		Quantity:  decimal.RequireFromString("10"),
	})

	assert.Nil(t, tx.OptionType)
	assert.Nil(t, tx.StrikePrice)
	assert.Nil(t, tx.ExpiryDate)
}

func TestConvertPosition(t *testing.T) {
	position := ConvertPosition(dbModel.Position{
		Ticker:    "AAPL",
		AssetType: "STOCK",
		Quantity:  decimal.RequireFromString("10"),
		Cost:      decimal.RequireFromString("-1000"),
	})

	assert.Equal(t, "AAPL", position.Ticker)
	assert.Equal(t, model.AssetStock, position.AssetType)
	assert.True(t, position.Quantity.Equal(decimal.RequireFromString("10")))
	assert.True(t, position.Cost.Equal(decimal.RequireFromString("-1000")))
}
