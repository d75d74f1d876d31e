package dbConverter

import (
	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/dbModel"
)

func ConvertAccount(dbAccount dbModel.Account) model.Account {
	return model.Account{
		AccountID:     dbAccount.AccountID,
		FriendlyName:  dbAccount.FriendlyName.String,
		AccountNumber: dbAccount.AccountNumber,
		BrokerName:    dbAccount.BrokerName.String,
		CreatedAt:     dbAccount.CreatedAt,
	}
}

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	tx := model.Transaction{
		TransactionID: dbTx.TransactionID,
		AccountID:     dbTx.AccountID,
		Date:          dbTx.Date,
		Ticker:        dbTx.Ticker,
		AssetType:     model.AssetType(dbTx.AssetType),
		Action:        model.ActionType(dbTx.Action),
		Quantity:      dbTx.Quantity,
		Price:         dbTx.Price,
		Fees:          dbTx.Fees,
		TotalAmount:   dbTx.TotalAmount,
		Notes:         dbTx.Notes.String,
	}

	if dbTx.OptionType.Valid {
		optType := model.OptionType(dbTx.OptionType.String)
		tx.OptionType = &optType
	}
	if dbTx.StrikePrice.Valid {
		strike := dbTx.StrikePrice.Decimal
		tx.StrikePrice = &strike
	}
	if dbTx.ExpiryDate.Valid {
		expiry := dbTx.ExpiryDate.Time
		tx.ExpiryDate = &expiry
	}

	return tx
}

func ConvertPosition(dbPosition dbModel.Position) model.Position {
	return model.Position{
		Ticker:    dbPosition.Ticker,
		AssetType: model.AssetType(dbPosition.AssetType),
		Quantity:  dbPosition.Quantity,
		Cost:      dbPosition.Cost,
	}
}
