package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-fireball/portfolio-tracker/internal/converter/dbConverter"
	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/dbModel"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/shopspring/decimal"
)

const transactionInsertCols = 13

func (r *Postgres) InsertTransactions(ctx context.Context, accountID int64, transactions []model.ParsedTransaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("InsertTransactions start", slog.String("rqID", rqID), slog.Int("count", len(transactions)))

	defer func() {
		if err != nil {
			slog.Error("InsertTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransactions completed", slog.String("rqID", rqID))
		}
	}()

	if len(transactions) == 0 {
		return nil
	}

	sb := strings.Builder{}
	args := make([]any, 0, len(transactions)*transactionInsertCols)

	sb.WriteString(`INSERT INTO transactions
		(account_id, transaction_date, ticker, asset_type, action, quantity, price, fees, total_amount, notes, option_type, strike_price, expiry_date)
		VALUES `)

	for i, tx := range transactions {
		var optionType *string
		if tx.OptionType != nil {
			s := string(*tx.OptionType)
			optionType = &s
		}

		args = append(args,
			accountID, tx.Date, tx.Ticker, string(tx.AssetType), string(tx.Action),
			tx.Quantity, tx.Price, tx.Fees, tx.TotalAmount, tx.RawDescription,
			optionType, tx.OptionStrike, tx.OptionExpiry,
		)

		start := i*transactionInsertCols + 1
		sb.WriteString("(")
		for j := 0; j < transactionInsertCols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", start+j))
		}
		sb.WriteString(")")

		if i < len(transactions)-1 {
			sb.WriteString(",")
		}
	}

	_, err = r.txOrDb(ctx).ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *Postgres) GetTransactions(ctx context.Context, accountID int64) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, account_id, transaction_date, ticker, asset_type, action,
			quantity, price, fees, total_amount, notes, option_type, strike_price, expiry_date, dt_create
		FROM transactions
		WHERE account_id = $1
		ORDER BY transaction_date, transaction_id
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbTx dbModel.Transaction
		err = rows.StructScan(&dbTx)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(dbTx))
	}

	return transactions, nil
}

// GetPositions aggregates trade rows into net positions per ticker and
// asset type. Buy-side actions add quantity, sell-side subtract. Rows
// netting to zero are dropped.
func (r *Postgres) GetPositions(ctx context.Context, accountID int64) (positions []model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ticker, asset_type,
			SUM(CASE WHEN action IN ('BUY', 'BUY_TO_OPEN', 'BUY_TO_CLOSE') THEN quantity ELSE -quantity END) AS quantity,
			SUM(total_amount) AS cost
		FROM transactions
		WHERE account_id = $1
		AND action IN ('BUY', 'SELL', 'BUY_TO_OPEN', 'SELL_TO_OPEN', 'BUY_TO_CLOSE', 'SELL_TO_CLOSE')
		GROUP BY ticker, asset_type
		HAVING SUM(CASE WHEN action IN ('BUY', 'BUY_TO_OPEN', 'BUY_TO_CLOSE') THEN quantity ELSE -quantity END) <> 0
		ORDER BY ticker
		`

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPositions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPosition dbModel.Position
		err = rows.StructScan(&dbPosition)
		if err != nil {
			return nil, err
		}
		positions = append(positions, dbConverter.ConvertPosition(dbPosition))
	}

	return positions, nil
}

func (r *Postgres) GetCashIncome(ctx context.Context, accountID int64) (total decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT COALESCE(SUM(total_amount), 0) AS total
		FROM transactions
		WHERE account_id = $1
		AND action IN ('DIVIDEND', 'INTEREST')
		`

	slog.Debug("GetCashIncome start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCashIncome failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCashIncome completed", slog.String("rqID", rqID))
		}
	}()

	income := dbModel.CashIncome{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, accountID).StructScan(&income)
	if err != nil {
		return decimal.Zero, err
	}

	return income.Total, nil
}

// GetHeldTickers returns tickers of currently held stock positions across
// all accounts, used by the quote refresh job.
func (r *Postgres) GetHeldTickers(ctx context.Context) (tickers []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ticker
		FROM transactions
		WHERE asset_type = 'STOCK'
		AND action IN ('BUY', 'SELL', 'BUY_TO_OPEN', 'SELL_TO_OPEN', 'BUY_TO_CLOSE', 'SELL_TO_CLOSE')
		GROUP BY ticker
		HAVING SUM(CASE WHEN action IN ('BUY', 'BUY_TO_OPEN', 'BUY_TO_CLOSE') THEN quantity ELSE -quantity END) <> 0
		ORDER BY ticker
		`

	slog.Debug("GetHeldTickers start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHeldTickers failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHeldTickers completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &tickers, query)
	if err != nil {
		return nil, err
	}

	return tickers, nil
}
