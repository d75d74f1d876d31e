package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/go-fireball/portfolio-tracker/data/repository"
	"github.com/go-fireball/portfolio-tracker/internal/converter/dbConverter"
	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/dbModel"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) InsertAccount(ctx context.Context, friendlyName, accountNumber, brokerName string) (accountID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO accounts(user_friendly_name, account_number, broker_name) VALUES($1, $2, $3) RETURNING account_id`

	slog.Debug("InsertAccount start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertAccount failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertAccount completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, friendlyName, accountNumber, brokerName).Scan(&accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return accountID, nil
}

func (r *Postgres) GetAccount(ctx context.Context, accountID int64) (account model.Account, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT account_id, user_friendly_name, account_number, broker_name, dt_create
		FROM accounts
		WHERE account_id = $1
		`

	slog.Debug("GetAccount start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetAccount failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAccount completed", slog.String("rqID", rqID))
		}
	}()

	dbAccount := dbModel.Account{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, accountID).StructScan(&dbAccount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, repository.ErrNotFound
		}
		return model.Account{}, err
	}

	return dbConverter.ConvertAccount(dbAccount), nil
}

func (r *Postgres) GetAccounts(ctx context.Context) (accounts []model.Account, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT account_id, user_friendly_name, account_number, broker_name, dt_create
		FROM accounts
		ORDER BY account_id
		`

	slog.Debug("GetAccounts start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetAccounts failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAccounts completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbAccount dbModel.Account
		err = rows.StructScan(&dbAccount)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, dbConverter.ConvertAccount(dbAccount))
	}

	return accounts, nil
}
