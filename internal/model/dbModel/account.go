package dbModel

import (
	"database/sql"
	"time"
)

type Account struct {
	AccountID     int64          `db:"account_id"`
	FriendlyName  sql.NullString `db:"user_friendly_name"`
	AccountNumber string         `db:"account_number"`
	BrokerName    sql.NullString `db:"broker_name"`
	CreatedAt     time.Time      `db:"dt_create"`
}
