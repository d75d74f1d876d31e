package model

import "time"

type Account struct {
	AccountID     int64
	FriendlyName  string
	AccountNumber string
	BrokerName    string
	CreatedAt     time.Time
}
