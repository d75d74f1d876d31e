package model

type PortfolioReport struct {
	Account      Account
	Summary      PortfolioSummary
	Positions    []Position
	Transactions []Transaction
}
