package portfolioService

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data/repository"
	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/quotesModel"
	"github.com/go-fireball/portfolio-tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	accounts     map[int64]model.Account
	positions    []model.Position
	cashIncome   decimal.Decimal
	heldTickers  []string
	transactions []model.Transaction

	inserted  []model.ParsedTransaction
	insertErr error
}

func (f *fakeRepo) InsertAccount(_ context.Context, friendlyName, accountNumber, brokerName string) (int64, error) {
	for _, account := range f.accounts {
		if account.AccountNumber == accountNumber {
			return 0, repository.ErrAlreadyExists
		}
	}
	id := int64(len(f.accounts) + 1)
	if f.accounts == nil {
		f.accounts = map[int64]model.Account{}
	}
	f.accounts[id] = model.Account{AccountID: id, FriendlyName: friendlyName, AccountNumber: accountNumber, BrokerName: brokerName}
	return id, nil
}

func (f *fakeRepo) GetAccount(_ context.Context, accountID int64) (model.Account, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return account, nil
}

func (f *fakeRepo) GetAccounts(_ context.Context) ([]model.Account, error) {
	accounts := make([]model.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (f *fakeRepo) InsertTransactions(_ context.Context, _ int64, transactions []model.ParsedTransaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, transactions...)
	return nil
}

func (f *fakeRepo) GetTransactions(_ context.Context, _ int64) ([]model.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeRepo) GetPositions(_ context.Context, _ int64) ([]model.Position, error) {
	positions := make([]model.Position, len(f.positions))
	copy(positions, f.positions)
	return positions, nil
}

func (f *fakeRepo) GetCashIncome(_ context.Context, _ int64) (decimal.Decimal, error) {
	return f.cashIncome, nil
}

func (f *fakeRepo) GetHeldTickers(_ context.Context) ([]string, error) {
	return f.heldTickers, nil
}

func (f *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

type fakeCache struct {
	mu     sync.Mutex
	quotes map[string]quotesModel.Quote
}

func newFakeCache() *fakeCache {
	return &fakeCache{quotes: map[string]quotesModel.Quote{}}
}

func (f *fakeCache) GetQuotes(_ context.Context, tickers []string) (map[string]quotesModel.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make(map[string]quotesModel.Quote, len(tickers))
	for _, ticker := range tickers {
		quote, ok := f.quotes[ticker]
		if !ok {
			return nil, errors.New("cache miss")
		}
		res[ticker] = quote
	}
	return res, nil
}

func (f *fakeCache) SetQuotes(_ context.Context, quotes []quotesModel.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, quote := range quotes {
		f.quotes[quote.Ticker] = quote
	}
	return nil
}

type fakeQuotesApi struct {
	quotes map[string]quotesModel.Quote
	err    error
	calls  int
}

func (f *fakeQuotesApi) GetQuotes(_ context.Context, tickers []string) (map[string]quotesModel.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := make(map[string]quotesModel.Quote, len(tickers))
	for _, ticker := range tickers {
		if quote, ok := f.quotes[ticker]; ok {
			res[ticker] = quote
		}
	}
	return res, nil
}

func parsedTrade(action model.ActionType, ticker, quantity string) model.ParsedTransaction {
	return model.ParsedTransaction{
		Date:      time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC),
		Action:    action,
		AssetType: model.AssetStock,
		Ticker:    ticker,
		Quantity:  decimal.RequireFromString(quantity),
	}
}

func TestImportTransactions_AccountNotFound(t *testing.T) {
	srv := New(&config.Config{}, &fakeRepo{}, nil, nil, nil, nil)

	_, err := srv.ImportTransactions(context.Background(), 42, []model.ParsedTransaction{parsedTrade(model.ActionBuy, "AAPL", "10")})
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestImportTransactions_SkipRules(t *testing.T) {
	repo := &fakeRepo{accounts: map[int64]model.Account{1: {AccountID: 1, AccountNumber: "A1"}}}
	srv := New(&config.Config{}, repo, nil, nil, nil, nil)

	strike := decimal.RequireFromString("400")
	expiry := time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC)
	put := model.OptionPut

	optionOk := parsedTrade(model.ActionSellToOpen, "MSFT", "3")
	optionOk.AssetType = model.AssetOption
	optionOk.OptionType = &put
	optionOk.OptionStrike = &strike
	optionOk.OptionExpiry = &expiry

	optionMissingDetails := parsedTrade(model.ActionBuyToClose, "NVDA", "1")
	optionMissingDetails.AssetType = model.AssetOption

	dividend := model.ParsedTransaction{
		Date:        time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC),
		Action:      model.ActionDividend,
		AssetType:   model.AssetCash,
		Ticker:      "AAPL",
		TotalAmount: decimal.RequireFromString("1.13"),
	}

	parsed := []model.ParsedTransaction{
		parsedTrade(model.ActionBuy, "AAPL", "10"),
		parsedTrade(model.ActionBuy, "ZERO", "0"), // zero quantity trade, skipped
		optionOk,
		optionMissingDetails, // option without details, skipped
		dividend,             // zero quantity is fine for cash rows
	}

	result, err := srv.ImportTransactions(context.Background(), 1, parsed)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, repo.inserted, 3)
	assert.Equal(t, "AAPL", repo.inserted[0].Ticker)
	assert.Equal(t, "MSFT", repo.inserted[1].Ticker)
	assert.Equal(t, "AAPL", repo.inserted[2].Ticker)
}

func TestImportTransactions_AllSkippedDoesNotInsert(t *testing.T) {
	repo := &fakeRepo{accounts: map[int64]model.Account{1: {AccountID: 1}}}
	srv := New(&config.Config{}, repo, nil, nil, nil, nil)

	result, err := srv.ImportTransactions(context.Background(), 1, []model.ParsedTransaction{
		parsedTrade(model.ActionBuy, "ZERO", "0"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, repo.inserted)
}

func TestImportTransactions_InsertErrorPropagates(t *testing.T) {
	repo := &fakeRepo{
		accounts:  map[int64]model.Account{1: {AccountID: 1}},
		insertErr: errors.New("constraint violation"),
	}
	srv := New(&config.Config{}, repo, nil, nil, nil, nil)

	_, err := srv.ImportTransactions(context.Background(), 1, []model.ParsedTransaction{
		parsedTrade(model.ActionBuy, "AAPL", "10"),
	})
	assert.Error(t, err)
}

func TestCreateAccount_AlreadyExists(t *testing.T) {
	repo := &fakeRepo{}
	srv := New(&config.Config{}, repo, nil, nil, nil, nil)

	_, err := srv.CreateAccount(context.Background(), "Brokerage", "ACC-1", "schwab")
	require.NoError(t, err)

	_, err = srv.CreateAccount(context.Background(), "Duplicate", "ACC-1", "schwab")
	assert.ErrorIs(t, err, service.ErrAccountAlreadyExists)
}

func TestGetPositions_ValuesStocksFromQuotes(t *testing.T) {
	repo := &fakeRepo{
		accounts: map[int64]model.Account{1: {AccountID: 1}},
		positions: []model.Position{
			{Ticker: "AAPL", AssetType: model.AssetStock, Quantity: decimal.RequireFromString("10")},
			{Ticker: "MSFT", AssetType: model.AssetOption, Quantity: decimal.RequireFromString("-3")},
		},
	}
	quotes := &fakeQuotesApi{quotes: map[string]quotesModel.Quote{
		"AAPL": {Ticker: "AAPL", Price: decimal.RequireFromString("150.00")},
	}}

	srv := New(&config.Config{}, repo, newFakeCache(), quotes, nil, nil)

	positions, err := srv.GetPositions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.True(t, positions[0].MarketPrice.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, positions[0].MarketValue.Equal(decimal.RequireFromString("1500.00")))
	// options stay unvalued
	assert.True(t, positions[1].MarketPrice.IsZero())
	assert.True(t, positions[1].MarketValue.IsZero())
}

func TestGetPositions_QuotesUnavailableLeavesUnvalued(t *testing.T) {
	repo := &fakeRepo{
		accounts: map[int64]model.Account{1: {AccountID: 1}},
		positions: []model.Position{
			{Ticker: "AAPL", AssetType: model.AssetStock, Quantity: decimal.RequireFromString("10")},
		},
	}
	quotes := &fakeQuotesApi{err: errors.New("api down")}

	srv := New(&config.Config{}, repo, newFakeCache(), quotes, nil, nil)

	positions, err := srv.GetPositions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].MarketValue.IsZero())
}

func TestGetPositions_ServesQuotesFromCache(t *testing.T) {
	repo := &fakeRepo{
		accounts: map[int64]model.Account{1: {AccountID: 1}},
		positions: []model.Position{
			{Ticker: "AAPL", AssetType: model.AssetStock, Quantity: decimal.RequireFromString("2")},
		},
	}
	cache := newFakeCache()
	_ = cache.SetQuotes(context.Background(), []quotesModel.Quote{{Ticker: "AAPL", Price: decimal.RequireFromString("100")}})
	quotes := &fakeQuotesApi{err: errors.New("should not be called")}

	srv := New(&config.Config{}, repo, cache, quotes, nil, nil)

	positions, err := srv.GetPositions(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, positions[0].MarketValue.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, 0, quotes.calls)
}

func TestGetPortfolioSummary(t *testing.T) {
	repo := &fakeRepo{
		accounts: map[int64]model.Account{1: {AccountID: 1}},
		positions: []model.Position{
			{Ticker: "AAPL", AssetType: model.AssetStock, Quantity: decimal.RequireFromString("10")},
			{Ticker: "GOOG", AssetType: model.AssetStock, Quantity: decimal.RequireFromString("5")},
		},
		cashIncome: decimal.RequireFromString("12.34"),
	}
	cache := newFakeCache()
	_ = cache.SetQuotes(context.Background(), []quotesModel.Quote{
		{Ticker: "AAPL", Price: decimal.RequireFromString("100")},
		{Ticker: "GOOG", Price: decimal.RequireFromString("200")},
	})

	srv := New(&config.Config{}, repo, cache, &fakeQuotesApi{}, nil, nil)

	summary, err := srv.GetPortfolioSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PositionsCount)
	assert.True(t, summary.MarketValue.Equal(decimal.RequireFromString("2000"))) // 10*100 + 5*200
	assert.True(t, summary.CashIncome.Equal(decimal.RequireFromString("12.34")))
}

func TestRefreshQuotesCache(t *testing.T) {
	repo := &fakeRepo{heldTickers: []string{"AAPL", "GOOG"}}
	cache := newFakeCache()
	quotes := &fakeQuotesApi{quotes: map[string]quotesModel.Quote{
		"AAPL": {Ticker: "AAPL", Price: decimal.RequireFromString("100")},
		"GOOG": {Ticker: "GOOG", Price: decimal.RequireFromString("200")},
	}}

	srv := New(&config.Config{}, repo, cache, quotes, nil, nil)

	err := srv.RefreshQuotesCache(context.Background())
	require.NoError(t, err)

	cached, err := cache.GetQuotes(context.Background(), []string{"AAPL", "GOOG"})
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}
