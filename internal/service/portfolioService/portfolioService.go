package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data/repository"
	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/internal/model/quotesModel"
	"github.com/go-fireball/portfolio-tracker/internal/service"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	InsertAccount(ctx context.Context, friendlyName, accountNumber, brokerName string) (accountID int64, err error)
	GetAccount(ctx context.Context, accountID int64) (account model.Account, err error)
	GetAccounts(ctx context.Context) (accounts []model.Account, err error)
	InsertTransactions(ctx context.Context, accountID int64, transactions []model.ParsedTransaction) (err error)
	GetTransactions(ctx context.Context, accountID int64) (transactions []model.Transaction, err error)
	GetPositions(ctx context.Context, accountID int64) (positions []model.Position, err error)
	GetCashIncome(ctx context.Context, accountID int64) (total decimal.Decimal, err error)
	GetHeldTickers(ctx context.Context) (tickers []string, err error)
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type QuotesApi interface {
	GetQuotes(ctx context.Context, tickers []string) (map[string]quotesModel.Quote, error)
}

type Cache interface {
	GetQuotes(ctx context.Context, tickers []string) (map[string]quotesModel.Quote, error)
	SetQuotes(ctx context.Context, quotes []quotesModel.Quote) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type PortfolioService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	quotesApi       QuotesApi
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	quotesApi QuotesApi,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		quotesApi:       quotesApi,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

func (s *PortfolioService) CreateAccount(ctx context.Context, friendlyName, accountNumber, brokerName string) (accountID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateAccount"

	slog.Debug("CreateAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountNumber", accountNumber))
	defer func() {
		slog.Debug("CreateAccount finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountNumber", accountNumber))
	}()

	accountID, err = s.repo.InsertAccount(ctx, friendlyName, accountNumber, brokerName)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return 0, service.ErrAccountAlreadyExists
		}
		slog.Error("got error from repo.InsertAccount", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return accountID, nil
}

func (s *PortfolioService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListAccounts"

	slog.Debug("ListAccounts start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ListAccounts finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	accounts, err := s.repo.GetAccounts(ctx)
	if err != nil {
		slog.Error("got error from repo.GetAccounts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return accounts, nil
}

// ImportTransactions validates parsed broker rows and stores the valid ones
// for the account within a single database transaction. Rows with zero
// quantity on trade actions and option rows missing option details are
// counted as skipped, matching the import contract.
func (s *PortfolioService) ImportTransactions(ctx context.Context, accountID int64, parsed []model.ParsedTransaction) (result model.ImportResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportTransactions"

	slog.Debug("ImportTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID), slog.Int("parsed", len(parsed)))
	defer func() {
		slog.Debug("ImportTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	}()

	_, err = s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ImportResult{}, service.ErrAccountNotFound
		}
		slog.Error("got error from repo.GetAccount", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ImportResult{}, err
	}

	toInsert := make([]model.ParsedTransaction, 0, len(parsed))
	for _, tx := range parsed {
		if tx.Action.IsTrade() && tx.AssetType != model.AssetCash && tx.Quantity.IsZero() {
			slog.Warn("skipping trade with zero quantity", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", tx.Ticker))
			result.Skipped++
			continue
		}

		if tx.AssetType == model.AssetOption && (tx.OptionType == nil || tx.OptionStrike == nil || tx.OptionExpiry == nil) {
			slog.Warn("skipping option with missing details", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", tx.Ticker))
			result.Skipped++
			continue
		}

		toInsert = append(toInsert, tx)
	}

	if len(toInsert) == 0 {
		return result, nil
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repo.InsertTransactions(ctx, accountID, toInsert)
	})
	if err != nil {
		slog.Error("got error from repo.InsertTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ImportResult{}, err
	}

	result.Imported = len(toInsert)

	return result, nil
}

// getQuotes serves quotes from cache first and falls back to the quotes
// API, warming the cache on the way back.
func (s *PortfolioService) getQuotes(ctx context.Context, tickers []string) (map[string]quotesModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getQuotes"

	if len(tickers) == 0 {
		return map[string]quotesModel.Quote{}, nil
	}

	quotes, err := s.cache.GetQuotes(ctx, tickers)
	if err == nil {
		return quotes, nil
	}

	slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	quotes, err = s.quotesApi.GetQuotes(ctx, tickers)
	if err != nil {
		return nil, err
	}

	toCache := make([]quotesModel.Quote, 0, len(quotes))
	for _, quote := range quotes {
		toCache = append(toCache, quote)
	}
	go s.cache.SetQuotes(context.WithoutCancel(ctx), toCache)

	return quotes, nil
}

// GetPositions returns the account's net positions, valuing stock
// positions via quotes when they are available. Positions stay unvalued
// when the quotes source is unreachable.
func (s *PortfolioService) GetPositions(ctx context.Context, accountID int64) (positions []model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPositions"

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("GetPositions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	}()

	_, err = s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrAccountNotFound
		}
		return nil, err
	}

	positions, err = s.repo.GetPositions(ctx, accountID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if s.cache == nil || s.quotesApi == nil {
		return positions, nil
	}

	tickers := make([]string, 0, len(positions))
	for _, position := range positions {
		if position.AssetType == model.AssetStock {
			tickers = append(tickers, position.Ticker)
		}
	}

	quotes, err := s.getQuotes(ctx, tickers)
	if err != nil {
		slog.Warn("positions left unvalued, quotes unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return positions, nil
	}

	for i := range positions {
		if positions[i].AssetType != model.AssetStock {
			continue
		}
		quote, ok := quotes[positions[i].Ticker]
		if !ok {
			slog.Warn("no quote for held ticker", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", positions[i].Ticker))
			continue
		}
		positions[i].MarketPrice = quote.Price
		positions[i].MarketValue = quote.Price.Mul(positions[i].Quantity)
	}

	return positions, nil
}

func (s *PortfolioService) GetPortfolioSummary(ctx context.Context, accountID int64) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolioSummary"

	slog.Debug("GetPortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("GetPortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	}()

	positions, err := s.GetPositions(ctx, accountID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	cashIncome, err := s.repo.GetCashIncome(ctx, accountID)
	if err != nil {
		slog.Error("got error from repo.GetCashIncome", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	summary = model.PortfolioSummary{
		AccountID:      accountID,
		PositionsCount: len(positions),
		CashIncome:     cashIncome,
	}

	for _, position := range positions {
		summary.MarketValue = summary.MarketValue.Add(position.MarketValue)
	}

	return summary, nil
}

// RefreshQuotesCache pulls quotes for every held stock ticker across all
// accounts into the cache. Runs on the watch scheduler.
func (s *PortfolioService) RefreshQuotesCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshQuotesCache"

	slog.Debug("RefreshQuotesCache start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshQuotesCache finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	tickers, err := s.repo.GetHeldTickers(ctx)
	if err != nil {
		slog.Error("got error from repo.GetHeldTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(tickers) == 0 {
		return nil
	}

	quotes, err := s.quotesApi.GetQuotes(ctx, tickers)
	if err != nil {
		slog.Error("got error from quotesApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	toCache := make([]quotesModel.Quote, 0, len(quotes))
	for _, quote := range quotes {
		toCache = append(toCache, quote)
	}

	err = s.cache.SetQuotes(ctx, toCache)
	if err != nil {
		slog.Error("got error from cache.SetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GenerateReport builds the XLSX portfolio report for the account and,
// when upload is requested, stores it in cloud storage.
func (s *PortfolioService) GenerateReport(ctx context.Context, accountID int64, upload bool) (fileBytes []byte, fileExtension, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	}()

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", service.ErrAccountNotFound
		}
		return nil, "", "", err
	}

	summary, err := s.GetPortfolioSummary(ctx, accountID)
	if err != nil {
		return nil, "", "", err
	}

	positions, err := s.GetPositions(ctx, accountID)
	if err != nil {
		return nil, "", "", err
	}

	transactions, err := s.repo.GetTransactions(ctx, accountID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	report := model.PortfolioReport{
		Account:      account,
		Summary:      summary,
		Positions:    positions,
		Transactions: transactions,
	}

	fileBytes, fileExtension, err = s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	if upload {
		if s.cloudStorage == nil {
			return nil, "", "", errors.New("cloud storage is not configured")
		}

		filename := account.AccountNumber + "_portfolio" + fileExtension
		downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", "", err
		}
	}

	return fileBytes, fileExtension, downloadLink, nil
}
