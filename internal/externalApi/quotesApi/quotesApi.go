package quotesApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/internal/model/quotesModel"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/go-resty/resty/v2"
)

type QuotesApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuotesApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuotesApi.Url)
	return &QuotesApi{client: client}
}

func (a *QuotesApi) GetQuotes(ctx context.Context, tickers []string) (map[string]quotesModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(tickers) == 0 {
		return map[string]quotesModel.Quote{}, nil
	}

	slog.Debug("QuotesApi.GetQuotes start", slog.String("rqID", rqID), slog.Any("tickers", tickers))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", strings.Join(tickers, ",")).
		Get("/v1/quotes")

	if err != nil {
		slog.Error("error while dialing quotes api", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.IsError() {
		slog.Error("quotes api returned error status", slog.String("rqID", rqID), slog.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("quotes api status %d", resp.StatusCode())
	}

	rawQuotes := quotesModel.RawQuotesResponse{}
	err = json.Unmarshal(resp.Body(), &rawQuotes)
	if err != nil {
		slog.Error("can't unmarshall response into quotesModel.RawQuotesResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	res := make(map[string]quotesModel.Quote, len(rawQuotes.Quotes))
	for _, quote := range rawQuotes.Quotes {
		res[quote.Ticker] = quote
	}

	slog.Debug("QuotesApi.GetQuotes request complete", slog.String("rqID", rqID))

	return res, nil
}
