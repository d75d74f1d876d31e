package schwab

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "01/02/2006"
	shortDateLayout = "01/02/06"
)

var (
	// PUT MICROSOFT CORP $400 EXP 12/18/26
	optionDescRegex = regexp.MustCompile(`(CALL|PUT)\s+([A-Z\s.]+?)\s+\$(\d+(?:\.\d+)?)\s+EXP\s+(\d{1,2}/\d{1,2}/\d{2,4})`)
	// MSFT 12/18/2026 400.00 P
	optionSymbolRegex = regexp.MustCompile(`^([A-Z]+)\s+(\d{1,2}/\d{1,2}/\d{2,4})\s+([\d.]+)\s+([CP])`)
)

var actionMap = map[string]model.ActionType{
	"Buy":                model.ActionBuy,
	"Sell":               model.ActionSell,
	"Sell to Open":       model.ActionSellToOpen,
	"Buy to Open":        model.ActionBuyToOpen,
	"Sell to Close":      model.ActionSellToClose,
	"Buy to Close":       model.ActionBuyToClose,
	"Qualified Dividend": model.ActionDividend,
	"Cash Dividend":      model.ActionDividend,
	"Interest Income":    model.ActionInterest,
}

// Cash movements and account housekeeping rows that carry no position
// information. Skipped without a warning.
var skippedActions = map[string]struct{}{
	"moneylink transfer": {},
	"journal":            {},
	"service fee":        {},
	"funds received":     {},
	"funds paid":         {},
	"dividend paid":      {},
	"adjustment":         {},
	"bank interest":      {},
	"atm withdrawal":     {},
	"bill pay":           {},
	"check paid":         {},
	"client requested electronic funding receipt (pull)":      {},
	"client requested electronic funding disbursement (push)": {},
	"dividend reinvestment":  {},
	"funds transfer":         {},
	"tax payment":            {},
	"wire transfer incoming": {},
	"wire transfer outgoing": {},
}

// TransactionsParser parses the Schwab "transactions_v1" CSV export with
// columns Date, Action, Symbol, Description, Quantity, Price, Fees & Comm, Amount.
type TransactionsParser struct{}

func NewTransactionsParser() *TransactionsParser {
	return &TransactionsParser{}
}

// parseDecimal normalizes Schwab money strings: "$1,500.00" and "(1500)"
// style negatives. Blank or unparseable values become zero.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Parse(shortDateLayout, s)
	}
	return t, nil
}

func (p *TransactionsParser) Parse(ctx context.Context, r io.Reader) ([]model.ParsedTransaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// Schwab exports carry BOMs, NBSPs and stray NUL bytes.
	content := string(raw)
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\x00", "")
	content = strings.ReplaceAll(content, "\u00a0", "")

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var parsed []model.ParsedTransaction

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("skipping malformed csv row", slog.String("rqID", rqID), slog.Int("row", rowNum), slog.String("err", err.Error()))
			continue
		}

		rawAction := field(record, "Action")
		if rawAction == "" {
			continue
		}

		action, ok := actionMap[rawAction]
		if !ok {
			if _, known := skippedActions[strings.ToLower(rawAction)]; !known {
				slog.Warn("skipping row with unmapped action", slog.String("rqID", rqID), slog.Int("row", rowNum), slog.String("action", rawAction))
			}
			continue
		}

		dateStr := field(record, "Date")
		if dateStr == "" {
			continue
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			slog.Warn("skipping row with invalid date", slog.String("rqID", rqID), slog.Int("row", rowNum), slog.String("date", dateStr))
			continue
		}

		symbol := field(record, "Symbol")
		description := field(record, "Description")

		tx := model.ParsedTransaction{
			Date:           date,
			Action:         action,
			AssetType:      model.AssetStock,
			Ticker:         symbol,
			Quantity:       parseDecimal(field(record, "Quantity")).Abs(),
			Price:          parseDecimal(field(record, "Price")).Abs(),
			Fees:           parseDecimal(field(record, "Fees & Comm")).Abs(),
			TotalAmount:    parseDecimal(field(record, "Amount")),
			RawDescription: description,
			RawSymbol:      symbol,
		}

		switch {
		case action.IsTrade() && action != model.ActionBuy && action != model.ActionSell:
			tx.AssetType = model.AssetOption
			if !p.fillOptionDetails(&tx, symbol, description) {
				slog.Warn(
					"option action without parseable option details",
					slog.String("rqID", rqID),
					slog.Int("row", rowNum),
					slog.String("action", rawAction),
					slog.String("symbol", symbol),
					slog.String("description", description),
				)
				continue
			}

		case action == model.ActionDividend || action == model.ActionInterest:
			tx.AssetType = model.AssetCash
			if tx.Ticker == "" {
				tx.Ticker = description
			}
		}

		tx.Ticker = strings.TrimSpace(tx.Ticker)
		parsed = append(parsed, tx)
	}

	return parsed, nil
}

// fillOptionDetails extracts option type, strike and expiry from the
// Symbol field ("MSFT 12/18/2026 400.00 P") or, failing that, from the
// Description ("PUT MICROSOFT CORP $400 EXP 12/18/26").
func (p *TransactionsParser) fillOptionDetails(tx *model.ParsedTransaction, symbol, description string) bool {
	if symbol != "" {
		if m := optionSymbolRegex.FindStringSubmatch(symbol); m != nil {
			strike, err := decimal.NewFromString(m[3])
			if err != nil {
				return false
			}
			expiry, err := parseExpiry(m[2])
			if err != nil {
				return false
			}

			optType := model.OptionPut
			if m[4] == "C" {
				optType = model.OptionCall
			}

			tx.Ticker = m[1]
			tx.OptionType = &optType
			tx.OptionStrike = &strike
			tx.OptionExpiry = &expiry
			return true
		}
	}

	if description == "" {
		return false
	}

	m := optionDescRegex.FindStringSubmatch(strings.ToUpper(description))
	if m == nil {
		return false
	}

	strike, err := decimal.NewFromString(m[3])
	if err != nil {
		return false
	}
	expiry, err := parseExpiry(m[4])
	if err != nil {
		return false
	}

	optType := model.OptionType(m[1])

	// Prefer the underlying ticker from the Symbol column when it is a
	// plain ticker, otherwise fall back to the first word of the name
	// captured from the description.
	if symbol != "" && !strings.Contains(symbol, " ") {
		tx.Ticker = symbol
	} else {
		name := strings.TrimSpace(m[2])
		tx.Ticker = strings.SplitN(name, " ", 2)[0]
	}

	tx.OptionType = &optType
	tx.OptionStrike = &strike
	tx.OptionExpiry = &expiry
	return true
}
