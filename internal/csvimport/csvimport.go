package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-fireball/portfolio-tracker/internal/csvimport/schwab"
	"github.com/go-fireball/portfolio-tracker/internal/model"
)

var ErrUnknownFormat = errors.New("error unknown broker or format")

// Parser turns a broker CSV export into normalized transactions.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) ([]model.ParsedTransaction, error)
}

func NewParser(broker, format string) (Parser, error) {
	switch {
	case broker == "schwab" && format == "transactions_v1":
		return schwab.NewTransactionsParser(), nil
	}
	return nil, fmt.Errorf("%w: broker=%s format=%s", ErrUnknownFormat, broker, format)
}
