package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-fireball/portfolio-tracker/internal/model"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/xuri/excelize/v2"
)

const dateFormat = "2006-01-02"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillPositionsSheet(f, report); err != nil {
		return nil, "", err
	}

	if err := g.fillTransactionsSheet(f, report); err != nil {
		return nil, "", err
	}

	// Drop the default "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillPositionsSheet(f *excelize.File, report model.PortfolioReport) error {
	const sheetName = "Positions"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return err
	}

	title := report.Account.AccountNumber
	if report.Account.FriendlyName != "" {
		title = fmt.Sprintf("%s (%s)", report.Account.FriendlyName, report.Account.AccountNumber)
	}
	f.SetCellValue(sheetName, "A1", title)

	styleID, err := g.headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "asset type")
	_ = f.SetCellStr(sheetName, "C2", "quantity")
	_ = f.SetCellStr(sheetName, "D2", "cost")
	_ = f.SetCellStr(sheetName, "E2", "market price")
	_ = f.SetCellStr(sheetName, "F2", "market value")

	for i, position := range report.Positions {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", i+3), position.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", i+3), string(position.AssetType))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", i+3), position.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", i+3), position.Cost.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", i+3), position.MarketPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", i+3), position.MarketValue.InexactFloat64())
	}

	// summary block below positions
	rowNum := len(report.Positions) + 5

	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Summary")

	styleID, err = g.headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "positions")
	_ = f.SetCellInt(sheetName, fmt.Sprintf("B%d", rowNum), int64(report.Summary.PositionsCount))

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "market value")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), report.Summary.MarketValue.InexactFloat64())

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "cash income")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), report.Summary.CashIncome.InexactFloat64())

	return nil
}

func (g *XLSXGenerator) fillTransactionsSheet(f *excelize.File, report model.PortfolioReport) error {
	const sheetName = "Transactions"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "I1"); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Transaction history")

	styleID, err := g.headerStyle(f, "#cccccc")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "date")
	_ = f.SetCellStr(sheetName, "B2", "action")
	_ = f.SetCellStr(sheetName, "C2", "ticker")
	_ = f.SetCellStr(sheetName, "D2", "asset type")
	_ = f.SetCellStr(sheetName, "E2", "quantity")
	_ = f.SetCellStr(sheetName, "F2", "price")
	_ = f.SetCellStr(sheetName, "G2", "fees")
	_ = f.SetCellStr(sheetName, "H2", "amount")
	_ = f.SetCellStr(sheetName, "I2", "notes")

	for i, tx := range report.Transactions {
		rowNum := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), tx.Date.Format(dateFormat))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), string(tx.Action))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), tx.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), string(tx.AssetType))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), tx.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), tx.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), tx.Fees.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), tx.TotalAmount.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("I%d", rowNum), tx.Notes)
	}

	return nil
}
