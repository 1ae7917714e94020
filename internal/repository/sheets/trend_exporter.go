package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/watermeter/internal/config"
	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/metrics"
)

// TrendsRange is the sheet range trend rows are appended to.
const TrendsRange = "Trends!A:D"

// RowAppender appends rows to a spreadsheet range.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetAppender implements RowAppender using the official Google Sheets API.
type GoogleSheetAppender struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetAppender builds a Google Sheets backed appender.
func NewGoogleSheetAppender(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetAppender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetAppender{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows appends the provided rows below the last filled row of sheetRange.
func (a *GoogleSheetAppender) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := a.service.Spreadsheets.Values.Append(a.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	a.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// TrendExporter writes system trend points to a spreadsheet.
type TrendExporter struct {
	appender RowAppender
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewTrendExporter wires a trend exporter on top of appender.
func NewTrendExporter(appender RowAppender, m *metrics.Metrics, logger *zap.Logger) *TrendExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendExporter{appender: appender, metrics: m, logger: logger}
}

// ExportTrends appends one row per point in a single call. An empty series is a no-op.
func (e *TrendExporter) ExportTrends(ctx context.Context, points []models.TrendPoint) error {
	if len(points) == 0 {
		e.logger.Debug("no trend points to export")
		return nil
	}

	err := e.appender.AppendRows(ctx, TrendsRange, TrendRows(points))
	e.metrics.IncExport(err)
	if err != nil {
		return fmt.Errorf("export trends: %w", err)
	}

	e.logger.Info("trends exported", zap.Int("points", len(points)))
	return nil
}

// TrendRows converts trend points to date, total, average, homes rows.
func TrendRows(points []models.TrendPoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, []interface{}{
			p.Date,
			p.TotalConsumption,
			p.AveragePerHome,
			p.HomeCount,
		})
	}
	return rows
}
