package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/pkg/config"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// ReportService reads the derived reporting surfaces
type ReportService struct {
	reports *repository.ReportRepository
	cfg     config.LedgerConfig
	log     *logger.Logger
}

// NewReportService creates the report service
func NewReportService(reports *repository.ReportRepository, cfg config.LedgerConfig, log *logger.Logger) *ReportService {
	return &ReportService{reports: reports, cfg: cfg, log: log.WithComponent("report")}
}

// ProductReport returns the per-product stock report
func (s *ReportService) ProductReport(ctx context.Context, lowStockOnly bool) ([]*repository.ProductReportRow, error) {
	return s.reports.ProductReport(ctx, lowStockOnly)
}

// Dashboard returns the dashboard summary
func (s *ReportService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	return s.reports.Dashboard(ctx, s.cfg.ExpiryWarningDays)
}

// ExportProductReport renders the product report as an xlsx workbook
func (s *ReportService) ExportProductReport(ctx context.Context, lowStockOnly bool) (*bytes.Buffer, error) {
	rows, err := s.reports.ProductReport(ctx, lowStockOnly)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Product Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Code", "Product", "Department", "Supplier", "Unit",
		"Quantity", "Min Stock", "Low Stock", "Nearest Expiry", "Last Transaction",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	for i, row := range rows {
		r := i + 2
		quantity, _ := row.Quantity.Float64()
		minStock, _ := row.MinStock.Float64()

		supplier := ""
		if row.SupplierName != nil {
			supplier = *row.SupplierName
		}
		nearestExpiry := ""
		if row.NearestExpiry != nil {
			nearestExpiry = row.NearestExpiry.Format("2006-01-02")
		}
		lastTxn := ""
		if row.LastTransactionAt != nil {
			lastTxn = row.LastTransactionAt.Format("2006-01-02 15:04")
		}
		lowStock := "no"
		if row.LowStock {
			lowStock = "yes"
		}

		values := []interface{}{
			row.ProductCode, row.ProductName, row.DepartmentName, supplier, row.Unit,
			quantity, minStock, lowStock, nearestExpiry, lastTxn,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, r)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 18)
	f.SetColWidth(sheet, "C", "E", 14)
	f.SetColWidth(sheet, "I", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("product report exported")
	return buf, nil
}
