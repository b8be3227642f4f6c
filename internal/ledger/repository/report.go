package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
)

// ProductReportRow is one row of the product_report view
type ProductReportRow struct {
	ProductID         string          `db:"product_id" json:"product_id"`
	ProductCode       string          `db:"product_code" json:"product_code"`
	ProductName       string          `db:"product_name" json:"product_name"`
	DepartmentName    string          `db:"department_name" json:"department_name"`
	SupplierName      *string         `db:"supplier_name" json:"supplier_name,omitempty"`
	Unit              string          `db:"unit" json:"unit"`
	MinStock          decimal.Decimal `db:"min_stock" json:"min_stock"`
	Quantity          decimal.Decimal `db:"quantity" json:"quantity"`
	NearestExpiry     *time.Time      `db:"nearest_expiry" json:"nearest_expiry,omitempty"`
	LastTransactionAt *time.Time      `db:"last_transaction_at" json:"last_transaction_at,omitempty"`
	LowStock          bool            `db:"low_stock" json:"low_stock"`
}

// DashboardStats is the summary surface for the landing dashboard
type DashboardStats struct {
	ProductCount      int             `db:"product_count" json:"product_count"`
	LowStockCount     int             `db:"low_stock_count" json:"low_stock_count"`
	ExpiringLotCount  int             `db:"expiring_lot_count" json:"expiring_lot_count"`
	ExpiredLotCount   int             `db:"expired_lot_count" json:"expired_lot_count"`
	SalesToday        decimal.Decimal `db:"sales_today" json:"sales_today"`
	TransactionsToday int             `db:"transactions_today" json:"transactions_today"`
}

// ReportRepository reads the derived reporting surfaces
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ProductReport reads the product_report view, optionally only low-stock rows
func (r *ReportRepository) ProductReport(ctx context.Context, lowStockOnly bool) ([]*ProductReportRow, error) {
	var rows []*ProductReportRow
	query := `SELECT * FROM product_report`
	if lowStockOnly {
		query += ` WHERE low_stock = true`
	}
	query += ` ORDER BY product_name`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Dashboard computes the dashboard summary counters
func (r *ReportRepository) Dashboard(ctx context.Context, expiryWarningDays int) (*DashboardStats, error) {
	var stats DashboardStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_active = true) AS product_count,
			(SELECT COUNT(*) FROM product_report WHERE low_stock = true) AS low_stock_count,
			(SELECT COUNT(*)
			   FROM received_products rp
			   LEFT JOIN (SELECT lot_id, SUM(quantity_delta) AS remaining
			                FROM inventory_transactions GROUP BY lot_id) t ON t.lot_id = rp.id
			  WHERE rp.status = 'active' AND COALESCE(t.remaining, 0) > 0
			    AND rp.expiry_date >= CURRENT_DATE
			    AND rp.expiry_date <= CURRENT_DATE + $1::int) AS expiring_lot_count,
			(SELECT COUNT(*)
			   FROM received_products rp
			   LEFT JOIN (SELECT lot_id, SUM(quantity_delta) AS remaining
			                FROM inventory_transactions GROUP BY lot_id) t ON t.lot_id = rp.id
			  WHERE rp.status = 'active' AND COALESCE(t.remaining, 0) > 0
			    AND rp.expiry_date < CURRENT_DATE) AS expired_lot_count,
			(SELECT COALESCE(SUM(total_amount), 0) FROM sales
			  WHERE created_at >= CURRENT_DATE) AS sales_today,
			(SELECT COUNT(*) FROM inventory_transactions
			  WHERE created_at >= CURRENT_DATE) AS transactions_today
	`
	if err := r.db.GetContext(ctx, &stats, query, expiryWarningDays); err != nil {
		return nil, err
	}
	return &stats, nil
}
