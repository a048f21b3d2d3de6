package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository defines the interface for sale data access. Line items are
// stored and loaded together with their sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context) ([]*domain.Sale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, sale_date, client_id, payment_method, status, notes,
	general_discount_pct, tax_pct, total, created_at, updated_at`

func scanSale(row interface{ Scan(...any) error }) (*domain.Sale, error) {
	sale := &domain.Sale{}
	err := row.Scan(
		&sale.ID,
		&sale.Date,
		&sale.ClientID,
		&sale.PaymentMethod,
		&sale.Status,
		&sale.Notes,
		&sale.GeneralDiscountPct,
		&sale.TaxPct,
		&sale.Total,
		&sale.CreatedAt,
		&sale.UpdatedAt,
	)
	return sale, err
}

// withTx runs fn in a transaction, rolling back on error
func (r *saleRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, sale *domain.Sale) error {
	query := `
		INSERT INTO sale_items (sale_id, position, product_id, quantity, unit_price, discount_pct)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, item := range sale.Items {
		if _, err := tx.ExecContext(ctx, query,
			sale.ID,
			i+1,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.DiscountPct,
		); err != nil {
			return fmt.Errorf("failed to insert sale item %d: %w", i+1, err)
		}
	}
	return nil
}

// Create inserts a sale and its line items in one transaction
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			sale.ID,
			sale.Date,
			sale.ClientID,
			sale.PaymentMethod,
			sale.Status,
			sale.Notes,
			sale.GeneralDiscountPct,
			sale.TaxPct,
			sale.Total,
			sale.CreatedAt,
			sale.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE clients SET purchase_count = purchase_count + 1 WHERE id = $1`,
			sale.ClientID,
		); err != nil {
			return fmt.Errorf("failed to update client purchase count: %w", err)
		}

		return insertItems(ctx, tx, sale)
	})
}

// Update replaces a sale's header fields and line items
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	query := `
		UPDATE sales
		SET sale_date = $2, client_id = $3, payment_method = $4, status = $5, notes = $6,
		    general_discount_pct = $7, tax_pct = $8, total = $9
		WHERE id = $1
	`

	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			sale.ID,
			sale.Date,
			sale.ClientID,
			sale.PaymentMethod,
			sale.Status,
			sale.Notes,
			sale.GeneralDiscountPct,
			sale.TaxPct,
			sale.Total,
		)
		if err != nil {
			return fmt.Errorf("failed to update sale: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrSaleNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
			return fmt.Errorf("failed to clear sale items: %w", err)
		}

		return insertItems(ctx, tx, sale)
	})
}

// FindByID retrieves a sale with its line items
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := r.loadItems(ctx, `WHERE sale_id = $1`, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items[sale.ID]

	return sale, nil
}

// List retrieves every sale, newest first, with line items attached
func (r *saleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	items, err := r.loadItems(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		sale.Items = items[sale.ID]
	}

	return sales, nil
}

func (r *saleRepository) loadItems(ctx context.Context, where string, args ...any) (map[uuid.UUID][]domain.LineItem, error) {
	query := `
		SELECT sale_id, product_id, quantity, unit_price, discount_pct
		FROM sale_items ` + where + `
		ORDER BY sale_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.LineItem)
	for rows.Next() {
		var saleID uuid.UUID
		var item domain.LineItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.DiscountPct); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items[saleID] = append(items[saleID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}
