package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm-backend/internal/database"
)

type InventoryRepository interface {
	ListStores(ctx context.Context) ([]Store, error)
	ListStock(ctx context.Context, filter StockFilter) ([]StockLevel, int, error)
}

type InventoryRepositoryImpl struct {
	db *sql.DB
}

func NewInventoryRepository(db *database.PostgresDB) InventoryRepository {
	return &InventoryRepositoryImpl{db: db.DB}
}

func (r *InventoryRepositoryImpl) ListStores(ctx context.Context) ([]Store, error) {
	query := `SELECT id, external_id, name, COALESCE(code, ''), COALESCE(address, ''), archived
		FROM store WHERE is_deleted = FALSE ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.Name, &s.Code, &s.Address, &s.Archived); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *InventoryRepositoryImpl) ListStock(ctx context.Context, filter StockFilter) ([]StockLevel, int, error) {
	conditions := []string{"s.is_deleted = FALSE"}
	args := []any{}

	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("s.product_id = $%d", len(args)))
	}
	if filter.StoreID != nil {
		args = append(args, *filter.StoreID)
		conditions = append(conditions, fmt.Sprintf("s.store_id = $%d", len(args)))
	}

	joins := ` FROM stock s
		LEFT JOIN product p ON p.id = s.product_id
		LEFT JOIN store st ON st.id = s.store_id`
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+joins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT s.id, s.product_id, COALESCE(p.name, ''), s.store_id, COALESCE(st.name, ''),
			s.stock, s.reserve, s.in_transit, s.available,
			COALESCE(s.price, 0), COALESCE(s.sale_price, 0), s.last_synced_at` +
		joins + where +
		fmt.Sprintf(" ORDER BY p.name, st.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var lvl StockLevel
		var productID, storeID sql.NullInt64
		var lastSynced sql.NullTime
		if err := rows.Scan(&lvl.ID, &productID, &lvl.ProductName, &storeID, &lvl.StoreName,
			&lvl.Stock, &lvl.Reserve, &lvl.InTransit, &lvl.Available,
			&lvl.Price, &lvl.SalePrice, &lastSynced); err != nil {
			return nil, 0, err
		}
		if productID.Valid {
			lvl.ProductID = &productID.Int64
		}
		if storeID.Valid {
			lvl.StoreID = &storeID.Int64
		}
		if lastSynced.Valid {
			lvl.LastSynced = &lastSynced.Time
		}
		levels = append(levels, lvl)
	}
	return levels, total, rows.Err()
}
