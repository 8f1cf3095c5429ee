package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm-backend/internal/database"
)

type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListFolders(ctx context.Context) ([]ProductFolder, error)
	ListUnits(ctx context.Context) ([]UnitOfMeasure, error)
	ListServices(ctx context.Context, archived *bool) ([]Service, error)
}

type CatalogRepositoryImpl struct {
	db *sql.DB
}

func NewCatalogRepository(db *database.PostgresDB) CatalogRepository {
	return &CatalogRepositoryImpl{db: db.DB}
}

const productColumns = `p.id, p.external_id, p.name, COALESCE(p.code, ''), COALESCE(p.article, ''),
	COALESCE(p.barcode, ''), COALESCE(p.description, ''), COALESCE(p.sale_price, 0),
	COALESCE(p.buy_price, 0), COALESCE(p.weight, 0), COALESCE(p.volume, 0), p.archived,
	p.folder_id, COALESCE(f.name, ''), p.unit_id, COALESCE(u.name, ''), p.supplier_id,
	p.sync_status, p.last_synced_at, p.updated_at`

const productJoins = ` FROM product p
	LEFT JOIN product_folder f ON f.id = p.folder_id
	LEFT JOIN unit_of_measure u ON u.id = p.unit_id`

func (r *CatalogRepositoryImpl) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error) {
	conditions := []string{"p.is_deleted = FALSE"}
	args := []any{}

	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conditions = append(conditions, fmt.Sprintf("p.folder_id = $%d", len(args)))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		conditions = append(conditions, fmt.Sprintf("p.archived = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.code ILIKE $%d OR p.article ILIKE $%d)", n, n, n))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*)" + productJoins + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := "SELECT " + productColumns + productJoins + where +
		fmt.Sprintf(" ORDER BY p.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *product)
	}
	return products, total, rows.Err()
}

func (r *CatalogRepositoryImpl) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := "SELECT " + productColumns + productJoins + " WHERE p.id = $1"
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var folderID, unitID, supplierID sql.NullInt64
	var lastSynced sql.NullTime

	err := row.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Code, &p.Article, &p.Barcode,
		&p.Description, &p.SalePrice, &p.BuyPrice, &p.Weight, &p.Volume, &p.Archived,
		&folderID, &p.FolderName, &unitID, &p.UnitName, &supplierID,
		&p.SyncStatus, &lastSynced, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if folderID.Valid {
		p.FolderID = &folderID.Int64
	}
	if unitID.Valid {
		p.UnitID = &unitID.Int64
	}
	if supplierID.Valid {
		p.SupplierID = &supplierID.Int64
	}
	if lastSynced.Valid {
		p.LastSynced = &lastSynced.Time
	}
	return &p, nil
}

func (r *CatalogRepositoryImpl) ListFolders(ctx context.Context) ([]ProductFolder, error) {
	query := `SELECT id, external_id, name, COALESCE(path_name, ''), parent_id, archived
		FROM product_folder WHERE is_deleted = FALSE ORDER BY path_name, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []ProductFolder
	for rows.Next() {
		var f ProductFolder
		var parentID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.ExternalID, &f.Name, &f.PathName, &parentID, &f.Archived); err != nil {
			return nil, err
		}
		if parentID.Valid {
			f.ParentID = &parentID.Int64
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (r *CatalogRepositoryImpl) ListUnits(ctx context.Context) ([]UnitOfMeasure, error) {
	query := `SELECT id, external_id, name, COALESCE(code, ''), COALESCE(description, '')
		FROM unit_of_measure ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []UnitOfMeasure
	for rows.Next() {
		var u UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Code, &u.Description); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *CatalogRepositoryImpl) ListServices(ctx context.Context, archived *bool) ([]Service, error) {
	query := `SELECT id, external_id, name, COALESCE(code, ''), COALESCE(description, ''),
			COALESCE(sale_price, 0), COALESCE(buy_price, 0), archived, folder_id
		FROM service WHERE is_deleted = FALSE`
	args := []any{}
	if archived != nil {
		query += " AND archived = $1"
		args = append(args, *archived)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		var folderID sql.NullInt64
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.Name, &s.Code, &s.Description,
			&s.SalePrice, &s.BuyPrice, &s.Archived, &folderID); err != nil {
			return nil, err
		}
		if folderID.Valid {
			s.FolderID = &folderID.Int64
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
