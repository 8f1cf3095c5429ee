package sync

import (
	"context"
	"database/sql"
	"fmt"

	"crm-backend/internal/database"

	"go.uber.org/zap"
)

// ReferenceLink describes one pending reference: rows in Table whose
// PendingColumn matches an external_id in RefTable get their FKColumn set to
// the referenced local id.
type ReferenceLink struct {
	Table         string
	FKColumn      string
	PendingColumn string
	RefTable      string
}

// referenceLinks is the full set of cross-entity references. Order does not
// matter: each statement is independent and idempotent.
var referenceLinks = []ReferenceLink{
	{Table: "product_folder", FKColumn: "parent_id", PendingColumn: "parent_external_id", RefTable: "product_folder"},
	{Table: "product", FKColumn: "folder_id", PendingColumn: "folder_external_id", RefTable: "product_folder"},
	{Table: "product", FKColumn: "unit_id", PendingColumn: "unit_external_id", RefTable: "unit_of_measure"},
	{Table: "product", FKColumn: "supplier_id", PendingColumn: "supplier_external_id", RefTable: "counterparty"},
	{Table: "service", FKColumn: "folder_id", PendingColumn: "folder_external_id", RefTable: "product_folder"},
	{Table: "service", FKColumn: "unit_id", PendingColumn: "unit_external_id", RefTable: "unit_of_measure"},
	{Table: "employee", FKColumn: "organization_id", PendingColumn: "organization_external_id", RefTable: "organization"},
	{Table: "contract", FKColumn: "counterparty_id", PendingColumn: "counterparty_external_id", RefTable: "counterparty"},
	{Table: "contract", FKColumn: "organization_id", PendingColumn: "organization_external_id", RefTable: "organization"},
	{Table: "contract", FKColumn: "project_id", PendingColumn: "project_external_id", RefTable: "project"},
	{Table: "stock", FKColumn: "product_id", PendingColumn: "product_external_id", RefTable: "product"},
	{Table: "stock", FKColumn: "store_id", PendingColumn: "store_external_id", RefTable: "store"},
	{Table: "sales_document", FKColumn: "counterparty_id", PendingColumn: "counterparty_external_id", RefTable: "counterparty"},
	{Table: "sales_document", FKColumn: "organization_id", PendingColumn: "organization_external_id", RefTable: "organization"},
	{Table: "sales_document", FKColumn: "store_id", PendingColumn: "store_external_id", RefTable: "store"},
	{Table: "sales_document", FKColumn: "project_id", PendingColumn: "project_external_id", RefTable: "project"},
	{Table: "purchase_document", FKColumn: "counterparty_id", PendingColumn: "counterparty_external_id", RefTable: "counterparty"},
	{Table: "purchase_document", FKColumn: "organization_id", PendingColumn: "organization_external_id", RefTable: "organization"},
	{Table: "purchase_document", FKColumn: "store_id", PendingColumn: "store_external_id", RefTable: "store"},
	{Table: "stock_movement", FKColumn: "store_id", PendingColumn: "store_external_id", RefTable: "store"},
	{Table: "stock_movement", FKColumn: "source_store_id", PendingColumn: "source_store_external_id", RefTable: "store"},
	{Table: "stock_movement", FKColumn: "target_store_id", PendingColumn: "target_store_external_id", RefTable: "store"},
}

// Resolver rewrites pending external-id references into local integer FKs
// with set-based updates, one statement per link.
type Resolver struct {
	db  *sql.DB
	log *zap.Logger
}

func NewResolver(db *database.PostgresDB, log *zap.Logger) *Resolver {
	return &Resolver{db: db.DB, log: log}
}

// ResolveAll runs every link statement. A failing statement is logged and the
// remaining links still run; rows whose reference target has not been synced
// yet simply stay pending until a later pass.
func (r *Resolver) ResolveAll(ctx context.Context) map[string]int {
	resolved := make(map[string]int)
	for _, link := range referenceLinks {
		count, err := r.resolve(ctx, link)
		if err != nil {
			r.log.Warn("Reference resolution failed",
				zap.String("table", link.Table),
				zap.String("column", link.FKColumn),
				zap.Error(err))
			continue
		}
		if count > 0 {
			resolved[link.Table+"."+link.FKColumn] = count
		}
	}
	return resolved
}

func (r *Resolver) resolve(ctx context.Context, link ReferenceLink) (int, error) {
	query := fmt.Sprintf(
		`UPDATE %s AS dep SET %s = ref.id, updated_at = NOW()
		FROM %s AS ref
		WHERE dep.%s = ref.external_id AND dep.%s IS NULL`,
		link.Table, link.FKColumn, link.RefTable, link.PendingColumn, link.FKColumn,
	)

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
