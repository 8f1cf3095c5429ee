package database

import (
	"context"
	"fmt"
)

// syncedEntityColumns are shared by every table mirrored from the ERP.
// external_id is the idempotency key for upserts; *_external_id columns hold
// unresolved references until the resolver pass rewrites the integer FKs.
const syncedEntityColumns = `
	id SERIAL PRIMARY KEY,
	external_id VARCHAR(255) NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	last_synced_at TIMESTAMP NULL,
	sync_status VARCHAR(50) NOT NULL DEFAULT 'pending'`

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_folder (` + syncedEntityColumns + `,
		name VARCHAR(255) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL,
		path_name VARCHAR(500) NULL,
		parent_external_id VARCHAR(255) NULL,
		parent_id INTEGER NULL REFERENCES product_folder(id),
		archived BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS unit_of_measure (` + syncedEntityColumns + `,
		name VARCHAR(255) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS counterparty (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL,
		email VARCHAR(255) NULL,
		phone VARCHAR(100) NULL,
		legal_title VARCHAR(500) NULL,
		legal_address TEXT NULL,
		actual_address TEXT NULL,
		inn VARCHAR(20) NULL,
		kpp VARCHAR(20) NULL,
		ogrn VARCHAR(20) NULL,
		okpo VARCHAR(20) NULL,
		company_type VARCHAR(50) NULL,
		sales_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		is_supplier BOOLEAN NOT NULL DEFAULT FALSE,
		is_customer BOOLEAN NOT NULL DEFAULT TRUE,
		discount_percentage NUMERIC(5,2) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS product (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		article VARCHAR(255) NULL,
		barcode VARCHAR(255) NULL,
		description TEXT NULL,
		sale_price NUMERIC(15,2) NULL,
		buy_price NUMERIC(15,2) NULL,
		min_price NUMERIC(15,2) NULL,
		weight NUMERIC(10,3) NULL,
		volume NUMERIC(10,3) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		folder_external_id VARCHAR(255) NULL,
		folder_id INTEGER NULL REFERENCES product_folder(id),
		unit_external_id VARCHAR(255) NULL,
		unit_id INTEGER NULL REFERENCES unit_of_measure(id),
		supplier_external_id VARCHAR(255) NULL,
		supplier_id INTEGER NULL REFERENCES counterparty(id)
	)`,
	`CREATE TABLE IF NOT EXISTS service (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL,
		sale_price NUMERIC(15,2) NULL,
		buy_price NUMERIC(15,2) NULL,
		min_price NUMERIC(15,2) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		folder_external_id VARCHAR(255) NULL,
		folder_id INTEGER NULL REFERENCES product_folder(id),
		unit_external_id VARCHAR(255) NULL,
		unit_id INTEGER NULL REFERENCES unit_of_measure(id)
	)`,
	`CREATE TABLE IF NOT EXISTS store (` + syncedEntityColumns + `,
		name VARCHAR(255) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description VARCHAR(500) NULL,
		address VARCHAR(500) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS stock (` + syncedEntityColumns + `,
		product_external_id VARCHAR(255) NULL,
		product_id INTEGER NULL REFERENCES product(id),
		store_external_id VARCHAR(255) NULL,
		store_id INTEGER NULL REFERENCES store(id),
		stock NUMERIC(15,3) NOT NULL DEFAULT 0,
		reserve NUMERIC(15,3) NOT NULL DEFAULT 0,
		in_transit NUMERIC(15,3) NOT NULL DEFAULT 0,
		available NUMERIC(15,3) NOT NULL DEFAULT 0,
		price NUMERIC(15,2) NULL,
		sale_price NUMERIC(15,2) NULL
	)`,
	`CREATE TABLE IF NOT EXISTS organization (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL,
		legal_title VARCHAR(500) NULL,
		legal_address TEXT NULL,
		actual_address TEXT NULL,
		inn VARCHAR(12) NULL,
		kpp VARCHAR(9) NULL,
		ogrn VARCHAR(15) NULL,
		okpo VARCHAR(10) NULL,
		email VARCHAR(255) NULL,
		phone VARCHAR(50) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS employee (` + syncedEntityColumns + `,
		first_name VARCHAR(255) NULL,
		middle_name VARCHAR(255) NULL,
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		full_name VARCHAR(500) NOT NULL DEFAULT '',
		position VARCHAR(255) NULL,
		code VARCHAR(255) NULL,
		email VARCHAR(255) NULL,
		phone VARCHAR(50) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		organization_external_id VARCHAR(255) NULL,
		organization_id INTEGER NULL REFERENCES organization(id)
	)`,
	`CREATE TABLE IF NOT EXISTS project (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		description TEXT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS contract (` + syncedEntityColumns + `,
		name VARCHAR(500) NOT NULL DEFAULT '',
		code VARCHAR(255) NULL,
		number VARCHAR(255) NULL,
		description TEXT NULL,
		moment TIMESTAMP NULL,
		contract_type VARCHAR(50) NOT NULL DEFAULT 'sales',
		sum_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		reward_percent NUMERIC(5,2) NULL,
		reward_type VARCHAR(50) NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		counterparty_external_id VARCHAR(255) NULL,
		counterparty_id INTEGER NULL REFERENCES counterparty(id),
		organization_external_id VARCHAR(255) NULL,
		organization_id INTEGER NULL REFERENCES organization(id),
		project_external_id VARCHAR(255) NULL,
		project_id INTEGER NULL REFERENCES project(id)
	)`,
	`CREATE TABLE IF NOT EXISTS currency (` + syncedEntityColumns + `,
		name VARCHAR(255) NOT NULL DEFAULT '',
		full_name VARCHAR(500) NULL,
		code VARCHAR(10) NULL,
		iso_code VARCHAR(10) NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		is_indirect BOOLEAN NOT NULL DEFAULT FALSE,
		multiplicity INTEGER NOT NULL DEFAULT 1,
		rate NUMERIC(20,10) NOT NULL DEFAULT 1,
		archived BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS country (` + syncedEntityColumns + `,
		name VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT NULL,
		code VARCHAR(10) NULL,
		external_code VARCHAR(10) NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_document (` + syncedEntityColumns + `,
		document_type VARCHAR(50) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		number VARCHAR(100) NULL,
		description TEXT NULL,
		moment TIMESTAMP NULL,
		applicable BOOLEAN NOT NULL DEFAULT TRUE,
		sum_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		payed_sum NUMERIC(15,2) NOT NULL DEFAULT 0,
		shipped_sum NUMERIC(15,2) NOT NULL DEFAULT 0,
		vat_sum NUMERIC(15,2) NOT NULL DEFAULT 0,
		state VARCHAR(100) NULL,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		counterparty_external_id VARCHAR(255) NULL,
		counterparty_id INTEGER NULL REFERENCES counterparty(id),
		organization_external_id VARCHAR(255) NULL,
		organization_id INTEGER NULL REFERENCES organization(id),
		store_external_id VARCHAR(255) NULL,
		store_id INTEGER NULL REFERENCES store(id),
		project_external_id VARCHAR(255) NULL,
		project_id INTEGER NULL REFERENCES project(id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_document (` + syncedEntityColumns + `,
		document_type VARCHAR(50) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		number VARCHAR(100) NULL,
		description TEXT NULL,
		moment TIMESTAMP NULL,
		applicable BOOLEAN NOT NULL DEFAULT TRUE,
		sum_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		payed_sum NUMERIC(15,2) NOT NULL DEFAULT 0,
		vat_sum NUMERIC(15,2) NOT NULL DEFAULT 0,
		state VARCHAR(100) NULL,
		shared BOOLEAN NOT NULL DEFAULT TRUE,
		counterparty_external_id VARCHAR(255) NULL,
		counterparty_id INTEGER NULL REFERENCES counterparty(id),
		organization_external_id VARCHAR(255) NULL,
		organization_id INTEGER NULL REFERENCES organization(id),
		store_external_id VARCHAR(255) NULL,
		store_id INTEGER NULL REFERENCES store(id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movement (` + syncedEntityColumns + `,
		document_type VARCHAR(50) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT NULL,
		moment TIMESTAMP NULL,
		applicable BOOLEAN NOT NULL DEFAULT TRUE,
		sum_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		store_external_id VARCHAR(255) NULL,
		store_id INTEGER NULL REFERENCES store(id),
		source_store_external_id VARCHAR(255) NULL,
		source_store_id INTEGER NULL REFERENCES store(id),
		target_store_external_id VARCHAR(255) NULL,
		target_store_id INTEGER NULL REFERENCES store(id)
	)`,
	`CREATE TABLE IF NOT EXISTS integration_config (
		id SERIAL PRIMARY KEY,
		service_name VARCHAR(100) NOT NULL UNIQUE,
		is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		credentials_data TEXT NULL,
		sync_interval_minutes INTEGER NOT NULL DEFAULT 15,
		last_sync_at TIMESTAMP NULL,
		next_sync_at TIMESTAMP NULL,
		sync_status VARCHAR(50) NOT NULL DEFAULT 'inactive',
		error_message TEXT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sync_job (
		id SERIAL PRIMARY KEY,
		job_id VARCHAR(255) NOT NULL UNIQUE,
		service_name VARCHAR(100) NOT NULL,
		job_type VARCHAR(100) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		started_at TIMESTAMP NULL,
		completed_at TIMESTAMP NULL,
		total_items INTEGER NOT NULL DEFAULT 0,
		processed_items INTEGER NOT NULL DEFAULT 0,
		failed_items INTEGER NOT NULL DEFAULT 0,
		result_data JSONB NULL,
		error_message TEXT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS app_log (
		id SERIAL PRIMARY KEY,
		level INTEGER NOT NULL,
		message TEXT NOT NULL,
		caller VARCHAR(500) NULL,
		ip_address VARCHAR(45) NULL,
		app_id VARCHAR(100) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_product_name ON product (name)`,
	`CREATE INDEX IF NOT EXISTS idx_product_folder_ext ON product (folder_external_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_product_ext ON stock (product_external_id)`,
	`CREATE INDEX IF NOT EXISTS idx_counterparty_name ON counterparty (name)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_job_service ON sync_job (service_name, created_at)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
// Statements are idempotent so this is safe to run on every startup.
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
