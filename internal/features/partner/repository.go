package partner

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm-backend/internal/database"
)

type PartnerRepository interface {
	ListCounterparties(ctx context.Context, filter CounterpartyFilter) ([]Counterparty, int, error)
	GetCounterparty(ctx context.Context, id int64) (*Counterparty, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListContracts(ctx context.Context, counterpartyID *int64) ([]Contract, error)
}

type PartnerRepositoryImpl struct {
	db *sql.DB
}

func NewPartnerRepository(db *database.PostgresDB) PartnerRepository {
	return &PartnerRepositoryImpl{db: db.DB}
}

const counterpartyColumns = `id, external_id, name, COALESCE(legal_title, ''),
	COALESCE(company_type, ''), COALESCE(inn, ''), COALESCE(kpp, ''), COALESCE(email, ''),
	COALESCE(phone, ''), COALESCE(actual_address, ''), COALESCE(legal_address, ''),
	sales_amount, archived, last_synced_at`

func (r *PartnerRepositoryImpl) ListCounterparties(ctx context.Context, filter CounterpartyFilter) ([]Counterparty, int, error) {
	conditions := []string{"is_deleted = FALSE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR legal_title ILIKE $%d OR inn ILIKE $%d)", n, n, n))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		conditions = append(conditions, fmt.Sprintf("archived = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM counterparty"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := "SELECT " + counterpartyColumns + " FROM counterparty" + where +
		fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parties []Counterparty
	for rows.Next() {
		party, err := scanCounterparty(rows)
		if err != nil {
			return nil, 0, err
		}
		parties = append(parties, *party)
	}
	return parties, total, rows.Err()
}

func (r *PartnerRepositoryImpl) GetCounterparty(ctx context.Context, id int64) (*Counterparty, error) {
	query := "SELECT " + counterpartyColumns + " FROM counterparty WHERE id = $1"
	return scanCounterparty(r.db.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCounterparty(row rowScanner) (*Counterparty, error) {
	var cp Counterparty
	var lastSynced sql.NullTime
	err := row.Scan(&cp.ID, &cp.ExternalID, &cp.Name, &cp.LegalTitle, &cp.CompanyType,
		&cp.INN, &cp.KPP, &cp.Email, &cp.Phone, &cp.ActualAddress, &cp.LegalAddress,
		&cp.SalesAmount, &cp.Archived, &lastSynced)
	if err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		cp.LastSynced = &lastSynced.Time
	}
	return &cp, nil
}

func (r *PartnerRepositoryImpl) ListOrganizations(ctx context.Context) ([]Organization, error) {
	query := `SELECT id, external_id, name, COALESCE(legal_title, ''), COALESCE(inn, ''),
			COALESCE(kpp, ''), COALESCE(email, ''), COALESCE(phone, ''), archived
		FROM organization WHERE is_deleted = FALSE ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.ExternalID, &o.Name, &o.LegalTitle, &o.INN,
			&o.KPP, &o.Email, &o.Phone, &o.Archived); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *PartnerRepositoryImpl) ListEmployees(ctx context.Context) ([]Employee, error) {
	query := `SELECT id, external_id, full_name, COALESCE(first_name, ''), last_name,
			COALESCE(position, ''), COALESCE(email, ''), COALESCE(phone, ''), archived
		FROM employee WHERE is_deleted = FALSE ORDER BY full_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.ExternalID, &e.FullName, &e.FirstName, &e.LastName,
			&e.Position, &e.Email, &e.Phone, &e.Archived); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *PartnerRepositoryImpl) ListProjects(ctx context.Context) ([]Project, error) {
	query := `SELECT id, external_id, name, COALESCE(code, ''), COALESCE(description, ''), archived
		FROM project WHERE is_deleted = FALSE ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Code, &p.Description, &p.Archived); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *PartnerRepositoryImpl) ListContracts(ctx context.Context, counterpartyID *int64) ([]Contract, error) {
	query := `SELECT c.id, c.external_id, c.name, COALESCE(c.code, ''), c.contract_type,
			c.sum_amount, c.moment, c.archived,
			c.counterparty_id, COALESCE(cp.name, ''), c.organization_id, c.project_id
		FROM contract c
		LEFT JOIN counterparty cp ON cp.id = c.counterparty_id
		WHERE c.is_deleted = FALSE`
	args := []any{}
	if counterpartyID != nil {
		query += " AND c.counterparty_id = $1"
		args = append(args, *counterpartyID)
	}
	query += " ORDER BY c.moment DESC NULLS LAST"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		var moment sql.NullTime
		var cpID, orgID, projID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name, &c.Code, &c.ContractType,
			&c.SumAmount, &moment, &c.Archived,
			&cpID, &c.CounterpartyName, &orgID, &projID); err != nil {
			return nil, err
		}
		if moment.Valid {
			c.Moment = &moment.Time
		}
		if cpID.Valid {
			c.CounterpartyID = &cpID.Int64
		}
		if orgID.Valid {
			c.OrganizationID = &orgID.Int64
		}
		if projID.Valid {
			c.ProjectID = &projID.Int64
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}
