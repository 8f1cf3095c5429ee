package partner

import "time"

// Counterparty is a customer or supplier mirrored from the ERP.
type Counterparty struct {
	ID            int64      `json:"id"`
	ExternalID    string     `json:"external_id"`
	Name          string     `json:"name"`
	LegalTitle    string     `json:"legal_title,omitempty"`
	CompanyType   string     `json:"company_type,omitempty"`
	INN           string     `json:"inn,omitempty"`
	KPP           string     `json:"kpp,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	ActualAddress string     `json:"actual_address,omitempty"`
	LegalAddress  string     `json:"legal_address,omitempty"`
	SalesAmount   float64    `json:"sales_amount"`
	Archived      bool       `json:"archived"`
	LastSynced    *time.Time `json:"last_synced_at,omitempty"`
}

// Organization is an own legal entity.
type Organization struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	LegalTitle string `json:"legal_title,omitempty"`
	INN        string `json:"inn,omitempty"`
	KPP        string `json:"kpp,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Archived   bool   `json:"archived"`
}

// Employee is a staff member.
type Employee struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	FullName   string `json:"full_name"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Position   string `json:"position,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Archived   bool   `json:"archived"`
}

// Project groups documents and contracts.
type Project struct {
	ID          int64  `json:"id"`
	ExternalID  string `json:"external_id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
}

// Contract links a counterparty to an own organization.
type Contract struct {
	ID               int64      `json:"id"`
	ExternalID       string     `json:"external_id"`
	Name             string     `json:"name"`
	Code             string     `json:"code,omitempty"`
	ContractType     string     `json:"contract_type"`
	SumAmount        float64    `json:"sum_amount"`
	Moment           *time.Time `json:"moment,omitempty"`
	Archived         bool       `json:"archived"`
	CounterpartyID   *int64     `json:"counterparty_id,omitempty"`
	CounterpartyName string     `json:"counterparty_name,omitempty"`
	OrganizationID   *int64     `json:"organization_id,omitempty"`
	ProjectID        *int64     `json:"project_id,omitempty"`
}

// CounterpartyFilter narrows counterparty listings.
type CounterpartyFilter struct {
	Search   string
	Archived *bool
	Limit    int
	Offset   int
}
