package catalog

import "time"

// Product is one synchronized product row. FolderID and the other resolved
// references stay nil until the resolver pass has linked them.
type Product struct {
	ID          int64      `json:"id"`
	ExternalID  string     `json:"external_id"`
	Name        string     `json:"name"`
	Code        string     `json:"code,omitempty"`
	Article     string     `json:"article,omitempty"`
	Barcode     string     `json:"barcode,omitempty"`
	Description string     `json:"description,omitempty"`
	SalePrice   float64    `json:"sale_price"`
	BuyPrice    float64    `json:"buy_price"`
	Weight      float64    `json:"weight"`
	Volume      float64    `json:"volume"`
	Archived    bool       `json:"archived"`
	FolderID    *int64     `json:"folder_id,omitempty"`
	FolderName  string     `json:"folder_name,omitempty"`
	UnitID      *int64     `json:"unit_id,omitempty"`
	UnitName    string     `json:"unit_name,omitempty"`
	SupplierID  *int64     `json:"supplier_id,omitempty"`
	SyncStatus  string     `json:"sync_status"`
	LastSynced  *time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProductFolder is a product group, possibly nested.
type ProductFolder struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	PathName   string `json:"path_name,omitempty"`
	ParentID   *int64 `json:"parent_id,omitempty"`
	Archived   bool   `json:"archived"`
}

// UnitOfMeasure is a measurement unit.
type UnitOfMeasure struct {
	ID          int64  `json:"id"`
	ExternalID  string `json:"external_id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Service is a non-stocked catalog item.
type Service struct {
	ID          int64   `json:"id"`
	ExternalID  string  `json:"external_id"`
	Name        string  `json:"name"`
	Code        string  `json:"code,omitempty"`
	Description string  `json:"description,omitempty"`
	SalePrice   float64 `json:"sale_price"`
	BuyPrice    float64 `json:"buy_price"`
	Archived    bool    `json:"archived"`
	FolderID    *int64  `json:"folder_id,omitempty"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	FolderID *int64
	Archived *bool
	Search   string
	Limit    int
	Offset   int
}
