package inventory

import "time"

// Store is a synchronized warehouse.
type Store struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Address    string `json:"address,omitempty"`
	Archived   bool   `json:"archived"`
}

// StockLevel is the current stock of one product, per store or aggregated
// when the remote report carried no store breakdown.
type StockLevel struct {
	ID          int64      `json:"id"`
	ProductID   *int64     `json:"product_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	StoreID     *int64     `json:"store_id,omitempty"`
	StoreName   string     `json:"store_name,omitempty"`
	Stock       float64    `json:"stock"`
	Reserve     float64    `json:"reserve"`
	InTransit   float64    `json:"in_transit"`
	Available   float64    `json:"available"`
	Price       float64    `json:"price"`
	SalePrice   float64    `json:"sale_price"`
	LastSynced  *time.Time `json:"last_synced_at,omitempty"`
}

// StockFilter narrows stock listings.
type StockFilter struct {
	ProductID *int64
	StoreID   *int64
	Limit     int
	Offset    int
}
