package moysklad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want string
	}{
		{
			name: "entity href",
			meta: map[string]any{"href": "https://api.moysklad.ru/api/remap/1.2/entity/product/abc-123"},
			want: "abc-123",
		},
		{
			name: "trailing slash",
			meta: map[string]any{"href": "https://host/entity/store/def-456/"},
			want: "def-456",
		},
		{
			name: "missing href",
			meta: map[string]any{},
			want: "",
		},
		{
			name: "nil meta",
			meta: nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractID(tt.meta))
		})
	}
}

func TestMapProductScaling(t *testing.T) {
	row := map[string]any{
		"id":      "prod-1",
		"name":    "Widget",
		"code":    "W-001",
		"article": "ART-1",
		"weight":  float64(1500),   // grams
		"volume":  float64(2500000), // cubic millimeters
		"salePrices": []any{
			map[string]any{"value": float64(12500)}, // kopecks
		},
		"buyPrice": map[string]any{"value": float64(9900)},
		"minPrice": map[string]any{"value": float64(10000)},
		"productFolder": map[string]any{
			"meta": map[string]any{"href": "https://host/entity/productfolder/folder-1"},
		},
		"uom": map[string]any{"id": "uom-1"},
	}

	record, ok := MapProduct(row)
	require.True(t, ok)

	assert.Equal(t, "prod-1", record.ExternalID)
	assert.Equal(t, 125.00, record.Fields["sale_price"])
	assert.Equal(t, 99.00, record.Fields["buy_price"])
	assert.Equal(t, 100.00, record.Fields["min_price"])
	assert.Equal(t, 1.5, record.Fields["weight"])
	assert.Equal(t, 2.5, record.Fields["volume"])
	assert.Equal(t, "folder-1", record.Fields["folder_external_id"])
	assert.Equal(t, "uom-1", record.Fields["unit_external_id"])
	assert.Nil(t, record.Fields["supplier_external_id"])
	assert.Equal(t, "synced", record.Fields["sync_status"])
	assert.NotNil(t, record.Fields["last_synced_at"])
}

func TestMapProductDefaults(t *testing.T) {
	record, ok := MapProduct(map[string]any{"id": "prod-2", "name": "Bare"})
	require.True(t, ok)

	// Absent prices and dimensions stay null in their nullable columns.
	assert.Nil(t, record.Fields["sale_price"])
	assert.Nil(t, record.Fields["buy_price"])
	assert.Nil(t, record.Fields["min_price"])
	assert.Nil(t, record.Fields["weight"])
	assert.Nil(t, record.Fields["volume"])
	assert.Nil(t, record.Fields["folder_external_id"])
	assert.Nil(t, record.Fields["barcode"])
}

func TestMapServicePriceDefaults(t *testing.T) {
	record, ok := MapService(map[string]any{"id": "svc-1", "name": "Delivery"})
	require.True(t, ok)

	assert.Nil(t, record.Fields["sale_price"])
	assert.Nil(t, record.Fields["buy_price"])
	assert.Nil(t, record.Fields["min_price"])
}

func TestMapProductMissingID(t *testing.T) {
	_, ok := MapProduct(map[string]any{"name": "no id"})
	assert.False(t, ok)
}

func TestMapCounterparty(t *testing.T) {
	row := map[string]any{
		"id":          "cp-1",
		"name":        "ACME LLC",
		"companyType": "legal",
		"inn":         "7707083893",
		"email":       "info@acme.test",
		"archived":    true,
		"salesAmount": float64(1000000), // kopecks
	}

	record, ok := MapCounterparty(row)
	require.True(t, ok)

	assert.Equal(t, "cp-1", record.ExternalID)
	assert.Equal(t, "legal", record.Fields["company_type"])
	assert.Equal(t, 10000.00, record.Fields["sales_amount"])
	assert.Equal(t, true, record.Fields["archived"])
}

func TestMapStockCompositeKey(t *testing.T) {
	t.Run("with store", func(t *testing.T) {
		row := map[string]any{
			"meta":  map[string]any{"href": "https://host/entity/product/prod-1"},
			"store": map[string]any{"meta": map[string]any{"href": "https://host/entity/store/store-1"}},
			"stock": float64(42),
			"price": float64(5000),
		}
		record, ok := MapStock(row)
		require.True(t, ok)

		assert.Equal(t, "prod-1_store-1", record.ExternalID)
		assert.Equal(t, "prod-1", record.Fields["product_external_id"])
		assert.Equal(t, "store-1", record.Fields["store_external_id"])
		assert.Equal(t, 42.0, record.Fields["stock"])
		assert.Equal(t, 50.0, record.Fields["price"])
	})

	t.Run("without store", func(t *testing.T) {
		row := map[string]any{
			"meta":  map[string]any{"href": "https://host/entity/product/prod-2"},
			"stock": float64(7),
		}
		record, ok := MapStock(row)
		require.True(t, ok)

		assert.Equal(t, "prod-2_default", record.ExternalID)
		assert.Nil(t, record.Fields["store_external_id"])
		assert.Nil(t, record.Fields["price"])
		assert.Equal(t, 7.0, record.Fields["stock"])
	})

	t.Run("no product meta", func(t *testing.T) {
		_, ok := MapStock(map[string]any{"stock": float64(1)})
		assert.False(t, ok)
	})
}

func TestMapContract(t *testing.T) {
	row := map[string]any{
		"id":           "ctr-1",
		"name":         "Annual supply",
		"contractType": "Sales",
		"sum":          float64(500000),
		"moment":       "2024-01-15 12:00:00.000",
		"agent":        map[string]any{"id": "cp-1"},
		"ownAgent":     map[string]any{"meta": map[string]any{"href": "https://host/entity/organization/org-1"}},
		"project":      map[string]any{"id": "proj-1"},
	}

	record, ok := MapContract(row)
	require.True(t, ok)

	assert.Equal(t, 5000.00, record.Fields["sum_amount"])
	assert.Equal(t, "cp-1", record.Fields["counterparty_external_id"])
	assert.Equal(t, "org-1", record.Fields["organization_external_id"])
	assert.Equal(t, "proj-1", record.Fields["project_external_id"])

	moment, isTime := record.Fields["moment"].(time.Time)
	require.True(t, isTime)
	assert.Equal(t, 2024, moment.Year())
	assert.Equal(t, time.January, moment.Month())
}

func TestMapSalesDocument(t *testing.T) {
	row := map[string]any{
		"id":         "doc-1",
		"name":       "00042",
		"moment":     "2024-06-01 09:30:00.000",
		"sum":        float64(123456),
		"payedSum":   float64(100000),
		"shippedSum": float64(123456),
		"applicable": true,
		"state":      map[string]any{"name": "Shipped"},
		"agent":      map[string]any{"id": "cp-1"},
		"store":      map[string]any{"id": "store-1"},
		"project":    map[string]any{"id": "proj-1"},
	}

	record, ok := MapSalesDocument(row, "customer_order")
	require.True(t, ok)

	assert.Equal(t, "customer_order", record.Fields["document_type"])
	assert.Equal(t, "00042", record.Fields["number"])
	assert.Equal(t, 1234.56, record.Fields["sum_total"])
	assert.Equal(t, 1000.00, record.Fields["payed_sum"])
	assert.Equal(t, 1234.56, record.Fields["shipped_sum"])
	assert.Equal(t, "Shipped", record.Fields["state"])
	assert.Equal(t, "cp-1", record.Fields["counterparty_external_id"])
	assert.Equal(t, "store-1", record.Fields["store_external_id"])
	assert.Equal(t, "proj-1", record.Fields["project_external_id"])
}

func TestMapStockMovement(t *testing.T) {
	t.Run("enter uses single store", func(t *testing.T) {
		record, ok := MapStockMovement(map[string]any{
			"id":    "mv-1",
			"name":  "E-1",
			"store": map[string]any{"id": "store-1"},
			"sum":   float64(10000),
		}, "enter")
		require.True(t, ok)

		assert.Equal(t, "enter", record.Fields["document_type"])
		assert.Equal(t, "store-1", record.Fields["store_external_id"])
		assert.Equal(t, 100.00, record.Fields["sum_total"])
	})

	t.Run("move uses source and target", func(t *testing.T) {
		record, ok := MapStockMovement(map[string]any{
			"id":          "mv-2",
			"name":        "M-1",
			"sourceStore": map[string]any{"id": "store-1"},
			"targetStore": map[string]any{"id": "store-2"},
		}, "move")
		require.True(t, ok)

		assert.Equal(t, "store-1", record.Fields["source_store_external_id"])
		assert.Equal(t, "store-2", record.Fields["target_store_external_id"])
		assert.NotContains(t, record.Fields, "store_external_id")
	})
}

func TestMapProductFolderParent(t *testing.T) {
	row := map[string]any{
		"id":       "f-2",
		"name":     "Child",
		"pathName": "Parent",
		"productFolder": map[string]any{
			"meta": map[string]any{"href": "https://host/entity/productfolder/f-1"},
		},
	}

	record, ok := MapProductFolder(row)
	require.True(t, ok)
	assert.Equal(t, "f-1", record.Fields["parent_external_id"])

	root, ok := MapProductFolder(map[string]any{"id": "f-1", "name": "Parent"})
	require.True(t, ok)
	assert.Nil(t, root.Fields["parent_external_id"])
}

func TestParseMoment(t *testing.T) {
	assert.Nil(t, parseMoment(""))
	assert.Nil(t, parseMoment("not a date"))

	withMillis := parseMoment("2024-03-15 10:30:45.123")
	require.NotNil(t, withMillis)

	noMillis := parseMoment("2024-03-15 10:30:45")
	require.NotNil(t, noMillis)
}

func TestMapCurrency(t *testing.T) {
	record, ok := MapCurrency(map[string]any{
		"id":       "cur-1",
		"name":     "RUB",
		"fullName": "Russian Ruble",
		"isoCode":  "RUB",
		"rate":     float64(1),
		"default":  true,
	})
	require.True(t, ok)

	assert.Equal(t, 1.0, record.Fields["rate"])
	assert.Equal(t, true, record.Fields["is_default"])
	assert.Equal(t, false, record.Fields["is_indirect"])
}
