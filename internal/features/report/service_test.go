package report

import (
	"bytes"
	"context"
	"testing"

	"crm-backend/internal/features/catalog"
	"crm-backend/internal/features/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeCatalog struct {
	products []catalog.Product
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int, error) {
	return f.products, len(f.products), nil
}
func (f *fakeCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) ListFolders(ctx context.Context) ([]catalog.ProductFolder, error) {
	return nil, nil
}
func (f *fakeCatalog) ListUnits(ctx context.Context) ([]catalog.UnitOfMeasure, error) {
	return nil, nil
}
func (f *fakeCatalog) ListServices(ctx context.Context, archived *bool) ([]catalog.Service, error) {
	return nil, nil
}

type fakeInventory struct {
	levels []inventory.StockLevel
}

func (f *fakeInventory) ListStores(ctx context.Context) ([]inventory.Store, error) {
	return nil, nil
}
func (f *fakeInventory) ListStock(ctx context.Context, filter inventory.StockFilter) ([]inventory.StockLevel, int, error) {
	return f.levels, len(f.levels), nil
}

func TestExportProducts(t *testing.T) {
	svc := NewReportService(&fakeCatalog{products: []catalog.Product{
		{Name: "Widget", Code: "W-1", SalePrice: 125.0, FolderName: "Tools"},
		{Name: "Gadget", Code: "G-1", SalePrice: 99.5},
	}}, &fakeInventory{})

	data, filename, err := svc.ExportProducts(context.Background(), catalog.ProductFilter{})
	require.NoError(t, err)

	assert.Contains(t, filename, "products_")
	assert.Contains(t, filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Widget", rows[1][0])
	assert.Equal(t, "Gadget", rows[2][0])
}

func TestExportStock(t *testing.T) {
	svc := NewReportService(&fakeCatalog{}, &fakeInventory{levels: []inventory.StockLevel{
		{ProductName: "Widget", StoreName: "Main", Stock: 42, Available: 40},
	}})

	data, filename, err := svc.ExportStock(context.Background(), inventory.StockFilter{})
	require.NoError(t, err)
	assert.Contains(t, filename, "stock_")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[1][0])
	assert.Equal(t, "Main", rows[1][1])
}
