package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crm-backend/internal/features/catalog"
	"crm-backend/internal/features/inventory"

	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	ExportProducts(ctx context.Context, filter catalog.ProductFilter) ([]byte, string, error)
	ExportStock(ctx context.Context, filter inventory.StockFilter) ([]byte, string, error)
}

type ReportServiceImpl struct {
	CatalogService   catalog.CatalogService
	InventoryService inventory.InventoryService
}

func NewReportService(catalogService catalog.CatalogService, inventoryService inventory.InventoryService) ReportService {
	return &ReportServiceImpl{
		CatalogService:   catalogService,
		InventoryService: inventoryService,
	}
}

// exportLimit caps export size; larger catalogs are exported page by page
// through repeated calls with an offset.
const exportLimit = 10000

func (s *ReportServiceImpl) ExportProducts(ctx context.Context, filter catalog.ProductFilter) ([]byte, string, error) {
	filter.Limit = exportLimit
	products, _, err := s.CatalogService.ListProducts(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	columns := []string{"Name", "Code", "Article", "Folder", "Unit", "Sale Price", "Buy Price", "Weight", "Archived", "Last Synced"}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.Name, p.Code, p.Article, p.FolderName, p.UnitName,
			p.SalePrice, p.BuyPrice, p.Weight, p.Archived, p.LastSynced,
		})
	}

	data, err := buildWorkbook("Products", columns, rows)
	if err != nil {
		return nil, "", err
	}
	return data, exportFilename("products"), nil
}

func (s *ReportServiceImpl) ExportStock(ctx context.Context, filter inventory.StockFilter) ([]byte, string, error) {
	filter.Limit = exportLimit
	levels, _, err := s.InventoryService.ListStock(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	columns := []string{"Product", "Store", "Stock", "Reserve", "In Transit", "Available", "Price", "Sale Price"}
	rows := make([][]any, 0, len(levels))
	for _, lvl := range levels {
		rows = append(rows, []any{
			lvl.ProductName, lvl.StoreName, lvl.Stock, lvl.Reserve,
			lvl.InTransit, lvl.Available, lvl.Price, lvl.SalePrice,
		})
	}

	data, err := buildWorkbook("Stock", columns, rows)
	if err != nil {
		return nil, "", err
	}
	return data, exportFilename("stock"), nil
}

func buildWorkbook(sheetName string, columns []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := val.(type) {
			case *time.Time:
				if v != nil {
					f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
				}
			case time.Time:
				f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
			default:
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func exportFilename(prefix string) string {
	name := fmt.Sprintf("%s_%s", prefix, time.Now().Format("20060102_150405"))
	if !strings.HasSuffix(name, ".xlsx") {
		name += ".xlsx"
	}
	return name
}
