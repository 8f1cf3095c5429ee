package catalog

import (
	"context"
	"testing"
	"time"

	"crm-backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalogRepository(&database.PostgresDB{DB: db}), mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "external_id", "name", "code", "article", "barcode", "description",
		"sale_price", "buy_price", "weight", "volume", "archived",
		"folder_id", "folder_name", "unit_id", "unit_name", "supplier_id",
		"sync_status", "last_synced_at", "updated_at",
	})
}

func TestListProductsWithFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	folderID := int64(3)
	archived := false

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(folderID, archived, "%widget%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM product p").
		WithArgs(folderID, archived, "%widget%", 50, 0).
		WillReturnRows(productRows().AddRow(
			int64(1), "ext-1", "Widget", "W-1", "ART-1", "", "",
			125.0, 99.0, 1.5, 0.0, false,
			folderID, "Tools", nil, "", nil,
			"synced", now, now))

	products, total, err := repo.ListProducts(context.Background(), ProductFilter{
		FolderID: &folderID,
		Archived: &archived,
		Search:   "widget",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, "Tools", products[0].FolderName)
	require.NotNil(t, products[0].FolderID)
	assert.Equal(t, folderID, *products[0].FolderID)
	assert.Nil(t, products[0].UnitID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM product p").
		WithArgs(int64(99)).
		WillReturnRows(productRows())

	_, err := repo.GetProduct(context.Background(), 99)
	assert.Error(t, err)
}

func TestListFolders(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM product_folder").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "path_name", "parent_id", "archived"}).
			AddRow(int64(1), "f-1", "Parent", "", nil, false).
			AddRow(int64(2), "f-2", "Child", "Parent", int64(1), false))

	folders, err := repo.ListFolders(context.Background())
	require.NoError(t, err)

	require.Len(t, folders, 2)
	assert.Nil(t, folders[0].ParentID)
	require.NotNil(t, folders[1].ParentID)
	assert.Equal(t, int64(1), *folders[1].ParentID)
}
