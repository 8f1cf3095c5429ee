package sync

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"crm-backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResolver(&database.PostgresDB{DB: db}, zap.NewNop()), mock
}

func TestResolveSingleLink(t *testing.T) {
	resolver, mock := newMockResolver(t)

	expected := regexp.QuoteMeta(
		`UPDATE product AS dep SET folder_id = ref.id, updated_at = NOW()
		FROM product_folder AS ref
		WHERE dep.folder_external_id = ref.external_id AND dep.folder_id IS NULL`)
	mock.ExpectExec(expected).WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := resolver.resolve(context.Background(), ReferenceLink{
		Table:         "product",
		FKColumn:      "folder_id",
		PendingColumn: "folder_external_id",
		RefTable:      "product_folder",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAllRunsEveryLink(t *testing.T) {
	resolver, mock := newMockResolver(t)

	for range referenceLinks {
		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	}

	resolved := resolver.ResolveAll(context.Background())

	assert.Len(t, resolved, len(referenceLinks))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAllContinuesPastFailures(t *testing.T) {
	resolver, mock := newMockResolver(t)

	// First link fails, all the others still run.
	mock.ExpectExec("UPDATE").WillReturnError(fmt.Errorf("deadlock detected"))
	for i := 1; i < len(referenceLinks); i++ {
		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 2))
	}

	resolved := resolver.ResolveAll(context.Background())

	assert.Len(t, resolved, len(referenceLinks)-1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAllSkipsZeroCounts(t *testing.T) {
	resolver, mock := newMockResolver(t)

	for range referenceLinks {
		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	resolved := resolver.ResolveAll(context.Background())
	assert.Empty(t, resolved)
}

func TestReferenceLinksCoverDocumentTables(t *testing.T) {
	// Every pending column the mappers emit must have a matching link.
	type key struct{ table, pending string }
	links := make(map[key]bool)
	for _, l := range referenceLinks {
		links[key{l.Table, l.PendingColumn}] = true
	}

	for _, want := range []key{
		{"product", "folder_external_id"},
		{"product", "unit_external_id"},
		{"product", "supplier_external_id"},
		{"service", "folder_external_id"},
		{"stock", "product_external_id"},
		{"stock", "store_external_id"},
		{"contract", "counterparty_external_id"},
		{"sales_document", "counterparty_external_id"},
		{"sales_document", "project_external_id"},
		{"purchase_document", "counterparty_external_id"},
		{"stock_movement", "source_store_external_id"},
		{"stock_movement", "target_store_external_id"},
	} {
		assert.True(t, links[want], "missing link for %s.%s", want.table, want.pending)
	}
}
