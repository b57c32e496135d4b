package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/db"
	"github.com/real-comp/mvr-common/internal/db/dbtest"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/metrics"
)

func openTestPool(t *testing.T) db.ConnectionPool {
	t.Helper()
	dbt := dbtest.Open(t)
	t.Cleanup(dbt.Close)

	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConnectionPool.Close() })
	return dbConnectionPool
}

func newTestDocument(source, id string, plates ...string) *entities.Document {
	doc := entities.NewDocument(source, id)
	doc.State = source
	doc.Type = entities.DocumentTypeTitle
	doc.TransactionStatus = entities.TransactionStatusApproved
	for i, plate := range plates {
		doc.AddHistory(&entities.Transaction{
			ID:              id,
			Source:          source,
			TransactionDate: []string{"20200101", "20200201", "20200301"}[i%3],
			Plate:           plate,
		})
	}
	doc.SetAttribute(entities.BuildDateAttribute, "20261017")
	return doc
}

func TestNewModels(t *testing.T) {
	_, err := NewModels(nil, metrics.NewMetricsService(nil))
	assert.EqualError(t, err, "ConnectionPool must be initialized")

	dbConnectionPool := openTestPool(t)
	_, err = NewModels(dbConnectionPool, nil)
	assert.EqualError(t, err, "MetricsService must be initialized")

	models, err := NewModels(dbConnectionPool, metrics.NewMetricsService(nil))
	require.NoError(t, err)
	assert.NotNil(t, models.Documents)
	assert.NotNil(t, models.BuildRuns)
}

func TestNewDocumentRow(t *testing.T) {
	doc := newTestDocument("TX", "VIN1", "p1", "p2")
	doc.State = ""

	row, err := NewDocumentRow(doc)
	require.NoError(t, err)
	assert.Equal(t, "MVR-TX-VIN1", row.GUID)
	assert.Equal(t, "VIN1", row.ID)
	assert.False(t, row.State.Valid)
	assert.Equal(t, "TITLE", row.DocumentType.String)
	assert.Equal(t, "20261017", row.BuildDate.String)
	assert.Equal(t, 2, row.HistoryCount)
	assert.Equal(t, "20200201", row.LatestTransactionDate.String)

	decoded, err := row.Decode()
	require.NoError(t, err)
	assert.Equal(t, doc.GUID(), decoded.GUID())
	assert.Equal(t, []string{"p1", "p2"}, []string{decoded.History()[0].Plate, decoded.History()[1].Plate})
}

func TestDocumentModel_WriteDocuments(t *testing.T) {
	ctx := context.Background()
	dbConnectionPool := openTestPool(t)
	m := &DocumentModel{DB: dbConnectionPool, MetricsService: metrics.NewMetricsService(nil)}

	t.Run("🟢inserts_then_replaces", func(t *testing.T) {
		err := m.WriteDocuments(ctx, []*entities.Document{
			newTestDocument("TX", "VIN1", "p1"),
			newTestDocument("OK", "VIN1", "p1"),
			newTestDocument("TX", "VIN2", "p1"),
		})
		require.NoError(t, err)

		count, err := m.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		err = m.WriteDocuments(ctx, []*entities.Document{newTestDocument("TX", "VIN1", "p1", "p2", "p3")})
		require.NoError(t, err)

		count, err = m.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		row, err := m.Get(ctx, "MVR-TX-VIN1")
		require.NoError(t, err)
		assert.Equal(t, 3, row.HistoryCount)
		assert.Equal(t, "20200301", row.LatestTransactionDate.String)
		assert.False(t, row.UpdatedAt.IsZero())
	})

	t.Run("🟢batch_get_by_ids", func(t *testing.T) {
		rows, err := m.BatchGetByIDs(ctx, []string{"VIN1", "MISSING"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "MVR-OK-VIN1", rows[0].GUID)
		assert.Equal(t, "MVR-TX-VIN1", rows[1].GUID)

		rows, err = m.BatchGetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("🔴get_missing", func(t *testing.T) {
		_, err := m.Get(ctx, "MVR-TX-MISSING")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDocumentModel_BatchUpsert_Metrics(t *testing.T) {
	ctx := context.Background()
	dbConnectionPool := openTestPool(t)

	mockMetricsService := metrics.NewMockMetricsService()
	mockMetricsService.On("ObserveDBQueryDuration", "BatchUpsert", "mvr_documents", mock.Anything).Return().Once()
	mockMetricsService.On("ObserveDBBatchSize", "BatchUpsert", "mvr_documents", 2).Return().Once()
	mockMetricsService.On("IncDBQuery", "BatchUpsert", "mvr_documents").Return().Once()
	defer mockMetricsService.AssertExpectations(t)

	m := &DocumentModel{DB: dbConnectionPool, MetricsService: mockMetricsService}
	upserted, err := m.BatchUpsert(ctx, dbConnectionPool, []*entities.Document{
		newTestDocument("TX", "VIN1", "p1"),
		newTestDocument("TX", "VIN2", "p1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, upserted)
}

func TestDocumentModel_WriteDocuments_Rollback(t *testing.T) {
	ctx := context.Background()
	dbConnectionPool := openTestPool(t)
	m := &DocumentModel{DB: dbConnectionPool, MetricsService: metrics.NewMetricsService(nil)}

	_, err := dbConnectionPool.ExecContext(ctx, `DROP TABLE mvr_documents`)
	require.NoError(t, err)

	err = m.WriteDocuments(ctx, []*entities.Document{newTestDocument("TX", "VIN1", "p1")})
	assert.ErrorContains(t, err, "writing 1 documents")
	assert.ErrorContains(t, err, "upserting document MVR-TX-VIN1")
}
