package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null"

	"github.com/real-comp/mvr-common/internal/db"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/metrics"
	"github.com/real-comp/mvr-common/internal/utils"
)

const documentsTable = "mvr_documents"

// DocumentRow is a Document as stored in mvr_documents. The full document is kept as JSON next to the columns
// used for lookups.
type DocumentRow struct {
	GUID                  string      `db:"guid"`
	ID                    string      `db:"id"`
	Source                string      `db:"source"`
	State                 null.String `db:"state"`
	DocumentType          null.String `db:"document_type"`
	TransactionStatus     null.String `db:"transaction_status"`
	BuildDate             null.String `db:"build_date"`
	HistoryCount          int         `db:"history_count"`
	LatestTransactionDate null.String `db:"latest_transaction_date"`
	Document              string      `db:"document"`
	UpdatedAt             time.Time   `db:"updated_at"`
}

func nullableString(s string) null.String {
	return null.NewString(s, s != "")
}

func NewDocumentRow(doc *entities.Document) (DocumentRow, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return DocumentRow{}, fmt.Errorf("encoding document %s: %w", doc.GUID(), err)
	}

	row := DocumentRow{
		GUID:              doc.GUID(),
		ID:                doc.ID(),
		Source:            doc.Source(),
		State:             nullableString(doc.State),
		DocumentType:      nullableString(string(doc.Type)),
		TransactionStatus: nullableString(string(doc.TransactionStatus)),
		BuildDate:         nullableString(doc.Attributes[entities.BuildDateAttribute]),
		HistoryCount:      len(doc.History()),
		Document:          utils.SanitizeUTF8(string(encoded)),
	}
	if latest := doc.Latest(); latest != nil {
		row.LatestTransactionDate = nullableString(latest.TransactionDate)
	}
	return row, nil
}

// Decode parses the stored JSON back into a Document.
func (r DocumentRow) Decode() (*entities.Document, error) {
	var doc entities.Document
	if err := json.Unmarshal([]byte(r.Document), &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", r.GUID, err)
	}
	return &doc, nil
}

type DocumentModel struct {
	DB             db.ConnectionPool
	MetricsService metrics.MetricsService
}

// BatchUpsert inserts docs or replaces the stored documents with the same GUID.
func (m *DocumentModel) BatchUpsert(ctx context.Context, sqlExec db.SQLExecuter, docs []*entities.Document) (int, error) {
	const query = `
		INSERT INTO mvr_documents (
			guid, id, source, state, document_type, transaction_status, build_date,
			history_count, latest_transaction_date, document, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (guid) DO UPDATE SET
			id = excluded.id,
			source = excluded.source,
			state = excluded.state,
			document_type = excluded.document_type,
			transaction_status = excluded.transaction_status,
			build_date = excluded.build_date,
			history_count = excluded.history_count,
			latest_transaction_date = excluded.latest_transaction_date,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`

	start := time.Now()
	upserted := 0
	for _, doc := range docs {
		row, err := NewDocumentRow(doc)
		if err != nil {
			return upserted, err
		}
		_, err = sqlExec.ExecContext(ctx, sqlExec.Rebind(query),
			row.GUID, row.ID, row.Source, row.State, row.DocumentType, row.TransactionStatus, row.BuildDate,
			row.HistoryCount, row.LatestTransactionDate, row.Document)
		if err != nil {
			m.MetricsService.IncDBQueryError("BatchUpsert", documentsTable, utils.GetDBErrorType(err))
			return upserted, fmt.Errorf("upserting document %s: %w", row.GUID, err)
		}
		upserted++
	}
	m.MetricsService.ObserveDBQueryDuration("BatchUpsert", documentsTable, time.Since(start).Seconds())
	m.MetricsService.ObserveDBBatchSize("BatchUpsert", documentsTable, len(docs))
	m.MetricsService.IncDBQuery("BatchUpsert", documentsTable)
	return upserted, nil
}

// WriteDocuments upserts docs in a single database transaction, retrying the whole transaction on transient errors.
func (m *DocumentModel) WriteDocuments(ctx context.Context, docs []*entities.Document) error {
	err := utils.RetryDBOperation(ctx, func() error {
		start := time.Now()
		err := db.RunInTransaction(ctx, m.DB, nil, func(dbTx db.Transaction) error {
			_, err := m.BatchUpsert(ctx, dbTx, docs)
			return err
		})
		status := "commit"
		if err != nil {
			status = "rollback"
		}
		m.MetricsService.IncDBTransaction(status)
		m.MetricsService.ObserveDBTransactionDuration(status, time.Since(start).Seconds())
		return err
	})
	if err != nil {
		return fmt.Errorf("writing %d documents: %w", len(docs), err)
	}
	return nil
}

// Get returns the stored row for guid.
func (m *DocumentModel) Get(ctx context.Context, guid string) (*DocumentRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM mvr_documents WHERE guid = ?`, selectColumns(DocumentRow{}))
	start := time.Now()
	row, err := db.QueryOne[DocumentRow](ctx, m.DB, query, guid)
	m.MetricsService.ObserveDBQueryDuration("Get", documentsTable, time.Since(start).Seconds())
	if err != nil {
		m.MetricsService.IncDBQueryError("Get", documentsTable, utils.GetDBErrorType(err))
		return nil, fmt.Errorf("getting document %s: %w", guid, err)
	}
	m.MetricsService.IncDBQuery("Get", documentsTable)
	return row, nil
}

// BatchGetByIDs returns the rows of every source sharing one of the document ids, ordered by GUID.
func (m *DocumentModel) BatchGetByIDs(ctx context.Context, ids []string) ([]DocumentRow, error) {
	if len(ids) == 0 {
		return []DocumentRow{}, nil
	}
	namedQuery := fmt.Sprintf(`SELECT %s FROM mvr_documents WHERE id IN (:ids) ORDER BY guid`, selectColumns(DocumentRow{}))
	query, args, err := PrepareNamedQuery(ctx, m.DB, namedQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("preparing query: %w", err)
	}

	var rows []DocumentRow
	start := time.Now()
	err = m.DB.SelectContext(ctx, &rows, query, args...)
	m.MetricsService.ObserveDBQueryDuration("BatchGetByIDs", documentsTable, time.Since(start).Seconds())
	m.MetricsService.ObserveDBBatchSize("BatchGetByIDs", documentsTable, len(ids))
	if err != nil {
		m.MetricsService.IncDBQueryError("BatchGetByIDs", documentsTable, utils.GetDBErrorType(err))
		return nil, fmt.Errorf("getting documents by ids: %w", err)
	}
	m.MetricsService.IncDBQuery("BatchGetByIDs", documentsTable)
	return rows, nil
}

func (m *DocumentModel) Count(ctx context.Context) (int, error) {
	var count int
	start := time.Now()
	err := m.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM mvr_documents`)
	m.MetricsService.ObserveDBQueryDuration("Count", documentsTable, time.Since(start).Seconds())
	if err != nil {
		m.MetricsService.IncDBQueryError("Count", documentsTable, utils.GetDBErrorType(err))
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	m.MetricsService.IncDBQuery("Count", documentsTable)
	return count, nil
}
