package metrics

import (
	"github.com/alitto/pond/v2"
	"github.com/dlmiddlecote/sqlstats"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService interface {
	RegisterPoolMetrics(channel string, pool pond.Pool)
	GetRegistry() *prometheus.Registry
	// Record I/O Metrics
	IncRecordsRead(stage string, count int)
	IncRecordsWritten(stage string, count int)
	ObserveStageDuration(stage string, duration float64)
	IncErrors(stage, errorType string)
	// Consolidation Metrics
	IncDocumentsConsolidated()
	IncTransactionsConsolidated(count int)
	IncGroupsSkippedDeleted(transactions int)
	ObserveConsolidationDuration(duration float64)
	ObserveGroupSize(size int)
	// Address Metrics
	IncRawAddresses(outcome string, count int)
	IncCorrelatedRecords(kind string, count int)
	// DB Metrics
	ObserveDBQueryDuration(queryType, table string, duration float64)
	IncDBQuery(queryType, table string)
	IncDBQueryError(queryType, table, errorType string)
	IncDBTransaction(status string)
	ObserveDBTransactionDuration(status string, duration float64)
	ObserveDBBatchSize(operation, table string, size int)
}

// metricsService handles all metrics of a build run
type metricsService struct {
	registry *prometheus.Registry
	db       *sqlx.DB

	// Record I/O Metrics
	recordsReadTotal    *prometheus.CounterVec
	recordsWrittenTotal *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec

	// Consolidation Metrics
	documentsConsolidated    prometheus.Counter
	transactionsConsolidated prometheus.Counter
	groupsSkippedDeleted     prometheus.Counter
	transactionsSkipped      prometheus.Counter
	consolidationDuration    prometheus.Histogram
	groupSize                prometheus.Histogram

	// Address Metrics
	rawAddressesTotal      *prometheus.CounterVec
	correlatedRecordsTotal *prometheus.CounterVec

	// DB Query Metrics
	dbQueryDuration *prometheus.SummaryVec
	dbQueriesTotal  *prometheus.CounterVec
	dbQueryErrors   *prometheus.CounterVec
	dbTransactions  *prometheus.CounterVec
	dbTxnDuration   *prometheus.SummaryVec
	dbBatchSize     *prometheus.HistogramVec
}

// NewMetricsService creates a new metrics service with all metrics registered. The database pool collector is only
// registered when db is not nil.
func NewMetricsService(db *sqlx.DB) MetricsService {
	m := &metricsService{
		registry: prometheus.NewRegistry(),
		db:       db,
	}

	// Record I/O Metrics
	m.recordsReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvr_records_read_total",
			Help: "Total number of records read, by stage",
		},
		[]string{"stage"},
	)
	m.recordsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvr_records_written_total",
			Help: "Total number of records written, by stage",
		},
		[]string{"stage"},
	)
	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mvr_stage_duration_seconds",
			Help:    "Duration of a complete stage run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600, 7200},
		},
		[]string{"stage"},
	)
	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvr_errors_total",
			Help: "Total number of fatal errors, by stage and error type",
		},
		[]string{"stage", "error_type"},
	)

	// Consolidation Metrics
	m.documentsConsolidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvr_documents_consolidated_total",
			Help: "Total number of documents built",
		},
	)
	m.transactionsConsolidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvr_transactions_consolidated_total",
			Help: "Total number of transactions grouped into documents, deleted ones included",
		},
	)
	m.groupsSkippedDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvr_groups_skipped_deleted_total",
			Help: "Total number of document ids with no history left after delete truncation",
		},
	)
	m.transactionsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvr_transactions_skipped_deleted_total",
			Help: "Total number of transactions in document ids skipped due to delete",
		},
	)
	m.consolidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mvr_consolidation_duration_seconds",
			Help:    "Duration of consolidating one batch of document ids",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
	m.groupSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mvr_group_size",
			Help:    "Number of transactions per document id",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Address Metrics
	m.rawAddressesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvr_raw_addresses_total",
			Help: "Total number of raw addresses extracted for standardization, by outcome",
		},
		[]string{"outcome"},
	)
	m.correlatedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvr_correlated_records_total",
			Help: "Total number of records seen while merging standardized addresses, by kind",
		},
		[]string{"kind"},
	)

	// DB Query Metrics
	m.dbQueryDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "db_query_duration_seconds",
			Help:       "Duration of database queries",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"query_type", "table"},
	)
	m.dbQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)
	m.dbQueryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"query_type", "table", "error_type"},
	)
	m.dbTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_transactions_total",
			Help: "Total number of database transactions",
		},
		[]string{"status"},
	)
	m.dbTxnDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "db_transaction_duration_seconds",
			Help:       "Duration of database transactions",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	m.dbBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_batch_size",
			Help:    "Size of batch database operations",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"operation", "table"},
	)

	m.registerMetrics()
	return m
}

func (m *metricsService) registerMetrics() {
	if m.db != nil {
		m.registry.MustRegister(sqlstats.NewStatsCollector("mvr-db", m.db))
	}
	m.registry.MustRegister(
		m.recordsReadTotal,
		m.recordsWrittenTotal,
		m.stageDuration,
		m.errorsTotal,
		m.documentsConsolidated,
		m.transactionsConsolidated,
		m.groupsSkippedDeleted,
		m.transactionsSkipped,
		m.consolidationDuration,
		m.groupSize,
		m.rawAddressesTotal,
		m.correlatedRecordsTotal,
		m.dbQueryDuration,
		m.dbQueriesTotal,
		m.dbQueryErrors,
		m.dbTransactions,
		m.dbTxnDuration,
		m.dbBatchSize,
	)
}

// RegisterPoolMetrics registers a worker pool for metrics collection
func (m *metricsService) RegisterPoolMetrics(channel string, pool pond.Pool) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "pool_workers_running",
			Help:        "Number of running worker goroutines",
			ConstLabels: prometheus.Labels{"channel": channel},
		},
		func() float64 {
			return float64(pool.RunningWorkers())
		},
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "pool_tasks_submitted_total",
			Help:        "Number of tasks submitted",
			ConstLabels: prometheus.Labels{"channel": channel},
		},
		func() float64 {
			return float64(pool.SubmittedTasks())
		},
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "pool_tasks_waiting",
			Help:        "Number of tasks currently waiting in the queue",
			ConstLabels: prometheus.Labels{"channel": channel},
		},
		func() float64 {
			return float64(pool.WaitingTasks())
		},
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "pool_tasks_successful_total",
			Help:        "Number of tasks that completed successfully",
			ConstLabels: prometheus.Labels{"channel": channel},
		},
		func() float64 {
			return float64(pool.SuccessfulTasks())
		},
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "pool_tasks_failed_total",
			Help:        "Number of tasks that completed with panic",
			ConstLabels: prometheus.Labels{"channel": channel},
		},
		func() float64 {
			return float64(pool.FailedTasks())
		},
	))
}

// GetRegistry returns the prometheus registry
func (m *metricsService) GetRegistry() *prometheus.Registry {
	return m.registry
}

// Record I/O Metrics

func (m *metricsService) IncRecordsRead(stage string, count int) {
	m.recordsReadTotal.WithLabelValues(stage).Add(float64(count))
}

func (m *metricsService) IncRecordsWritten(stage string, count int) {
	m.recordsWrittenTotal.WithLabelValues(stage).Add(float64(count))
}

func (m *metricsService) ObserveStageDuration(stage string, duration float64) {
	m.stageDuration.WithLabelValues(stage).Observe(duration)
}

func (m *metricsService) IncErrors(stage, errorType string) {
	m.errorsTotal.WithLabelValues(stage, errorType).Inc()
}

// Consolidation Metrics

func (m *metricsService) IncDocumentsConsolidated() {
	m.documentsConsolidated.Inc()
}

func (m *metricsService) IncTransactionsConsolidated(count int) {
	m.transactionsConsolidated.Add(float64(count))
}

func (m *metricsService) IncGroupsSkippedDeleted(transactions int) {
	m.groupsSkippedDeleted.Inc()
	m.transactionsSkipped.Add(float64(transactions))
}

func (m *metricsService) ObserveConsolidationDuration(duration float64) {
	m.consolidationDuration.Observe(duration)
}

func (m *metricsService) ObserveGroupSize(size int) {
	m.groupSize.Observe(float64(size))
}

// Address Metrics

func (m *metricsService) IncRawAddresses(outcome string, count int) {
	m.rawAddressesTotal.WithLabelValues(outcome).Add(float64(count))
}

func (m *metricsService) IncCorrelatedRecords(kind string, count int) {
	m.correlatedRecordsTotal.WithLabelValues(kind).Add(float64(count))
}

// DB Query Metrics

func (m *metricsService) ObserveDBQueryDuration(queryType, table string, duration float64) {
	m.dbQueryDuration.WithLabelValues(queryType, table).Observe(duration)
}

func (m *metricsService) IncDBQuery(queryType, table string) {
	m.dbQueriesTotal.WithLabelValues(queryType, table).Inc()
}

func (m *metricsService) IncDBQueryError(queryType, table, errorType string) {
	m.dbQueryErrors.WithLabelValues(queryType, table, errorType).Inc()
}

func (m *metricsService) IncDBTransaction(status string) {
	m.dbTransactions.WithLabelValues(status).Inc()
}

func (m *metricsService) ObserveDBTransactionDuration(status string, duration float64) {
	m.dbTxnDuration.WithLabelValues(status).Observe(duration)
}

func (m *metricsService) ObserveDBBatchSize(operation, table string, size int) {
	m.dbBatchSize.WithLabelValues(operation, table).Observe(float64(size))
}
