package metrics

import (
	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
)

// MockMetricsService is a mock implementation of MetricsService
type MockMetricsService struct {
	mock.Mock
}

var _ MetricsService = (*MockMetricsService)(nil)

// NewMockMetricsService creates a new mock metrics service
func NewMockMetricsService() *MockMetricsService {
	return &MockMetricsService{}
}

func (m *MockMetricsService) RegisterPoolMetrics(channel string, pool pond.Pool) {
	m.Called(channel, pool)
}

func (m *MockMetricsService) GetRegistry() *prometheus.Registry {
	args := m.Called()
	return args.Get(0).(*prometheus.Registry)
}

func (m *MockMetricsService) IncRecordsRead(stage string, count int) {
	m.Called(stage, count)
}

func (m *MockMetricsService) IncRecordsWritten(stage string, count int) {
	m.Called(stage, count)
}

func (m *MockMetricsService) ObserveStageDuration(stage string, duration float64) {
	m.Called(stage, duration)
}

func (m *MockMetricsService) IncErrors(stage, errorType string) {
	m.Called(stage, errorType)
}

func (m *MockMetricsService) IncDocumentsConsolidated() {
	m.Called()
}

func (m *MockMetricsService) IncTransactionsConsolidated(count int) {
	m.Called(count)
}

func (m *MockMetricsService) IncGroupsSkippedDeleted(transactions int) {
	m.Called(transactions)
}

func (m *MockMetricsService) ObserveConsolidationDuration(duration float64) {
	m.Called(duration)
}

func (m *MockMetricsService) ObserveGroupSize(size int) {
	m.Called(size)
}

func (m *MockMetricsService) IncRawAddresses(outcome string, count int) {
	m.Called(outcome, count)
}

func (m *MockMetricsService) IncCorrelatedRecords(kind string, count int) {
	m.Called(kind, count)
}

func (m *MockMetricsService) ObserveDBQueryDuration(queryType, table string, duration float64) {
	m.Called(queryType, table, duration)
}

func (m *MockMetricsService) IncDBQuery(queryType, table string) {
	m.Called(queryType, table)
}

func (m *MockMetricsService) IncDBQueryError(queryType, table, errorType string) {
	m.Called(queryType, table, errorType)
}

func (m *MockMetricsService) IncDBTransaction(status string) {
	m.Called(status)
}

func (m *MockMetricsService) ObserveDBTransactionDuration(status string, duration float64) {
	m.Called(status, duration)
}

func (m *MockMetricsService) ObserveDBBatchSize(operation, table string, size int) {
	m.Called(operation, table, size)
}
