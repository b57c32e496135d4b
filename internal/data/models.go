package data

import (
	"errors"

	"github.com/real-comp/mvr-common/internal/db"
	"github.com/real-comp/mvr-common/internal/metrics"
)

type Models struct {
	Documents *DocumentModel
	BuildRuns *BuildRunModel
}

func NewModels(db db.ConnectionPool, metricsService metrics.MetricsService) (*Models, error) {
	if db == nil {
		return nil, errors.New("ConnectionPool must be initialized")
	}
	if metricsService == nil {
		return nil, errors.New("MetricsService must be initialized")
	}

	return &Models{
		Documents: &DocumentModel{DB: db, MetricsService: metricsService},
		BuildRuns: &BuildRunModel{DB: db, MetricsService: metricsService},
	}, nil
}
