package consolidate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/metrics"
)

const DefaultBatchSize = 1000

// DocumentSink receives each batch of consolidated documents in input order.
type DocumentSink interface {
	WriteDocuments(ctx context.Context, docs []*entities.Document) error
}

type Stats struct {
	// Groups is the number of document ids read.
	Groups int
	// TransactionsIn is the number of transactions read.
	TransactionsIn int
	// Consolidated is the number of documents written.
	Consolidated int
	// SkippedAllDeleted is the number of document ids with nothing left after delete truncation.
	SkippedAllDeleted int
	// DeletedTransactionsSkipped is the number of transactions belonging to those ids.
	DeletedTransactionsSkipped int
}

type Service struct {
	consolidator   *Consolidator
	pool           pond.Pool
	batchSize      int
	metricsService metrics.MetricsService
}

func NewService(consolidator *Consolidator, pool pond.Pool, batchSize int, metricsService metrics.MetricsService) (*Service, error) {
	if consolidator == nil {
		return nil, errors.New("consolidator cannot be nil")
	}
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	if metricsService == nil {
		return nil, errors.New("metricsService cannot be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		consolidator:   consolidator,
		pool:           pool,
		batchSize:      batchSize,
		metricsService: metricsService,
	}, nil
}

// Run consolidates every group read from groups and hands the documents to sink, one batch at a time. Groups of a
// batch are consolidated in parallel on the pool but always written in the order they were read. The first error
// stops the run; no document of the failing batch is written.
func (s *Service) Run(ctx context.Context, groups GroupReader, sink DocumentSink) (Stats, error) {
	var stats Stats
	for {
		batch, err := s.readBatch(ctx, groups)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		if err := s.processBatch(ctx, batch, sink, &stats); err != nil {
			return stats, err
		}
		log.Ctx(ctx).Debugf("consolidated %d groups, %d documents so far", stats.Groups, stats.Consolidated)
	}

	log.Ctx(ctx).Infof("%d transactions read in %d groups.", stats.TransactionsIn, stats.Groups)
	log.Ctx(ctx).Infof("%d documents consolidated.", stats.Consolidated)
	log.Ctx(ctx).Infof("%d documents skipped due to delete (%d transactions).", stats.SkippedAllDeleted, stats.DeletedTransactionsSkipped)
	return stats, nil
}

func (s *Service) readBatch(ctx context.Context, groups GroupReader) ([]Group, error) {
	batch := make([]Group, 0, s.batchSize)
	for len(batch) < s.batchSize {
		group, err := groups.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading groups: %w", err)
		}
		batch = append(batch, group)
	}
	return batch, nil
}

func (s *Service) processBatch(ctx context.Context, batch []Group, sink DocumentSink, stats *Stats) error {
	start := time.Now()
	group := s.pool.NewGroupContext(ctx)

	docs := make([]*entities.Document, len(batch))
	var errs []error
	errMu := sync.Mutex{}

	for idx, g := range batch {
		index := idx
		g := g
		group.Submit(func() {
			doc, err := s.consolidator.Consolidate(g.Transactions)
			if err != nil {
				errMu.Lock()
				defer errMu.Unlock()
				errs = append(errs, fmt.Errorf("consolidating id %q: %w", g.ID, err))
				return
			}
			docs[index] = doc
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("waiting for consolidation: %w", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("consolidating batch: %w", errors.Join(errs...))
	}
	s.metricsService.ObserveConsolidationDuration(time.Since(start).Seconds())

	written := make([]*entities.Document, 0, len(docs))
	for i, doc := range docs {
		size := len(batch[i].Transactions)
		stats.Groups++
		stats.TransactionsIn += size
		s.metricsService.ObserveGroupSize(size)
		s.metricsService.IncTransactionsConsolidated(size)
		if doc == nil {
			stats.SkippedAllDeleted++
			stats.DeletedTransactionsSkipped += size
			s.metricsService.IncGroupsSkippedDeleted(size)
			continue
		}
		written = append(written, doc)
	}

	if len(written) > 0 {
		if err := sink.WriteDocuments(ctx, written); err != nil {
			return fmt.Errorf("writing documents: %w", err)
		}
	}
	stats.Consolidated += len(written)
	for range written {
		s.metricsService.IncDocumentsConsolidated()
	}
	return nil
}
