package build

import (
	"context"
	"fmt"

	"github.com/real-comp/mvr-common/internal/consolidate"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
	"github.com/real-comp/mvr-common/internal/metrics"
)

// DocumentWriter is satisfied by *records.Writer[*entities.Document].
type DocumentWriter interface {
	Write(*entities.Document) error
}

// FileSink writes each consolidated document as one record.
type FileSink struct {
	Writer DocumentWriter
}

var _ consolidate.DocumentSink = (*FileSink)(nil)

func (s *FileSink) WriteDocuments(ctx context.Context, docs []*entities.Document) error {
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("writing documents: %w", err)
		}
		if err := s.Writer.Write(doc); err != nil {
			return fmt.Errorf("writing document %s: %w", doc.GUID(), err)
		}
	}
	return nil
}

// MultiSink hands every batch to each of its sinks in order and stops at the first failure.
type MultiSink []consolidate.DocumentSink

func (m MultiSink) WriteDocuments(ctx context.Context, docs []*entities.Document) error {
	for _, sink := range m {
		if err := sink.WriteDocuments(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

// countingReader reports every record read to the records_read metric of stage.
type countingReader[T any] struct {
	reader         lockstep.Reader[T]
	stage          string
	metricsService metrics.MetricsService
}

func (r *countingReader[T]) Read() (T, error) {
	record, err := r.reader.Read()
	if err == nil {
		r.metricsService.IncRecordsRead(r.stage, 1)
	}
	return record, err
}

type recordWriter[T any] interface {
	Write(T) error
}

// countingWriter reports every record written to the records_written metric of stage.
type countingWriter[T any] struct {
	writer         recordWriter[T]
	stage          string
	metricsService metrics.MetricsService
}

func (w *countingWriter[T]) Write(record T) error {
	if err := w.writer.Write(record); err != nil {
		return err
	}
	w.metricsService.IncRecordsWritten(w.stage, 1)
	return nil
}
