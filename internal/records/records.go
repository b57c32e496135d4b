// Package records reads and writes line-delimited JSON record files. Paths ending in ".gz" are gzip compressed and
// the paths "" and "-" refer to stdin or stdout.
package records

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/real-comp/mvr-common/internal/utils"
)

const (
	jsonExt = ".json"
	gzipExt = ".gz"
)

// ErrNullRecord is returned when a line holds a JSON null where a record is expected.
var ErrNullRecord = errors.New("null record")

// IsRecordFile reports whether path names a ".json" or ".json.gz" record file.
func IsRecordFile(path string) bool {
	return strings.HasSuffix(path, jsonExt) || strings.HasSuffix(path, jsonExt+gzipExt)
}

// Reader decodes one JSON value of type T per line. Read returns io.EOF after the last record.
type Reader[T any] struct {
	path    string
	decoder *json.Decoder
	closers []io.Closer
	count   int
}

func NewReader[T any](r io.Reader) *Reader[T] {
	return &Reader[T]{decoder: json.NewDecoder(r)}
}

// Open opens path for reading, decompressing gzip content when the path ends in ".gz".
func Open[T any](path string) (*Reader[T], error) {
	if path == "" || path == "-" {
		reader := NewReader[T](bufio.NewReader(os.Stdin))
		reader.path = "stdin"
		return reader, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	closers := []io.Closer{file}

	var r io.Reader = bufio.NewReader(file)
	if strings.HasSuffix(path, gzipExt) {
		gz, err := gzip.NewReader(r)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		closers = append([]io.Closer{gz}, closers...)
		r = gz
	}

	reader := NewReader[T](r)
	reader.path = path
	reader.closers = closers
	return reader, nil
}

func (r *Reader[T]) Read() (T, error) {
	var record T
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return record, io.EOF
		}
		return record, fmt.Errorf("decoding record %d of %s: %w", r.count+1, r.path, err)
	}
	if v := reflect.ValueOf(&record).Elem(); v.Kind() == reflect.Pointer && v.IsNil() {
		return record, fmt.Errorf("decoding record %d of %s: %w", r.count+1, r.path, ErrNullRecord)
	}
	r.count++
	return record, nil
}

// Count returns the number of records read so far.
func (r *Reader[T]) Count() int {
	return r.count
}

func (r *Reader[T]) Close() error {
	var errs []error
	for _, closer := range r.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("closing %s: %w", r.path, errors.Join(errs...))
	}
	return nil
}

// Writer encodes one JSON value of type T per line.
type Writer[T any] struct {
	path    string
	buf     *bufio.Writer
	encoder *json.Encoder
	closers []io.Closer
	count   int
}

func NewWriter[T any](w io.Writer) *Writer[T] {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	return &Writer[T]{buf: buf, encoder: encoder}
}

// Create creates or truncates path for writing, compressing the content when the path ends in ".gz".
func Create[T any](path string) (*Writer[T], error) {
	if path == "" || path == "-" {
		writer := NewWriter[T](os.Stdout)
		writer.path = "stdout"
		return writer, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	closers := []io.Closer{file}

	var w io.Writer = file
	if strings.HasSuffix(path, gzipExt) {
		gz := gzip.NewWriter(file)
		closers = append([]io.Closer{gz}, closers...)
		w = gz
	}

	writer := NewWriter[T](w)
	writer.path = path
	writer.closers = closers
	return writer, nil
}

func (w *Writer[T]) Write(record T) error {
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("encoding record %d to %s: %w", w.count+1, w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer[T]) Count() int {
	return w.count
}

func (w *Writer[T]) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffered records and closes the gzip stream and file in that order.
func (w *Writer[T]) Close() error {
	errs := []error{}
	if err := w.Flush(); err != nil {
		errs = append(errs, err)
	}
	for _, closer := range w.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("closing %s: %w", w.path, errors.Join(errs...))
	}
	return nil
}

// MultiReader reads every record of each path in turn.
type MultiReader[T any] struct {
	paths   []string
	current *Reader[T]
	count   int
}

func OpenAll[T any](paths []string) *MultiReader[T] {
	return &MultiReader[T]{paths: paths}
}

func (m *MultiReader[T]) Read() (T, error) {
	for {
		if m.current == nil {
			if len(m.paths) == 0 {
				var zero T
				return zero, io.EOF
			}
			reader, err := Open[T](m.paths[0])
			if err != nil {
				var zero T
				return zero, err
			}
			m.paths = m.paths[1:]
			m.current = reader
		}

		record, err := m.current.Read()
		if errors.Is(err, io.EOF) {
			if closeErr := m.current.Close(); closeErr != nil {
				return record, closeErr
			}
			m.current = nil
			continue
		}
		if err != nil {
			return record, err
		}
		m.count++
		return record, nil
	}
}

func (m *MultiReader[T]) Count() int {
	return m.count
}

func (m *MultiReader[T]) Close() error {
	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	return err
}

// ReadAll drains r into a slice.
func ReadAll[T any](ctx context.Context, r interface{ Read() (T, error) }) ([]T, error) {
	var all []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reading records: %w", err)
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, record)
	}
}

// CloseAll closes each closer, logging failures.
func CloseAll(ctx context.Context, closers ...io.Closer) {
	for _, closer := range closers {
		utils.DeferredClose(ctx, closer, "closing record file")
	}
}
