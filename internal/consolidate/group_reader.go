package consolidate

import (
	"context"
	"errors"
	"fmt"
	"io"

	set "github.com/deckarep/golang-set/v2"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
)

var ErrGroupNotContiguous = errors.New("transactions for a document id are not contiguous")

// Group is every transaction sharing one document id.
type Group struct {
	ID           string
	Transactions []*entities.Transaction
}

// GroupReader yields groups and returns io.EOF after the last one.
type GroupReader interface {
	Next(ctx context.Context) (Group, error)
}

// StreamGroupReader groups an input whose transactions are clustered by id. An id showing up again after its run
// has ended is an error.
type StreamGroupReader struct {
	reader  lockstep.Reader[*entities.Transaction]
	seen    set.Set[string]
	pending *entities.Transaction
	done    bool
}

var _ GroupReader = (*StreamGroupReader)(nil)

func NewGroupReader(reader lockstep.Reader[*entities.Transaction]) *StreamGroupReader {
	return &StreamGroupReader{
		reader: reader,
		seen:   set.NewThreadUnsafeSet[string](),
	}
}

func (r *StreamGroupReader) Next(ctx context.Context) (Group, error) {
	if err := ctx.Err(); err != nil {
		return Group{}, fmt.Errorf("reading group: %w", err)
	}

	if r.pending == nil && !r.done {
		if err := r.advance(); err != nil {
			return Group{}, err
		}
	}
	if r.pending == nil {
		return Group{}, io.EOF
	}

	group := Group{ID: r.pending.ID}
	if !r.seen.Add(group.ID) {
		return Group{}, fmt.Errorf("%w: id %q", ErrGroupNotContiguous, group.ID)
	}
	for r.pending != nil && r.pending.ID == group.ID {
		group.Transactions = append(group.Transactions, r.pending)
		if err := r.advance(); err != nil {
			return Group{}, err
		}
	}
	return group, nil
}

func (r *StreamGroupReader) advance() error {
	tx, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		r.pending = nil
		r.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading transaction: %w", err)
	}
	if tx.ID == "" {
		return errors.New("transaction has no id")
	}
	r.pending = tx
	return nil
}

// BufferedGroupReader loads the whole input into a TransactionBuffer and yields groups in ascending id order, so the
// input may arrive in any order.
type BufferedGroupReader struct {
	reader lockstep.Reader[*entities.Transaction]
	buffer *TransactionBuffer
	ids    []string
	loaded bool
}

var _ GroupReader = (*BufferedGroupReader)(nil)

func NewBufferedGroupReader(reader lockstep.Reader[*entities.Transaction]) *BufferedGroupReader {
	return &BufferedGroupReader{
		reader: reader,
		buffer: NewTransactionBuffer(),
	}
}

func (r *BufferedGroupReader) Next(ctx context.Context) (Group, error) {
	if !r.loaded {
		if err := r.load(ctx); err != nil {
			return Group{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Group{}, fmt.Errorf("reading group: %w", err)
	}
	if len(r.ids) == 0 {
		return Group{}, io.EOF
	}

	id := r.ids[0]
	r.ids = r.ids[1:]
	return Group{ID: id, Transactions: r.buffer.GetTransactions(id)}, nil
}

func (r *BufferedGroupReader) load(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("buffering transactions: %w", err)
		}
		tx, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("buffering transactions: %w", err)
		}
		if tx.ID == "" {
			return errors.New("transaction has no id")
		}
		r.buffer.Push(tx)
	}
	r.ids = r.buffer.SortedIDs()
	r.loaded = true
	log.Ctx(ctx).Infof("Buffered %d transactions across %d ids.", r.buffer.GetNumberOfTransactions(), len(r.ids))
	return nil
}
