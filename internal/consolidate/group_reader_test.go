package consolidate

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stellar/go/support/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/entities"
)

type txReader struct {
	transactions []*entities.Transaction
	err          error
}

func (r *txReader) Read() (*entities.Transaction, error) {
	if len(r.transactions) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		return nil, io.EOF
	}
	tx := r.transactions[0]
	r.transactions = r.transactions[1:]
	return tx, nil
}

func readGroups(t *testing.T, reader GroupReader) ([]Group, error) {
	t.Helper()
	var groups []Group
	for {
		group, err := reader.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return groups, nil
		}
		if err != nil {
			return groups, err
		}
		groups = append(groups, group)
	}
}

func groupIDs(groups []Group) []string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestStreamGroupReader(t *testing.T) {
	approved := entities.TransactionStatusApproved

	t.Run("🟢contiguous_runs", func(t *testing.T) {
		reader := NewGroupReader(&txReader{transactions: []*entities.Transaction{
			newTx("B", "20200101", approved, "b1"),
			newTx("B", "20200201", approved, "b2"),
			newTx("A", "20200101", approved, "a1"),
			newTx("C", "20200101", approved, "c1"),
		}})

		groups, err := readGroups(t, reader)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "A", "C"}, groupIDs(groups))
		assert.Equal(t, []string{"b1", "b2"}, plates(groups[0].Transactions))
	})

	t.Run("🟢empty_input", func(t *testing.T) {
		groups, err := readGroups(t, NewGroupReader(&txReader{}))
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("🔴id_reappears", func(t *testing.T) {
		reader := NewGroupReader(&txReader{transactions: []*entities.Transaction{
			newTx("A", "20200101", approved, "a1"),
			newTx("B", "20200101", approved, "b1"),
			newTx("A", "20200201", approved, "a2"),
		}})

		groups, err := readGroups(t, reader)
		assert.ErrorIs(t, err, ErrGroupNotContiguous)
		assert.ErrorContains(t, err, `"A"`)
		assert.Equal(t, []string{"A", "B"}, groupIDs(groups))
	})

	t.Run("🔴read_error", func(t *testing.T) {
		readErr := errors.New("truncated gzip stream")
		reader := NewGroupReader(&txReader{
			transactions: []*entities.Transaction{newTx("A", "20200101", approved, "a1")},
			err:          readErr,
		})

		_, err := readGroups(t, reader)
		assert.ErrorIs(t, err, readErr)
	})

	t.Run("🔴missing_id", func(t *testing.T) {
		reader := NewGroupReader(&txReader{transactions: []*entities.Transaction{newTx("", "20200101", approved, "x")}})

		_, err := readGroups(t, reader)
		assert.ErrorContains(t, err, "transaction has no id")
	})
}

func TestBufferedGroupReader(t *testing.T) {
	approved := entities.TransactionStatusApproved

	t.Run("🟢groups_in_id_order", func(t *testing.T) {
		getEntries := log.DefaultLogger.StartTest(log.InfoLevel)
		reader := NewBufferedGroupReader(&txReader{transactions: []*entities.Transaction{
			newTx("C", "20200101", approved, "c1"),
			newTx("A", "20200301", approved, "a3"),
			newTx("B", "20200101", approved, "b1"),
			newTx("A", "20200101", approved, "a1"),
		}})

		groups, err := readGroups(t, reader)
		entries := getEntries()
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, groupIDs(groups))
		assert.Equal(t, []string{"a3", "a1"}, plates(groups[0].Transactions))

		require.Len(t, entries, 1)
		assert.Equal(t, "Buffered 4 transactions across 3 ids.", entries[0].Message)
	})

	t.Run("🔴canceled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBufferedGroupReader(&txReader{}).Next(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTransactionBuffer(t *testing.T) {
	buffer := NewTransactionBuffer()
	buffer.Push(newTx("B", "20200101", entities.TransactionStatusApproved, "b1"))
	buffer.Push(newTx("A", "20200101", entities.TransactionStatusApproved, "a1"))
	buffer.Push(newTx("B", "20190101", entities.TransactionStatusApproved, "b0"))

	assert.Equal(t, 3, buffer.GetNumberOfTransactions())
	assert.Equal(t, []string{"A", "B"}, buffer.SortedIDs())
	assert.True(t, buffer.IDs.Contains("A"))

	txs := buffer.GetTransactions("B")
	assert.Equal(t, []string{"b1", "b0"}, plates(txs))
	txs[0] = nil
	assert.NotNil(t, buffer.GetTransactions("B")[0])
	assert.Empty(t, buffer.GetTransactions("Z"))
}
