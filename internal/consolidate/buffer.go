package consolidate

import (
	"slices"
	"sync"

	set "github.com/deckarep/golang-set/v2"

	"github.com/real-comp/mvr-common/internal/entities"
)

// TransactionBuffer collects transactions by document id. It is safe for concurrent use.
type TransactionBuffer struct {
	mu      sync.RWMutex
	IDs     set.Set[string]
	txsByID map[string][]*entities.Transaction
	count   int
}

func NewTransactionBuffer() *TransactionBuffer {
	return &TransactionBuffer{
		IDs:     set.NewSet[string](),
		txsByID: make(map[string][]*entities.Transaction),
	}
}

func (b *TransactionBuffer) Push(tx *entities.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.IDs.Add(tx.ID)
	b.txsByID[tx.ID] = append(b.txsByID[tx.ID], tx)
	b.count++
}

func (b *TransactionBuffer) GetNumberOfTransactions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count
}

// GetTransactions returns the transactions pushed for id in push order.
func (b *TransactionBuffer) GetTransactions(id string) []*entities.Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.txsByID[id])
}

// SortedIDs returns every buffered id in ascending order.
func (b *TransactionBuffer) SortedIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := b.IDs.ToSlice()
	slices.Sort(ids)
	return ids
}
