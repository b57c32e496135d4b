// Package consolidate folds the transactions sharing a document id into a single Document.
package consolidate

import (
	"errors"
	"fmt"

	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/validators"
)

var ErrInvalidTransactionDate = errors.New("missing or invalid transaction date")

type Consolidator struct {
	// BuildDate is stamped on every Document as the buildDate attribute when set.
	BuildDate string
	// Attributes are stamped on every transaction before it is consolidated.
	Attributes map[string]string
}

// Consolidate builds the Document for one group of transactions sharing an id. The group is ordered by transaction
// date and every transaction up to and including the last DELETED one is dropped. A nil Document is returned when
// nothing survives.
func (c *Consolidator) Consolidate(group []*entities.Transaction) (*entities.Document, error) {
	for _, tx := range group {
		if !validators.IsDate(tx.TransactionDate) {
			return nil, fmt.Errorf("%w %q in transaction %q", ErrInvalidTransactionDate, tx.TransactionDate, tx.ID)
		}
	}

	sorted := make([]*entities.Transaction, len(group))
	copy(sorted, group)
	entities.SortByTransactionDate(sorted)

	history := make([]*entities.Transaction, 0, len(sorted))
	for _, tx := range sorted {
		if tx.IsDeleted() {
			history = history[:0]
			continue
		}
		history = append(history, tx)
	}
	if len(history) == 0 {
		return nil, nil
	}

	for _, tx := range history {
		for key, value := range c.Attributes {
			tx.SetAttribute(key, value)
		}
	}

	doc := entities.NewDocumentFromLatest(history[len(history)-1])
	doc.SetHistory(history)
	if c.BuildDate != "" {
		doc.SetAttribute(entities.BuildDateAttribute, c.BuildDate)
	}
	return doc, nil
}
