package entities

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
)

const (
	guidPrefix = "MVR"
	// BuildDateAttribute is stamped on every consolidated Document.
	BuildDateAttribute = "buildDate"
)

// GenerateGUID returns the document GUID in the form "MVR-{source}-{id}".
func GenerateGUID(source, id string) string {
	return fmt.Sprintf("%s-%s-%s", guidPrefix, source, id)
}

// Document is the consolidated view of every surviving Transaction sharing one ID. The history is kept sorted by
// transaction date; transactions with equal dates keep the order in which they were added.
type Document struct {
	guid              string
	id                string
	source            string
	State             string
	Type              DocumentType
	TransactionStatus TransactionStatus
	Attributes        map[string]string
	history           []*Transaction
}

func NewDocument(source, id string) *Document {
	return &Document{
		guid:              GenerateGUID(source, id),
		id:                id,
		source:            source,
		Type:              DocumentTypeUnknown,
		TransactionStatus: TransactionStatusUnknown,
		Attributes:        map[string]string{},
		history:           []*Transaction{},
	}
}

// NewDocumentFromLatest builds a Document whose base fields are taken from latest. The history is left empty.
func NewDocumentFromLatest(latest *Transaction) *Document {
	doc := NewDocument(latest.Source, latest.ID)
	doc.State = latest.State
	if latest.Type != "" {
		doc.Type = latest.Type
	}
	if latest.TransactionStatus != "" {
		doc.TransactionStatus = latest.TransactionStatus
	}
	maps.Copy(doc.Attributes, latest.Attributes)
	return doc
}

func (d *Document) GUID() string   { return d.guid }
func (d *Document) ID() string     { return d.id }
func (d *Document) Source() string { return d.source }

// SetID updates the id and regenerates the GUID.
func (d *Document) SetID(id string) {
	d.id = id
	d.guid = GenerateGUID(d.source, d.id)
}

// SetSource updates the source and regenerates the GUID.
func (d *Document) SetSource(source string) {
	d.source = source
	d.guid = GenerateGUID(d.source, d.id)
}

func (d *Document) SetAttribute(key, value string) {
	if d.Attributes == nil {
		d.Attributes = make(map[string]string)
	}
	d.Attributes[key] = value
}

// History returns a shallow copy of the ordered history.
func (d *Document) History() []*Transaction {
	return slices.Clone(d.history)
}

// SetHistory replaces the history with a sorted copy of history. Nil entries are dropped.
func (d *Document) SetHistory(history []*Transaction) {
	d.history = slices.DeleteFunc(slices.Clone(history), func(tx *Transaction) bool { return tx == nil })
	if d.history == nil {
		d.history = []*Transaction{}
	}
	sortByTransactionDate(d.history)
}

// AddHistory inserts tx keeping the history ordered. A nil tx is ignored.
func (d *Document) AddHistory(tx *Transaction) {
	if tx == nil {
		return
	}
	d.history = append(d.history, tx)
	sortByTransactionDate(d.history)
}

// Latest returns the last transaction of the history, or nil when the history is empty.
func (d *Document) Latest() *Transaction {
	if len(d.history) == 0 {
		return nil
	}
	return d.history[len(d.history)-1]
}

// Clone returns a deep copy of the document and its history.
func (d *Document) Clone() *Document {
	c := *d
	c.Attributes = maps.Clone(d.Attributes)
	c.history = make([]*Transaction, len(d.history))
	for i, tx := range d.history {
		c.history[i] = tx.Clone()
	}
	return &c
}

// SortByTransactionDate orders txs ascending by transaction date. The sort is stable.
func SortByTransactionDate(txs []*Transaction) {
	sortByTransactionDate(txs)
}

func sortByTransactionDate(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].TransactionDate < txs[j].TransactionDate
	})
}

type documentJSON struct {
	GUID              string            `json:"guid"`
	ID                string            `json:"id"`
	Source            string            `json:"source"`
	State             string            `json:"state"`
	Type              DocumentType      `json:"type,omitempty"`
	TransactionStatus TransactionStatus `json:"transactionStatus,omitempty"`
	History           []*Transaction    `json:"history"`
	Attributes        map[string]string `json:"attributes"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	history := d.history
	if history == nil {
		history = []*Transaction{}
	}
	attributes := d.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	//nolint:wrapcheck
	return json.Marshal(documentJSON{
		GUID:              d.guid,
		ID:                d.id,
		Source:            d.source,
		State:             d.State,
		Type:              d.Type,
		TransactionStatus: d.TransactionStatus,
		History:           history,
		Attributes:        attributes,
	})
}

// UnmarshalJSON keeps the GUID carried by the record and restores the history ordering.
func (d *Document) UnmarshalJSON(data []byte) error {
	var decoded documentJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err //nolint:wrapcheck
	}

	*d = Document{
		guid:              decoded.GUID,
		id:                decoded.ID,
		source:            decoded.Source,
		State:             decoded.State,
		Type:              decoded.Type,
		TransactionStatus: decoded.TransactionStatus,
		Attributes:        decoded.Attributes,
	}
	if d.guid == "" {
		d.guid = GenerateGUID(d.source, d.id)
	}
	if d.Attributes == nil {
		d.Attributes = map[string]string{}
	}
	for i, tx := range decoded.History {
		if tx == nil {
			return &FormatError{Field: "history", Reason: fmt.Sprintf("entry %d is null", i)}
		}
	}
	d.SetHistory(decoded.History)
	return nil
}
