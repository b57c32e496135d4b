package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGUID(t *testing.T) {
	assert.Equal(t, "MVR-TXDMV-123", GenerateGUID("TXDMV", "123"))
	assert.Equal(t, "MVR--", GenerateGUID("", ""))
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("TXDMV", "123")
	assert.Equal(t, "MVR-TXDMV-123", doc.GUID())
	assert.Equal(t, DocumentTypeUnknown, doc.Type)
	assert.Equal(t, TransactionStatusUnknown, doc.TransactionStatus)
	assert.Empty(t, doc.History())
	assert.Nil(t, doc.Latest())

	doc.SetID("456")
	assert.Equal(t, "MVR-TXDMV-456", doc.GUID())
	doc.SetSource("FLDMV")
	assert.Equal(t, "MVR-FLDMV-456", doc.GUID())
}

func TestNewDocumentFromLatest(t *testing.T) {
	latest := &Transaction{
		ID:                "9",
		Source:            "S",
		State:             "TX",
		Type:              DocumentTypeTitle,
		TransactionStatus: TransactionStatusApproved,
		Attributes:        map[string]string{"k": "v"},
	}

	doc := NewDocumentFromLatest(latest)
	assert.Equal(t, "MVR-S-9", doc.GUID())
	assert.Equal(t, "TX", doc.State)
	assert.Equal(t, DocumentTypeTitle, doc.Type)
	assert.Equal(t, TransactionStatusApproved, doc.TransactionStatus)
	assert.Equal(t, map[string]string{"k": "v"}, doc.Attributes)

	doc.SetAttribute("k", "changed")
	assert.Equal(t, "v", latest.Attributes["k"])
}

func TestDocument_History(t *testing.T) {
	t.Run("🟢set_history_sorts_stably", func(t *testing.T) {
		a := &Transaction{ID: "1", TransactionDate: "20200102", Plate: "a"}
		b := &Transaction{ID: "1", TransactionDate: "20200101", Plate: "b"}
		c := &Transaction{ID: "1", TransactionDate: "20200102", Plate: "c"}
		d := &Transaction{ID: "1", TransactionDate: "20190101", Plate: "d"}

		doc := NewDocument("S", "1")
		doc.SetHistory([]*Transaction{a, b, c, d})

		assert.Equal(t, []*Transaction{d, b, a, c}, doc.History())
		assert.Same(t, c, doc.Latest())
	})

	t.Run("🟢set_history_copies_input", func(t *testing.T) {
		a := &Transaction{ID: "1", TransactionDate: "20200101"}
		b := &Transaction{ID: "1", TransactionDate: "20210101"}
		input := []*Transaction{a, b}

		doc := NewDocument("S", "1")
		doc.SetHistory(input)
		input[0] = &Transaction{ID: "x", TransactionDate: "20990101"}

		assert.Equal(t, []*Transaction{a, b}, doc.History())
	})

	t.Run("🟢history_returns_copy", func(t *testing.T) {
		doc := NewDocument("S", "1")
		doc.AddHistory(&Transaction{ID: "1", TransactionDate: "20200101"})

		history := doc.History()
		history[0] = nil
		assert.NotNil(t, doc.History()[0])
	})

	t.Run("🟡nil_entries_are_dropped", func(t *testing.T) {
		a := &Transaction{ID: "1", TransactionDate: "20200101"}

		doc := NewDocument("S", "1")
		doc.SetHistory([]*Transaction{nil, a, nil})
		doc.AddHistory(nil)

		assert.Equal(t, []*Transaction{a}, doc.History())
	})

	t.Run("🟢add_history_keeps_order", func(t *testing.T) {
		doc := NewDocument("S", "1")
		first := &Transaction{ID: "1", TransactionDate: "20200301"}
		second := &Transaction{ID: "1", TransactionDate: "20200101"}
		third := &Transaction{ID: "1", TransactionDate: "20200301"}
		doc.AddHistory(first)
		doc.AddHistory(second)
		doc.AddHistory(third)

		assert.Equal(t, []*Transaction{second, first, third}, doc.History())
		assert.Same(t, third, doc.Latest())
	})
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := NewDocumentFromLatest(&Transaction{ID: "1", Source: "S", State: "TX", Type: DocumentTypeTitle, TransactionStatus: TransactionStatusApproved})
	doc.SetAttribute(BuildDateAttribute, "20240101")
	doc.SetHistory([]*Transaction{
		{ID: "1", Source: "S", TransactionDate: "20200101", TransactionStatus: TransactionStatusTransmitted},
		{ID: "1", Source: "S", TransactionDate: "20210101", TransactionStatus: TransactionStatusApproved, Owners: []*Owner{{RawName: "A"}}},
	})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"guid":"MVR-S-1"`)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc, &decoded)
}

func TestDocument_UnmarshalJSON(t *testing.T) {
	t.Run("🟢sorts_unordered_history", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"id":"1","source":"S","history":[{"id":"1","transactionDate":"20210101"},{"id":"1","transactionDate":"20200101"}]}`), &doc)
		require.NoError(t, err)
		assert.Equal(t, "MVR-S-1", doc.GUID())
		assert.Equal(t, "20210101", doc.Latest().TransactionDate)
	})

	t.Run("🔴rejects_invalid_history_entry", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"id":"1","source":"S","history":[{"id":"1","transactionDate":"2021"}]}`), &doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("🔴rejects_null_history_entry", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"id":"1","source":"S","history":[{"id":"1","transactionDate":"20200101"},null]}`), &doc)
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.ErrorContains(t, err, "entry 1 is null")
	})
}

func TestDocument_Clone(t *testing.T) {
	doc := NewDocument("S", "1")
	doc.AddHistory(&Transaction{ID: "1", TransactionDate: "20200101", Plate: "P"})

	c := doc.Clone()
	assert.Equal(t, doc, c)
	c.History()[0].Plate = "changed"
	assert.Equal(t, "P", doc.Latest().Plate)
}
