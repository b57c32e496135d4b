package cass

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
}

func (r *txReader) Read() (*entities.Transaction, error) {
	if len(r.transactions) == 0 {
		return nil, io.EOF
	}
	tx := r.transactions[0]
	r.transactions = r.transactions[1:]
	return tx, nil
}

type rawAddressSink struct {
	written []*entities.RawAddress
	err     error
}

func (s *rawAddressSink) Write(address *entities.RawAddress) error {
	if s.err != nil {
		return s.err
	}
	s.written = append(s.written, address)
	return nil
}

func rawAddress(id, line string) *entities.RawAddress {
	return &entities.RawAddress{ID: id, AddressLines: []string{line}, City: "AUSTIN", State: "TX"}
}

func ids(addresses []*entities.RawAddress) []string {
	var out []string
	for _, a := range addresses {
		out = append(out, a.ID)
	}
	return out
}

func TestExtractor_RawAddresses(t *testing.T) {
	t.Run("🟢extraction_order", func(t *testing.T) {
		tx := &entities.Transaction{
			ID:                 "T1",
			RenewalRawAddress:  rawAddress("T1-renewal", "1 RENEWAL ST"),
			RawVehicleLocation: rawAddress("T1-location", "2 LOCATION ST"),
			Owners: []*entities.Owner{
				{RawAddress: rawAddress("T1-owner", "3 OWNER ST")},
			},
			LienHolders: []*entities.LienHolder{
				{RawAddress: rawAddress("T1-lienHolder-0", "4 BANK ST")},
				{RawAddress: rawAddress("T1-lienHolder-1", "5 BANK ST")},
			},
		}

		addresses, err := (&Extractor{}).RawAddresses(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"T1-renewal", "T1-location", "T1-owner", "T1-lienHolder-0", "T1-lienHolder-1"}, ids(addresses))
	})

	t.Run("🟢duplicate_ids_keep_last_value", func(t *testing.T) {
		tx := &entities.Transaction{
			ID:                "T1",
			RenewalRawAddress: rawAddress("T1-renewal", "1 RENEWAL ST"),
			LienHolders: []*entities.LienHolder{
				{RawAddress: rawAddress("T1-lien", "FIRST BANK")},
				{RawAddress: rawAddress("T1-lien", "SECOND BANK")},
			},
		}

		addresses, err := (&Extractor{}).RawAddresses(tx)
		require.NoError(t, err)
		require.Len(t, addresses, 2)
		assert.Equal(t, []string{"T1-renewal", "T1-lien"}, ids(addresses))
		assert.Equal(t, []string{"SECOND BANK"}, addresses[1].AddressLines)
	})

	t.Run("🟢owners_sharing_an_id_collapse", func(t *testing.T) {
		tx := &entities.Transaction{
			ID: "T1",
			Owners: []*entities.Owner{
				{RawAddress: rawAddress("T1-owner", "3 OWNER ST")},
				{RawAddress: rawAddress("T1-owner", "3 OWNER ST")},
			},
		}

		addresses, err := (&Extractor{}).RawAddresses(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"T1-owner"}, ids(addresses))
	})

	t.Run("🟢addresses_without_lines_are_ignored", func(t *testing.T) {
		tx := &entities.Transaction{
			ID:                 "T1",
			RenewalRawAddress:  &entities.RawAddress{City: "AUSTIN"},
			RawVehicleLocation: &entities.RawAddress{AddressLines: []string{"  "}},
			Owners:             []*entities.Owner{{}, nil},
		}

		addresses, err := (&Extractor{}).RawAddresses(tx)
		require.NoError(t, err)
		assert.Empty(t, addresses)
	})

	t.Run("🔴missing_id", func(t *testing.T) {
		tx := &entities.Transaction{
			ID:     "T9",
			Owners: []*entities.Owner{{RawAddress: rawAddress("", "3 OWNER ST")}},
		}

		_, err := (&Extractor{}).RawAddresses(tx)
		assert.ErrorIs(t, err, ErrMissingRawAddressID)
		assert.Contains(t, err.Error(), "owner")
		assert.Contains(t, err.Error(), `"T9"`)
	})

	t.Run("🟢assign_ids", func(t *testing.T) {
		tx := &entities.Transaction{
			ID:                "T1",
			RenewalRawAddress: rawAddress("", "1 RENEWAL ST"),
			Owners: []*entities.Owner{
				{RawAddress: rawAddress("", "3 OWNER ST")},
				{RawAddress: rawAddress("", "3 OWNER ST")},
			},
			LienHolders: []*entities.LienHolder{
				{RawAddress: rawAddress("custom", "4 BANK ST")},
				{RawAddress: rawAddress("", "5 BANK ST")},
			},
		}

		addresses, err := (&Extractor{AssignIDs: true}).RawAddresses(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"T1-renewal", "T1-owner", "custom", "T1-lienHolder-1"}, ids(addresses))
	})
}

func TestTagRawAddresses(t *testing.T) {
	err := TagRawAddresses(&entities.Transaction{ID: "T-1"})
	assert.ErrorIs(t, err, ErrTransactionIDSeparator)

	err = TagRawAddresses(&entities.Transaction{})
	assert.Error(t, err)

	tx := &entities.Transaction{ID: "T1", RawVehicleLocation: rawAddress("", "2 LOCATION ST")}
	require.NoError(t, TagRawAddresses(tx))
	assert.Equal(t, "T1-location", tx.RawVehicleLocation.ID)
}

func TestExtractor_Run(t *testing.T) {
	t.Run("🟢counts_written_and_skipped", func(t *testing.T) {
		getEntries := log.DefaultLogger.StartTest(log.InfoLevel)

		reader := &txReader{transactions: []*entities.Transaction{
			{ID: "T1", RenewalRawAddress: rawAddress("T1-renewal", "1 RENEWAL ST"), RawVehicleLocation: rawAddress("T1-location", "2 LOCATION ST")},
			{ID: "T2"},
			{ID: "T3", Owners: []*entities.Owner{{RawAddress: rawAddress("T3-owner", "3 OWNER ST")}}},
		}}
		sink := &rawAddressSink{}

		stats, err := (&Extractor{}).Run(context.Background(), reader, sink)
		require.NoError(t, err)
		assert.Equal(t, ExtractStats{Transactions: 3, Written: 3, Skipped: 1}, stats)
		assert.Equal(t, []string{"T1-renewal", "T1-location", "T3-owner"}, ids(sink.written))

		entries := getEntries()
		require.Len(t, entries, 2)
		assert.Equal(t, "3 raw addresses written.", entries[0].Message)
		assert.Equal(t, "1 records with no raw address skipped.", entries[1].Message)
	})

	t.Run("🔴write_error", func(t *testing.T) {
		writeErr := errors.New("disk full")
		reader := &txReader{transactions: []*entities.Transaction{
			{ID: "T1", RenewalRawAddress: rawAddress("T1-renewal", "1 RENEWAL ST")},
		}}

		_, err := (&Extractor{}).Run(context.Background(), reader, &rawAddressSink{err: writeErr})
		assert.ErrorIs(t, err, writeErr)
	})

	t.Run("🔴canceled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := (&Extractor{}).Run(ctx, &txReader{}, &rawAddressSink{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
