package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/cass"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
	"github.com/real-comp/mvr-common/internal/records"
)

func txWithAddresses(id string) *entities.Transaction {
	tx := newTx(id, "20200101", entities.TransactionStatusApproved, id)
	tx.Owners = []*entities.Owner{
		{RawName: "JANE DOE", RawAddress: &entities.RawAddress{AddressLines: []string{"1 MAIN ST"}, City: "AUSTIN"}},
		{RawName: "JOHN DOE", RawAddress: &entities.RawAddress{AddressLines: []string{"1 MAIN ST"}, City: "AUSTIN"}},
	}
	tx.LienHolders = []*entities.LienHolder{
		{RawName: "FIRST BANK", RawAddress: &entities.RawAddress{AddressLines: []string{"PO BOX 1"}, City: "DALLAS"}},
	}
	return tx
}

func TestCassInput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input := filepath.Join(dir, "tx.json")
	output := filepath.Join(dir, "raw.json")
	writeRecords(t, input, txWithAddresses("T1"), newTx("T2", "20200101", entities.TransactionStatusApproved, "p"))

	t.Run("🟢assigns_ids", func(t *testing.T) {
		stats, err := CassInput(ctx, CassInputConfigs{Inputs: []string{input}, Output: output, AssignIDs: true})
		require.NoError(t, err)
		assert.Equal(t, cass.ExtractStats{Transactions: 2, Written: 2, Skipped: 1}, stats)

		raw := readRecords[*entities.RawAddress](t, output)
		require.Len(t, raw, 2)
		assert.Equal(t, "T1-owner", raw[0].ID)
		assert.Equal(t, "T1-lienHolder-0", raw[1].ID)
	})

	t.Run("🔴missing_ids", func(t *testing.T) {
		_, err := CassInput(ctx, CassInputConfigs{Inputs: []string{input}, Output: output})
		assert.ErrorIs(t, err, cass.ErrMissingRawAddressID)
		assert.Equal(t, "format", errorType(err))
	})

	t.Run("🔴null_transaction", func(t *testing.T) {
		nulls := filepath.Join(t.TempDir(), "null.json")
		require.NoError(t, os.WriteFile(nulls, []byte("null\n"), 0o600))

		_, err := CassInput(ctx, CassInputConfigs{Inputs: []string{nulls}, Output: output})
		assert.ErrorIs(t, err, records.ErrNullRecord)
	})
}

func TestCassMerge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input := filepath.Join(dir, "tx.json")
	writeRecords(t, input, txWithAddresses("T1"), txWithAddresses("T2"), newTx("T3", "20200101", entities.TransactionStatusApproved, "p"))

	t.Run("🟢routes_addresses", func(t *testing.T) {
		addresses := filepath.Join(dir, "std.json.gz")
		writeRecords(t, addresses,
			&entities.Address{ID: "T1-owner", Address1: "1 MAIN ST", Zip5: "78701"},
			&entities.Address{ID: "T1-lienHolder-0", Address1: "PO BOX 1", Zip5: "75201"},
			&entities.Address{ID: "T2-lienHolder-0", Address1: "PO BOX 1", Zip5: "75201"},
		)
		output := filepath.Join(dir, "tx-std.json")

		stats, err := CassMerge(ctx, CassMergeConfigs{Inputs: []string{input}, Addresses: []string{addresses}, Output: output})
		require.NoError(t, err)
		assert.Equal(t, 3, stats.InputCount)
		assert.Equal(t, 3, stats.MatchedCount)
		assert.Equal(t, 3, stats.OutputCount)

		merged := readRecords[*entities.Transaction](t, output)
		require.Len(t, merged, 3)
		for _, owner := range merged[0].Owners {
			require.NotNil(t, owner.Address)
			assert.Equal(t, "78701", owner.Address.Zip5)
		}
		assert.Equal(t, "75201", merged[0].LienHolders[0].Address.Zip5)
		assert.Nil(t, merged[1].Owners[0].Address)
		assert.Equal(t, "75201", merged[1].LienHolders[0].Address.Zip5)
		assert.Empty(t, merged[2].Owners)
	})

	t.Run("🔴lien_holder_out_of_range", func(t *testing.T) {
		addresses := filepath.Join(dir, "bad.json")
		writeRecords(t, addresses, &entities.Address{ID: "T1-lienHolder-5"})

		_, err := CassMerge(ctx, CassMergeConfigs{Inputs: []string{input}, Addresses: []string{addresses}, Output: filepath.Join(dir, "out.json")})
		assert.ErrorIs(t, err, cass.ErrLienHolderIndexOutOfRange)
		assert.ErrorContains(t, err, "T1")
		assert.Equal(t, "routing", errorType(err))
	})

	t.Run("🔴null_address", func(t *testing.T) {
		addresses := filepath.Join(dir, "null.json")
		require.NoError(t, os.WriteFile(addresses, []byte(`{"id":"T1-owner"}`+"\nnull\n"), 0o600))

		_, err := CassMerge(ctx, CassMergeConfigs{Inputs: []string{input}, Addresses: []string{addresses}, Output: filepath.Join(dir, "out.json")})
		assert.ErrorIs(t, err, records.ErrNullRecord)
		assert.Equal(t, "format", errorType(err))
	})

	t.Run("🔴duplicate_transaction", func(t *testing.T) {
		dupes := filepath.Join(dir, "dupes.json")
		writeRecords(t, dupes, newTx("A", "20200101", entities.TransactionStatusApproved, "1"), newTx("A", "20200201", entities.TransactionStatusApproved, "2"))
		addresses := filepath.Join(dir, "a.json")
		writeRecords(t, addresses, &entities.Address{ID: "A-renewal"})

		_, err := CassMerge(ctx, CassMergeConfigs{Inputs: []string{dupes}, Addresses: []string{addresses}, Output: filepath.Join(dir, "out.json")})
		var cardinalityErr *lockstep.CardinalityError
		require.ErrorAs(t, err, &cardinalityErr)
		assert.Equal(t, "cardinality", errorType(err))
	})
}
