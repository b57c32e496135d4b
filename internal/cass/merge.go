package cass

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
)

// TransactionWriter receives merged transactions.
type TransactionWriter interface {
	Write(*entities.Transaction) error
}

// ApplyAddress stores a standardized address in the slot its id names. An owner address is copied to every
// owner of the transaction.
func ApplyAddress(tx *entities.Transaction, address *entities.Address) error {
	_, slot, err := SplitAddressID(address.ID)
	if err != nil {
		return errors.Wrapf(err, "transaction %q", tx.ID)
	}

	switch slot.Role {
	case RoleOwner:
		for _, owner := range tx.Owners {
			if owner != nil {
				owner.Address = address.Clone()
			}
		}
	case RoleLienHolder:
		if slot.Index >= len(tx.LienHolders) || tx.LienHolders[slot.Index] == nil {
			return errors.Wrapf(ErrLienHolderIndexOutOfRange, "address %q: transaction %q has %d lien holders",
				address.ID, tx.ID, len(tx.LienHolders))
		}
		tx.LienHolders[slot.Index].Address = address.Clone()
	case RoleLocation:
		tx.VehicleLocation = address.Clone()
	case RoleRenewal:
		tx.RenewalAddress = address.Clone()
	default:
		return errors.Wrapf(ErrUnhandledAddressID, "address %q of transaction %q", address.ID, tx.ID)
	}
	return nil
}

// Merge walks transactions and addresses, both sorted by transaction id, and writes every transaction to out
// with its standardized addresses applied. Transactions without addresses are written unchanged.
func Merge(
	ctx context.Context,
	transactions lockstep.Reader[*entities.Transaction],
	addresses lockstep.Reader[*entities.Address],
	out TransactionWriter,
) (lockstep.Stats, error) {
	correlator, err := lockstep.New(lockstep.Config[*entities.Transaction, *entities.Address]{
		Primary:      transactions,
		Secondary:    addresses,
		PrimaryKey:   func(tx *entities.Transaction) string { return tx.ID },
		SecondaryKey: func(address *entities.Address) (string, error) { return lockstep.PrefixKey(address.ID) },
		Emit: func(_ context.Context, tx *entities.Transaction, matches []*entities.Address) error {
			for _, address := range matches {
				if err := ApplyAddress(tx, address); err != nil {
					return err
				}
			}
			if err := out.Write(tx); err != nil {
				return fmt.Errorf("writing transaction: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return lockstep.Stats{}, fmt.Errorf("creating correlator: %w", err)
	}

	stats, err := correlator.Run(ctx)
	if err != nil {
		return stats, fmt.Errorf("merging standardized addresses: %w", err)
	}

	log.Ctx(ctx).Infof("Input: %d", stats.InputCount)
	log.Ctx(ctx).Infof("Matched: %d", stats.MatchedCount)
	log.Ctx(ctx).Infof("Output: %d", stats.OutputCount)
	log.Ctx(ctx).Infof("Unmatched input: %d", stats.UnmatchedPrimary)
	return stats, nil
}
