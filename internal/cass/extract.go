package cass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
)

// RawAddressWriter receives the raw addresses to send for standardization.
type RawAddressWriter interface {
	Write(*entities.RawAddress) error
}

type ExtractStats struct {
	// Transactions is the number of transactions read.
	Transactions int
	// Written is the number of raw addresses written.
	Written int
	// Skipped is the number of transactions that produced no raw address.
	Skipped int
}

type Extractor struct {
	// AssignIDs tags raw addresses that have no id with their slot id before extraction.
	AssignIDs bool
}

// RawAddresses returns the distinct raw addresses of tx in renewal, vehicle location, owner, lien holder order.
// Addresses sharing an id collapse to the last one seen, kept at the position of the first.
func (e *Extractor) RawAddresses(tx *entities.Transaction) ([]*entities.RawAddress, error) {
	if e.AssignIDs {
		if err := TagRawAddresses(tx); err != nil {
			return nil, err
		}
	}

	type candidate struct {
		role    Role
		address *entities.RawAddress
	}
	candidates := []candidate{
		{role: RoleRenewal, address: tx.RenewalRawAddress},
		{role: RoleLocation, address: tx.RawVehicleLocation},
	}
	for _, owner := range tx.Owners {
		if owner != nil {
			candidates = append(candidates, candidate{role: RoleOwner, address: owner.RawAddress})
		}
	}
	for _, lienHolder := range tx.LienHolders {
		if lienHolder != nil {
			candidates = append(candidates, candidate{role: RoleLienHolder, address: lienHolder.RawAddress})
		}
	}

	var addresses []*entities.RawAddress
	positions := map[string]int{}
	for _, c := range candidates {
		if !c.address.HasAddressLines() {
			continue
		}
		if c.address.ID == "" {
			return nil, fmt.Errorf("%w for %s in transaction %q", ErrMissingRawAddressID, c.role, tx.ID)
		}
		if i, ok := positions[c.address.ID]; ok {
			addresses[i] = c.address
			continue
		}
		positions[c.address.ID] = len(addresses)
		addresses = append(addresses, c.address)
	}
	return addresses, nil
}

// Run writes the raw addresses of every transaction read from transactions to out.
func (e *Extractor) Run(ctx context.Context, transactions lockstep.Reader[*entities.Transaction], out RawAddressWriter) (ExtractStats, error) {
	var stats ExtractStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("extracting raw addresses: %w", err)
		}

		tx, err := transactions.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("reading transaction %d: %w", stats.Transactions+1, err)
		}
		stats.Transactions++

		addresses, err := e.RawAddresses(tx)
		if err != nil {
			return stats, err
		}
		if len(addresses) == 0 {
			stats.Skipped++
			continue
		}
		for _, address := range addresses {
			if err := out.Write(address); err != nil {
				return stats, fmt.Errorf("writing raw address %q: %w", address.ID, err)
			}
			stats.Written++
		}
	}

	log.Ctx(ctx).Infof("%d raw addresses written.", stats.Written)
	log.Ctx(ctx).Infof("%d records with no raw address skipped.", stats.Skipped)
	return stats, nil
}

// TagRawAddresses assigns slot ids to the raw addresses of tx that have none. Every owner shares the id
// "{txID}-owner" so a single standardized owner address is copied to each owner on merge.
func TagRawAddresses(tx *entities.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction has no id")
	}
	if strings.Contains(tx.ID, idSeparator) {
		return fmt.Errorf("%w: %q", ErrTransactionIDSeparator, tx.ID)
	}

	tag := func(address *entities.RawAddress, slot AddressSlot) {
		if address != nil && address.ID == "" {
			address.ID = slot.ID(tx.ID)
		}
	}
	tag(tx.RenewalRawAddress, RenewalSlot())
	tag(tx.RawVehicleLocation, LocationSlot())
	for _, owner := range tx.Owners {
		if owner != nil {
			tag(owner.RawAddress, OwnerSlot())
		}
	}
	for i, lienHolder := range tx.LienHolders {
		if lienHolder != nil {
			tag(lienHolder.RawAddress, LienHolderSlot(i))
		}
	}
	return nil
}
