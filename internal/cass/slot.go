// Package cass prepares transaction addresses for postal standardization (CASS) and routes the standardized
// addresses back to the transaction slots they came from.
package cass

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Role names the part of a transaction an address belongs to.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleLienHolder Role = "lienHolder"
	RoleLocation   Role = "location"
	RoleRenewal    Role = "renewal"
)

const idSeparator = "-"

var (
	ErrUnhandledAddressID        = errors.New("unhandled address id")
	ErrMalformedAddressID        = errors.New("address id is not in the expected format")
	ErrLienHolderIndexOutOfRange = errors.New("lien holder index out of range")
	ErrMissingRawAddressID       = errors.New("no id found in raw address")
	ErrTransactionIDSeparator    = errors.New("transaction id contains the address id separator")
)

// AddressSlot identifies where in a transaction an address lives. Index is only meaningful for lien holders.
type AddressSlot struct {
	Role  Role
	Index int
}

func OwnerSlot() AddressSlot               { return AddressSlot{Role: RoleOwner} }
func LocationSlot() AddressSlot            { return AddressSlot{Role: RoleLocation} }
func RenewalSlot() AddressSlot             { return AddressSlot{Role: RoleRenewal} }
func LienHolderSlot(index int) AddressSlot { return AddressSlot{Role: RoleLienHolder, Index: index} }

// Suffix renders the slot as it appears after the transaction id, e.g. "owner" or "lienHolder-2".
func (s AddressSlot) Suffix() string {
	if s.Role == RoleLienHolder {
		return string(RoleLienHolder) + idSeparator + strconv.Itoa(s.Index)
	}
	return string(s.Role)
}

// ID returns the address correlation id "{txID}-{suffix}".
func (s AddressSlot) ID(txID string) string {
	return txID + idSeparator + s.Suffix()
}

func (s AddressSlot) String() string {
	return s.Suffix()
}

// ParseAddressSlot is the inverse of AddressSlot.Suffix.
func ParseAddressSlot(suffix string) (AddressSlot, error) {
	switch Role(suffix) {
	case RoleOwner:
		return OwnerSlot(), nil
	case RoleLocation:
		return LocationSlot(), nil
	case RoleRenewal:
		return RenewalSlot(), nil
	}

	rawIndex, found := strings.CutPrefix(suffix, string(RoleLienHolder)+idSeparator)
	if !found {
		return AddressSlot{}, fmt.Errorf("%w: suffix %q", ErrUnhandledAddressID, suffix)
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 {
		return AddressSlot{}, fmt.Errorf("%w: lien holder index %q", ErrUnhandledAddressID, rawIndex)
	}
	return LienHolderSlot(index), nil
}

// SplitAddressID splits an address id at its first "-" into the transaction id and the slot.
func SplitAddressID(id string) (string, AddressSlot, error) {
	txID, suffix, found := strings.Cut(id, idSeparator)
	if !found || txID == "" {
		return "", AddressSlot{}, fmt.Errorf("%w: %q", ErrMalformedAddressID, id)
	}
	slot, err := ParseAddressSlot(suffix)
	if err != nil {
		return "", AddressSlot{}, fmt.Errorf("address id %q: %w", id, err)
	}
	return txID, slot, nil
}
