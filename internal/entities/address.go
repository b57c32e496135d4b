package entities

import (
	"slices"
	"strings"
)

// RawAddress is an address as reported by the state, before standardization. ID is the correlation key the
// standardization service echoes back on the matching Address.
type RawAddress struct {
	ID           string   `json:"id,omitempty"`
	AddressLines []string `json:"addressLines,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	Country      string   `json:"country,omitempty"`
}

func (a *RawAddress) Clone() *RawAddress {
	if a == nil {
		return nil
	}
	c := *a
	c.AddressLines = slices.Clone(a.AddressLines)
	return &c
}

// HasAddressLines reports whether at least one address line carries text.
func (a *RawAddress) HasAddressLines() bool {
	if a == nil {
		return false
	}
	for _, line := range a.AddressLines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// Address is a standardized postal address.
type Address struct {
	ID                string  `json:"id,omitempty"`
	Address1          string  `json:"address1,omitempty"`
	Address2          string  `json:"address2,omitempty"`
	City              string  `json:"city,omitempty"`
	State             string  `json:"state,omitempty"`
	Zip5              string  `json:"zip5,omitempty"`
	Zip4              string  `json:"zip4,omitempty"`
	County            string  `json:"county,omitempty"`
	CountyFIPS        string  `json:"countyFips,omitempty"`
	CarrierRoute      string  `json:"carrierRoute,omitempty"`
	DeliveryPoint     string  `json:"deliveryPoint,omitempty"`
	DPVConfirmation   string  `json:"dpvConfirmation,omitempty"`
	ReturnCode        string  `json:"returnCode,omitempty"`
	Latitude          float64 `json:"latitude,omitempty"`
	Longitude         float64 `json:"longitude,omitempty"`
	ResidentialStatus string  `json:"residentialStatus,omitempty"`
}

func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Name is a parsed person or business name.
type Name struct {
	Prefix   string `json:"prefix,omitempty"`
	First    string `json:"first,omitempty"`
	Middle   string `json:"middle,omitempty"`
	Last     string `json:"last,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Business string `json:"business,omitempty"`
}

func (n *Name) Clone() *Name {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
