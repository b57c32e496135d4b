package entities

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Transaction is a single state-reported title or registration event. ID identifies the document the event belongs
// to and is shared by every event of that document.
type Transaction struct {
	ID                string            `json:"id"`
	State             string            `json:"state,omitempty"`
	Source            string            `json:"source,omitempty"`
	TransactionDate   string            `json:"transactionDate,omitempty" validate:"omitempty,yyyymmdd"`
	Type              DocumentType      `json:"type,omitempty"`
	TransactionStatus TransactionStatus `json:"transactionStatus,omitempty"`

	TitleIssueDate  string          `json:"titleIssueDate,omitempty" validate:"omitempty,yyyymmdd"`
	BondedTitleType BondedTitleType `json:"bondedTitleType,omitempty"`

	Plate                     string `json:"plate,omitempty"`
	RegistrationClassCode     string `json:"registrationClassCode,omitempty"`
	RegistrationCounty        string `json:"registrationCounty,omitempty"`
	RegistrationEffectiveDate string `json:"registrationEffectiveDate,omitempty" validate:"omitempty,yyyymmdd"`
	RegistrationExpMonth      string `json:"registrationExpMonth,omitempty" validate:"omitempty,mm"`
	RegistrationExpYear       string `json:"registrationExpYear,omitempty" validate:"omitempty,yyyy"`
	RegistrationInvalid       bool   `json:"registrationInvalid,omitempty"`

	Vehicle            *Vehicle    `json:"vehicle,omitempty"`
	RawVehicleLocation *RawAddress `json:"rawVehicleLocation,omitempty"`
	VehicleLocation    *Address    `json:"vehicleLocation,omitempty"`
	SalePrice          string      `json:"salePrice,omitempty"`
	SaleDate           string      `json:"saleDate,omitempty" validate:"omitempty,yyyymmdd"`

	Stolen               bool   `json:"stolen,omitempty"`
	Exempt               bool   `json:"exempt,omitempty"`
	GovernmentOwned      bool   `json:"governmentOwned,omitempty"`
	LemonLaw             bool   `json:"lemonLaw,omitempty"`
	FloodDamage          bool   `json:"floodDamage,omitempty"`
	InspectionWaived     bool   `json:"inspectionWaived,omitempty"`
	Junk                 bool   `json:"junk,omitempty"`
	Reconditioned        bool   `json:"reconditioned,omitempty"`
	Reconstructed        bool   `json:"reconstructed,omitempty"`
	TitleRevoked         bool   `json:"titleRevoked,omitempty"`
	SurrenderedTitle     bool   `json:"surrenderedTitle,omitempty"`
	SurrenderedTitleDate string `json:"surrenderedTitleDate,omitempty" validate:"omitempty,yyyymmdd"`
	SafetySuspension     bool   `json:"safetySuspension,omitempty"`
	PlateSeized          bool   `json:"plateSeized,omitempty"`
	StickerSeized        bool   `json:"stickerSeized,omitempty"`
	HeavyUseTax          bool   `json:"heavyUseTax,omitempty"`

	Owners []*Owner `json:"owners,omitempty"`

	RawRenewalName    string      `json:"rawRenewalName,omitempty"`
	RenewalName       *Name       `json:"renewalName,omitempty"`
	RenewalRawAddress *RawAddress `json:"renewalRawAddress,omitempty"`
	RenewalAddress    *Address    `json:"renewalAddress,omitempty"`

	LienHolders           []*LienHolder `json:"lienHolders,omitempty" validate:"omitempty,dive"`
	AdditionalLienHolders bool          `json:"additionalLienHolders,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`
}

// UnmarshalJSON rejects records whose date, month or year fields are malformed.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	type transaction Transaction
	var decoded transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err //nolint:wrapcheck
	}

	t := Transaction(decoded)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("transaction %q: %w", t.ID, err)
	}
	*tx = t
	return nil
}

func (tx *Transaction) Validate() error {
	return validateStruct("transaction", tx)
}

// SetTransactionDate sets the YYYYMMDD event date. An empty value clears it.
func (tx *Transaction) SetTransactionDate(date string) error {
	if err := checkDate("transactionDate", date); err != nil {
		return err
	}
	tx.TransactionDate = date
	return nil
}

func (tx *Transaction) SetTitleIssueDate(date string) error {
	if err := checkDate("titleIssueDate", date); err != nil {
		return err
	}
	tx.TitleIssueDate = date
	return nil
}

func (tx *Transaction) SetRegistrationEffectiveDate(date string) error {
	if err := checkDate("registrationEffectiveDate", date); err != nil {
		return err
	}
	tx.RegistrationEffectiveDate = date
	return nil
}

func (tx *Transaction) SetRegistrationExpMonth(month string) error {
	if err := checkMonth("registrationExpMonth", month); err != nil {
		return err
	}
	tx.RegistrationExpMonth = month
	return nil
}

func (tx *Transaction) SetRegistrationExpYear(year string) error {
	if err := checkYear("registrationExpYear", year); err != nil {
		return err
	}
	tx.RegistrationExpYear = year
	return nil
}

func (tx *Transaction) SetSaleDate(date string) error {
	if err := checkDate("saleDate", date); err != nil {
		return err
	}
	tx.SaleDate = date
	return nil
}

func (tx *Transaction) SetSurrenderedTitleDate(date string) error {
	if err := checkDate("surrenderedTitleDate", date); err != nil {
		return err
	}
	tx.SurrenderedTitleDate = date
	return nil
}

func (tx *Transaction) SetAttribute(key, value string) {
	if tx.Attributes == nil {
		tx.Attributes = make(map[string]string)
	}
	tx.Attributes[key] = value
}

func (tx *Transaction) IsDeleted() bool {
	return tx.TransactionStatus == TransactionStatusDeleted
}

// Clone returns a deep copy; the nested owners, lien holders, vehicle and addresses are not shared.
func (tx *Transaction) Clone() *Transaction {
	if tx == nil {
		return nil
	}
	c := *tx
	c.Vehicle = tx.Vehicle.Clone()
	c.RawVehicleLocation = tx.RawVehicleLocation.Clone()
	c.VehicleLocation = tx.VehicleLocation.Clone()
	c.RenewalName = tx.RenewalName.Clone()
	c.RenewalRawAddress = tx.RenewalRawAddress.Clone()
	c.RenewalAddress = tx.RenewalAddress.Clone()
	c.Attributes = maps.Clone(tx.Attributes)
	if tx.Owners != nil {
		c.Owners = make([]*Owner, len(tx.Owners))
		for i, owner := range tx.Owners {
			c.Owners[i] = owner.Clone()
		}
	}
	if tx.LienHolders != nil {
		c.LienHolders = make([]*LienHolder, len(tx.LienHolders))
		for i, lienHolder := range tx.LienHolders {
			c.LienHolders[i] = lienHolder.Clone()
		}
	}
	return &c
}
