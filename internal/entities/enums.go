package entities

import (
	"fmt"
	"strings"

	set "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type TransactionStatus string

const (
	TransactionStatusApproved       TransactionStatus = "APPROVED"
	TransactionStatusTransmitted    TransactionStatus = "TRANSMITTED"
	TransactionStatusExamination    TransactionStatus = "EXAMINATION"
	TransactionStatusLegalRestraint TransactionStatus = "LEGAL_RESTRAINT"
	TransactionStatusPrinting       TransactionStatus = "PRINTING"
	TransactionStatusRejected       TransactionStatus = "REJECTED"
	TransactionStatusSuperceded     TransactionStatus = "SUPERCEDED"
	TransactionStatusStolen         TransactionStatus = "STOLEN"
	TransactionStatusDeleted        TransactionStatus = "DELETED"
	TransactionStatusOther          TransactionStatus = "OTHER"
	TransactionStatusUnknown        TransactionStatus = "UNKNOWN"
)

var transactionStatuses = set.NewSet(
	TransactionStatusApproved,
	TransactionStatusTransmitted,
	TransactionStatusExamination,
	TransactionStatusLegalRestraint,
	TransactionStatusPrinting,
	TransactionStatusRejected,
	TransactionStatusSuperceded,
	TransactionStatusStolen,
	TransactionStatusDeleted,
	TransactionStatusOther,
	TransactionStatusUnknown,
)

func (s *TransactionStatus) UnmarshalText(text []byte) error {
	value, err := parseEnum("transactionStatus", transactionStatuses, text)
	if err != nil {
		return err
	}
	*s = value
	return nil
}

type DocumentType string

const (
	DocumentTypeTitle                  DocumentType = "TITLE"
	DocumentTypeOffHighwayOnly         DocumentType = "OFF_HIGHWAY_ONLY"
	DocumentTypeSalvageCertificate     DocumentType = "SALVAGE_CERTIFICATE"
	DocumentTypeCertificateOfAuthority DocumentType = "CERTIFICATE_OF_AUTHORITY"
	DocumentTypeLegalRestraint         DocumentType = "LEGAL_RESTRAINT"
	DocumentTypeNonTitled              DocumentType = "NON_TITLED"
	DocumentTypeOutOfStateTitle        DocumentType = "OUT_OF_STATE_TITLE"
	DocumentTypeInsurance              DocumentType = "INSURANCE"
	DocumentTypeNonRepair              DocumentType = "NON_REPAIR"
	DocumentTypeOther                  DocumentType = "OTHER"
	DocumentTypeUnknown                DocumentType = "UNKNOWN"
)

var documentTypes = set.NewSet(
	DocumentTypeTitle,
	DocumentTypeOffHighwayOnly,
	DocumentTypeSalvageCertificate,
	DocumentTypeCertificateOfAuthority,
	DocumentTypeLegalRestraint,
	DocumentTypeNonTitled,
	DocumentTypeOutOfStateTitle,
	DocumentTypeInsurance,
	DocumentTypeNonRepair,
	DocumentTypeOther,
	DocumentTypeUnknown,
)

func (t *DocumentType) UnmarshalText(text []byte) error {
	value, err := parseEnum("type", documentTypes, text)
	if err != nil {
		return err
	}
	*t = value
	return nil
}

type BondedTitleType string

const (
	BondedTitleTypeNone           BondedTitleType = "NONE"
	BondedTitleTypeBonded         BondedTitleType = "BONDED"
	BondedTitleTypeRemovalPending BondedTitleType = "REMOVAL_PENDING"
	BondedTitleTypeSuspended      BondedTitleType = "SUSPENDED"
)

var bondedTitleTypes = set.NewSet(
	BondedTitleTypeNone,
	BondedTitleTypeBonded,
	BondedTitleTypeRemovalPending,
	BondedTitleTypeSuspended,
)

func (t *BondedTitleType) UnmarshalText(text []byte) error {
	value, err := parseEnum("bondedTitleType", bondedTitleTypes, text)
	if err != nil {
		return err
	}
	*t = value
	return nil
}

// OwnerEvidenceType identifies the negotiable evidence that proves ownership of a vehicle.
type OwnerEvidenceType string

const (
	OwnerEvidenceTypeStateTitle               OwnerEvidenceType = "STATE_TITLE"
	OwnerEvidenceTypeSalvageCert              OwnerEvidenceType = "SALVAGE_CERT"
	OwnerEvidenceTypeOtherStateTitle          OwnerEvidenceType = "OTHER_STATE_TITLE"
	OwnerEvidenceTypeOtherStateSalvageCert    OwnerEvidenceType = "OTHER_STATE_SALVAGE_CERT"
	OwnerEvidenceTypeBillOfSale               OwnerEvidenceType = "BILL_OF_SALE"
	OwnerEvidenceTypeManufacturerCertOfOrigin OwnerEvidenceType = "MANUFACTURER_CERT_OF_ORIGIN"
	OwnerEvidenceTypeFederalCert              OwnerEvidenceType = "FEDERAL_CERT"
	OwnerEvidenceTypeForeignEvidence          OwnerEvidenceType = "FOREIGN_EVIDENCE"
	OwnerEvidenceTypeCourtOrder               OwnerEvidenceType = "COURT_ORDER"
	OwnerEvidenceTypeTitleHearing             OwnerEvidenceType = "TITLE_HEARING"
	OwnerEvidenceTypeCertOfAuthority          OwnerEvidenceType = "CERT_OF_AUTHORITY"
	OwnerEvidenceTypeCertifiedCopyOfTitle     OwnerEvidenceType = "CERTIFIED_COPY_OF_TITLE"
	OwnerEvidenceTypeBondedTitle              OwnerEvidenceType = "BONDED_TITLE"
	OwnerEvidenceTypeHeirship                 OwnerEvidenceType = "HEIRSHIP"
	OwnerEvidenceTypeAuctionReceipt           OwnerEvidenceType = "AUCTION_RECEIPT"
	OwnerEvidenceTypeStorageLien              OwnerEvidenceType = "STORAGE_LIEN"
	OwnerEvidenceTypeMechanicLien             OwnerEvidenceType = "MECHANIC_LIEN"
	OwnerEvidenceTypeMilitaryRegistration     OwnerEvidenceType = "MILITARY_REGISTRATION"
	OwnerEvidenceTypeNone                     OwnerEvidenceType = "NONE"
	OwnerEvidenceTypeRepossession             OwnerEvidenceType = "REPOSSESSION"
	OwnerEvidenceTypeOther                    OwnerEvidenceType = "OTHER"
	OwnerEvidenceTypeNonRepairCert            OwnerEvidenceType = "NON_REPAIR_CERT"
	OwnerEvidenceTypeOtherStateNonRepair      OwnerEvidenceType = "OTHER_STATE_NON_REPAIR"
	OwnerEvidenceTypeNuisanceAbatement        OwnerEvidenceType = "NUISANCE_ABATEMENT"
	OwnerEvidenceTypeTexasETitle              OwnerEvidenceType = "TEXAS_ETITLE"
	OwnerEvidenceTypeFormVTR331Ins            OwnerEvidenceType = "FORM_VTR_331_INS"
)

var ownerEvidenceTypes = set.NewSet(
	OwnerEvidenceTypeStateTitle,
	OwnerEvidenceTypeSalvageCert,
	OwnerEvidenceTypeOtherStateTitle,
	OwnerEvidenceTypeOtherStateSalvageCert,
	OwnerEvidenceTypeBillOfSale,
	OwnerEvidenceTypeManufacturerCertOfOrigin,
	OwnerEvidenceTypeFederalCert,
	OwnerEvidenceTypeForeignEvidence,
	OwnerEvidenceTypeCourtOrder,
	OwnerEvidenceTypeTitleHearing,
	OwnerEvidenceTypeCertOfAuthority,
	OwnerEvidenceTypeCertifiedCopyOfTitle,
	OwnerEvidenceTypeBondedTitle,
	OwnerEvidenceTypeHeirship,
	OwnerEvidenceTypeAuctionReceipt,
	OwnerEvidenceTypeStorageLien,
	OwnerEvidenceTypeMechanicLien,
	OwnerEvidenceTypeMilitaryRegistration,
	OwnerEvidenceTypeNone,
	OwnerEvidenceTypeRepossession,
	OwnerEvidenceTypeOther,
	OwnerEvidenceTypeNonRepairCert,
	OwnerEvidenceTypeOtherStateNonRepair,
	OwnerEvidenceTypeNuisanceAbatement,
	OwnerEvidenceTypeTexasETitle,
	OwnerEvidenceTypeFormVTR331Ins,
)

func (t *OwnerEvidenceType) UnmarshalText(text []byte) error {
	value, err := parseEnum("ownerEvidenceType", ownerEvidenceTypes, text)
	if err != nil {
		return err
	}
	*t = value
	return nil
}

type VehicleClass string

const (
	VehicleClassCar         VehicleClass = "CAR"
	VehicleClassMPV         VehicleClass = "MPV"
	VehicleClassTruck       VehicleClass = "TRUCK"
	VehicleClassBus         VehicleClass = "BUS"
	VehicleClassMotorcycle  VehicleClass = "MOTORCYCLE"
	VehicleClassMoped       VehicleClass = "MOPED"
	VehicleClassTrailer     VehicleClass = "TRAILER"
	VehicleClassLowSpeed    VehicleClass = "LOW_SPEED"
	VehicleClassPoleTrailer VehicleClass = "POLE_TRAILER"
	VehicleClassOther       VehicleClass = "OTHER"
	VehicleClassUnknown     VehicleClass = "UNKNOWN"
)

var vehicleClasses = set.NewSet(
	VehicleClassCar,
	VehicleClassMPV,
	VehicleClassTruck,
	VehicleClassBus,
	VehicleClassMotorcycle,
	VehicleClassMoped,
	VehicleClassTrailer,
	VehicleClassLowSpeed,
	VehicleClassPoleTrailer,
	VehicleClassOther,
	VehicleClassUnknown,
)

func (c *VehicleClass) UnmarshalText(text []byte) error {
	value, err := parseEnum("vehicleClass", vehicleClasses, text)
	if err != nil {
		return err
	}
	*c = value
	return nil
}

// FuelType and TrailerType are state-reported codes with no closed value list.
type (
	FuelType    string
	TrailerType string
)

// parseEnum accepts known names regardless of letter case.
func parseEnum[T ~string](field string, valid set.Set[T], text []byte) (T, error) {
	value := T(cases.Upper(language.Und).String(strings.TrimSpace(string(text))))
	if !valid.Contains(value) {
		return "", &FormatError{Field: field, Reason: fmt.Sprintf("unknown value %q", string(text))}
	}
	return value, nil
}
