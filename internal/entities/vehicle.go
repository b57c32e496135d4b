package entities

import "maps"

type Vehicle struct {
	VIN              string       `json:"vin,omitempty"`
	BodyTypeCode     string       `json:"bodyTypeCode,omitempty"`
	VehicleClassCode string       `json:"vehicleClassCode,omitempty"`
	VehicleClass     VehicleClass `json:"vehicleClass,omitempty"`
	Make             string       `json:"make,omitempty"`
	Model            string       `json:"model,omitempty"`
	ModelYear        string       `json:"modelYear,omitempty" validate:"omitempty,yyyy"`
	ColorPrimary     string       `json:"colorPrimary,omitempty"`
	ColorSecondary   string       `json:"colorSecondary,omitempty"`
	VehicleTonnage   string       `json:"vehicleTonnage,omitempty"`
	BodyVIN          string       `json:"bodyVin,omitempty"`
	Length           int          `json:"length,omitempty"`
	EmptyWeight      int          `json:"emptyWeight,omitempty"`
	GrossWeight      int          `json:"grossWeight,omitempty"`
	FuelType         FuelType     `json:"fuelType,omitempty"`
	// FixedEquipment marks permanently mounted equipment covering over 2/3 of the bed.
	FixedEquipment  bool              `json:"fixedEquipment,omitempty"`
	TrailerType     TrailerType       `json:"trailerType,omitempty"`
	OdometerBrand   string            `json:"odometerBrand,omitempty"`
	OdometerReading string            `json:"odometerReading,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

// SetModelYear sets the YYYY model year. An empty value clears it.
func (v *Vehicle) SetModelYear(year string) error {
	if err := checkYear("modelYear", year); err != nil {
		return err
	}
	v.ModelYear = year
	return nil
}

func (v *Vehicle) Clone() *Vehicle {
	if v == nil {
		return nil
	}
	c := *v
	c.Attributes = maps.Clone(v.Attributes)
	return &c
}
