package entities

type Owner struct {
	RawName           string            `json:"rawName,omitempty"`
	Name              *Name             `json:"name,omitempty"`
	RawAddress        *RawAddress       `json:"rawAddress,omitempty"`
	Address           *Address          `json:"address,omitempty"`
	OwnerEvidenceType OwnerEvidenceType `json:"ownerEvidenceType,omitempty"`
	Country           string            `json:"country,omitempty"`
}

func (o *Owner) Clone() *Owner {
	if o == nil {
		return nil
	}
	c := *o
	c.Name = o.Name.Clone()
	c.RawAddress = o.RawAddress.Clone()
	c.Address = o.Address.Clone()
	return &c
}

// LienHolder is positionally indexed inside its Transaction; the position is part of its address correlation key.
type LienHolder struct {
	ID          string      `json:"id,omitempty"`
	RawName     string      `json:"rawName,omitempty"`
	Name        *Name       `json:"name,omitempty"`
	RawAddress  *RawAddress `json:"rawAddress,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	LienDate    string      `json:"lienDate,omitempty" validate:"omitempty,yyyymmdd"`
	LienCountry string      `json:"lienCountry,omitempty"`
}

// SetLienDate sets the YYYYMMDD lien date. An empty value clears it.
func (l *LienHolder) SetLienDate(date string) error {
	if err := checkDate("lienDate", date); err != nil {
		return err
	}
	l.LienDate = date
	return nil
}

func (l *LienHolder) Clone() *LienHolder {
	if l == nil {
		return nil
	}
	c := *l
	c.Name = l.Name.Clone()
	c.RawAddress = l.RawAddress.Clone()
	c.Address = l.Address.Clone()
	return &c
}
