package domain

type OfferType string

const (
	OfferPercent OfferType = "percent"
	OfferFlat    OfferType = "flat"
)

type Offer struct {
	ID          string    `json:"id,omitempty"`
	Code        string    `json:"code"`
	Discount    float64   `json:"discount"`
	Type        OfferType `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Kind defaults an unset type to percent.
func (o Offer) Kind() OfferType {
	if o.Type == OfferFlat {
		return OfferFlat
	}
	return OfferPercent
}
