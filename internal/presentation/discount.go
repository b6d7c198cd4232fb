package presentation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

// offerMarker matches the discount the admin panel persists inside a product
// description: the literal "| [OFFER:", one or more digits, then "]".
var offerMarker = regexp.MustCompile(`\| \[OFFER:(\d+)\]`)

const markerPrefix = " | [OFFER:"

// ParseDiscount extracts the percentage from a description offer marker.
func ParseDiscount(description string) (int, bool) {
	m := offerMarker.FindStringSubmatch(description)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return pct, true
}

// EffectiveDiscount prefers an explicit discount over the description marker.
func EffectiveDiscount(p domain.Product) (int, bool) {
	if p.Discount != nil {
		return *p.Discount, true
	}
	return ParseDiscount(p.Description)
}

// StripOfferMarker returns the description without its offer marker.
func StripOfferMarker(description string) string {
	before, _, _ := strings.Cut(description, markerPrefix)
	return before
}

// WithOfferMarker replaces any existing marker with one for pct.
func WithOfferMarker(description string, pct int) string {
	return StripOfferMarker(description) + markerPrefix + strconv.Itoa(pct) + "]"
}
