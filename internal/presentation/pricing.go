package presentation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidDiscount = errors.New("discount must be between 0 and 99 percent")

var hundred = decimal.NewFromInt(100)

func LineTotal(item domain.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func CartTotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// FormatPrice renders an amount with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// OriginalPrice reverses a percentage discount: p * 100 / (100 - d), rounded
// to whole units.
func OriginalPrice(price float64, discount int) (decimal.Decimal, error) {
	if discount < 0 || discount >= 100 {
		return decimal.Zero, fmt.Errorf("%w: got %d", ErrInvalidDiscount, discount)
	}
	p := decimal.NewFromFloat(price)
	return p.Mul(hundred).Div(hundred.Sub(decimal.NewFromInt(int64(discount)))).Round(0), nil
}

// CouponLabel renders the headline of a coupon card.
func CouponLabel(o domain.Offer) string {
	amount := decimal.NewFromFloat(o.Discount).String()
	if o.Kind() == domain.OfferFlat {
		return "₹" + amount + " OFF"
	}
	return amount + "% OFF"
}

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortByPrice returns a sorted copy; SortNone keeps the input order.
func SortByPrice(products []domain.Product, order SortOrder) []domain.Product {
	out := append([]domain.Product(nil), products...)
	switch order {
	case SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

// OnSale keeps products carrying an explicit discount or mentioning an offer
// in their description.
func OnSale(products []domain.Product) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.Discount != nil || strings.Contains(strings.ToLower(p.Description), "offer") {
			out = append(out, p)
		}
	}
	return out
}
