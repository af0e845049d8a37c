// Package pricing turns a kit, a night count and an add-on selection into
// a price breakdown, and holds the loyalty discount rule applied at
// checkout.  Everything here is pure.
package pricing

import "github.com/iliyamo/kit-rental/internal/model"

// AddOnLookup resolves add-on reference data by ID.
type AddOnLookup interface {
	AddOn(id string) (model.AddOn, bool)
}

// Calculator prices kit bookings against a fixed add-on catalog.
type Calculator struct {
	addOns AddOnLookup
}

// NewCalculator returns a Calculator resolving add-ons through lookup.
// A nil lookup prices every add-on selection at zero.
func NewCalculator(lookup AddOnLookup) *Calculator {
	return &Calculator{addOns: lookup}
}

// Calculate returns the breakdown for renting a kit priced pricePerNight
// for the given nights with the selected add-ons.  No discount is
// applied; see WithDiscount.
//
// Zero or negative nights yield an all-zero breakdown.  Per-night add-ons
// are charged unit price × nights as soon as their quantity is positive;
// the quantity itself does not multiply.  Unknown add-on IDs are skipped.
func (c *Calculator) Calculate(pricePerNight model.Money, nights int, selection model.AddOnSelection) model.PriceBreakdown {
	if nights <= 0 {
		return model.PriceBreakdown{}
	}
	b := model.PriceBreakdown{
		Nights:      nights,
		KitSubtotal: pricePerNight.Mul(int64(nights)),
	}
	for id, qty := range selection {
		b.AddOnSubtotal = b.AddOnSubtotal.Add(c.addOnCharge(id, qty, nights))
	}
	b.Total = b.KitSubtotal.Add(b.AddOnSubtotal).ClampZero()
	return b
}

// Lines itemizes the add-on part of a selection, skipping unknown IDs and
// non-positive quantities.  The sum of the line amounts always equals the
// AddOnSubtotal returned by Calculate for the same inputs.
func (c *Calculator) Lines(nights int, selection model.AddOnSelection) []Line {
	if nights <= 0 || c.addOns == nil {
		return nil
	}
	var lines []Line
	for id, qty := range selection {
		a, ok := c.addOns.AddOn(id)
		if !ok || qty <= 0 {
			continue
		}
		lines = append(lines, Line{AddOn: a, Quantity: qty, Amount: c.addOnCharge(id, qty, nights)})
	}
	return lines
}

// Line is a single priced add-on.
type Line struct {
	AddOn    model.AddOn `json:"add_on"`
	Quantity int         `json:"quantity"`
	Amount   model.Money `json:"amount"`
}

func (c *Calculator) addOnCharge(id string, qty, nights int) model.Money {
	if qty <= 0 || c.addOns == nil {
		return 0
	}
	a, ok := c.addOns.AddOn(id)
	if !ok {
		return 0
	}
	if a.PriceType == model.PerNight {
		return a.Price.Mul(int64(nights))
	}
	return a.Price.Mul(int64(qty))
}

// WithDiscount returns b with the discount recorded and the total
// recomputed as max(0, kit + add-ons − discount).
func WithDiscount(b model.PriceBreakdown, discount model.Money) model.PriceBreakdown {
	if b.Nights <= 0 {
		return model.PriceBreakdown{}
	}
	b.Discount = discount
	b.Total = b.KitSubtotal.Add(b.AddOnSubtotal).Sub(discount).ClampZero()
	return b
}
