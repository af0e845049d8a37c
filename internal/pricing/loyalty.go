package pricing

import "github.com/iliyamo/kit-rental/internal/model"

// LoyaltyRule decides whether a flat discount may be taken off a booking
// total based on the user's point balance.  Threshold and Discount are
// independent settings even though both default to 50.
//
// The rule never changes a balance.  DecrementOnRedeem only tells the
// checkout flow whether to spend PointsCost points after a discounted
// booking is created; it is off by default pending a product decision.
type LoyaltyRule struct {
	Threshold         int
	Discount          model.Money
	DecrementOnRedeem bool
	PointsCost        int
}

// DefaultLoyaltyRule is the storefront's rule: 50 points unlock ₹50 off.
func DefaultLoyaltyRule() LoyaltyRule {
	return LoyaltyRule{Threshold: 50, Discount: model.Rupees(50), PointsCost: 50}
}

// CanRedeem reports whether a balance is high enough for the discount.
func (r LoyaltyRule) CanRedeem(balance int) bool {
	return balance >= r.Threshold
}

// Apply returns the total after the discount and whether the discount
// was taken.  The result never goes below zero.
func (r LoyaltyRule) Apply(total model.Money, balance int, redeem bool) (model.Money, bool) {
	if !redeem || !r.CanRedeem(balance) {
		return total, false
	}
	return total.Sub(r.Discount).ClampZero(), true
}

// PointsToSpend is the balance change the checkout flow applies after a
// redeemed booking: -PointsCost when decrementing is enabled, else 0.
func (r LoyaltyRule) PointsToSpend(applied bool) int {
	if !applied || !r.DecrementOnRedeem {
		return 0
	}
	return -r.PointsCost
}
