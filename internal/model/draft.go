package model

import (
	"errors"
	"time"
)

// PriceBreakdown is the derived price of a kit booking.  It is computed
// by the pricing package and never stored on its own.
type PriceBreakdown struct {
	Nights        int   `json:"nights"`
	KitSubtotal   Money `json:"kit_subtotal"`
	AddOnSubtotal Money `json:"add_on_subtotal"`
	Discount      Money `json:"discount"`
	Total         Money `json:"total"`
}

// DraftStage tags how far an in-progress booking has travelled through
// the product → checkout → payment steps.
type DraftStage string

const (
	// StageSelected: kit, dates and add-ons chosen on the product page.
	StageSelected DraftStage = "selected"
	// StageCheckedOut: delivery details and discount captured.
	StageCheckedOut DraftStage = "checked_out"
	// StageAwaitingBank: the customer was sent to the net banking page.
	StageAwaitingBank DraftStage = "awaiting_bank"
)

var stageOrder = map[DraftStage]int{
	StageSelected:     1,
	StageCheckedOut:   2,
	StageAwaitingBank: 3,
}

// ErrIncompleteDraft is returned by DraftBooking.Require when a draft is
// missing fields required for the requested step.
var ErrIncompleteDraft = errors.New("incomplete draft booking")

// DraftBooking is the single-slot, session-scoped booking in progress.
// Fields are filled stage by stage; Require checks that everything a
// step needs is present.
type DraftBooking struct {
	Stage           DraftStage       `json:"stage"`
	Kit             Kit              `json:"kit"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	AddOns          AddOnSelection   `json:"selected_add_ons"`
	Price           PriceBreakdown   `json:"price"`
	Delivery        *DeliveryDetails `json:"delivery_details,omitempty"`
	RedeemPoints    bool             `json:"redeem_points"`
	FinalPrice      Money            `json:"final_price"`
	WhatsAppUpdates bool             `json:"whatsapp_updates"`
	SelectedBank    string           `json:"selected_bank,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Require reports ErrIncompleteDraft unless the draft reached at least
// the given stage and carries the fields that stage guarantees.
func (d DraftBooking) Require(stage DraftStage) error {
	have, ok := stageOrder[d.Stage]
	if !ok || have < stageOrder[stage] {
		return ErrIncompleteDraft
	}
	if d.Kit.ID == "" || d.StartDate.IsZero() || d.Price.Nights <= 0 {
		return ErrIncompleteDraft
	}
	if stageOrder[stage] >= stageOrder[StageCheckedOut] {
		if d.Delivery == nil || d.Delivery.FullName == "" || d.Delivery.Phone == "" {
			return ErrIncompleteDraft
		}
	}
	if stage == StageAwaitingBank && d.SelectedBank == "" {
		return ErrIncompleteDraft
	}
	return nil
}
