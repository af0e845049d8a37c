package model

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusDispatched BookingStatus = "DISPATCHED"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusDispatched, StatusCompleted, StatusCancelled,
}

var statusLabels = map[BookingStatus]string{
	StatusPending:    "Pending Confirmation",
	StatusConfirmed:  "Confirmed",
	StatusDispatched: "Kit Dispatched",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// IsValid reports whether s is one of the five known statuses.
func (s BookingStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the customer-facing text for the status.
func (s BookingStatus) Label() string { return statusLabels[s] }

// IsTerminal reports whether the status normally ends the lifecycle.
// Nothing prevents an administrator from moving a booking out of it.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseBookingStatus accepts either the status code or its label,
// case-insensitively.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	v := strings.TrimSpace(raw)
	for s, label := range statusLabels {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, label) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid booking status: %q", raw)
}

// DeliveryMethod selects home delivery or self pickup.
type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "delivery"
	DeliveryPickup DeliveryMethod = "pickup"
)

// DeliveryDetails holds the contact and delivery info captured at checkout.
type DeliveryDetails struct {
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	Method   DeliveryMethod `json:"delivery_method"`
}

// Booking is the durable record created once per successful checkout.
// Status is the only field changed after creation.
//
// Fields:
//  ID              – generated identifier (e.g. WK-7Q2M9X).
//  UserEmail       – owning user, lowercased.
//  Kit             – frozen copy of the kit at booking time.
//  AddOns          – frozen copy of the add-on selection.
//  StartDate       – first night, local midnight.
//  Nights          – number of nights booked.
//  TotalPrice      – final amount charged, after discounts.
//  Delivery        – delivery details.
//  WhatsAppUpdates – communications preference for status notifications.
//  Status          – lifecycle status.
//  CreatedAt       – creation timestamp (UTC).
type Booking struct {
	ID              string          `json:"booking_id"`
	UserEmail       string          `json:"user_email"`
	Kit             Kit             `json:"kit"`
	AddOns          AddOnSelection  `json:"selected_add_ons"`
	StartDate       time.Time       `json:"date"`
	Nights          int             `json:"nights"`
	TotalPrice      Money           `json:"total_price"`
	Delivery        DeliveryDetails `json:"delivery_details"`
	WhatsAppUpdates bool            `json:"whatsapp_updates"`
	Status          BookingStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
