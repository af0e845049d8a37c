// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into customer updates.
package queue

// NotificationQueue is the durable queue booking updates travel on.
const NotificationQueue = "booking.notifications"

// BookingNotificationEvent is published when a booking whose owner opted
// into WhatsApp updates is created or changes status.  It carries
// everything the consumer needs to compose the message without querying
// the primary store.
type BookingNotificationEvent struct {
	Event          string `json:"event"`
	BookingID      string `json:"booking_id"`
	UserEmail      string `json:"user_email"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	KitName        string `json:"kit_name"`
	StartDate      string `json:"start_date"`
	Nights         int    `json:"nights"`
	TotalPaise     int64  `json:"total_paise"`
	TotalLabel     string `json:"total_label"`
	Status         string `json:"status"`
	StatusLabel    string `json:"status_label"`
	PreviousStatus string `json:"previous_status,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
