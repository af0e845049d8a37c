package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/daterange"
	"github.com/iliyamo/kit-rental/internal/model"
)

// AdminHandler exposes booking administration.  Routes require the ADMIN
// role.
type AdminHandler struct {
	Bookings *booking.Manager
}

// NewAdminHandler wires an AdminHandler.
func NewAdminHandler(bookings *booking.Manager) *AdminHandler {
	return &AdminHandler{Bookings: bookings}
}

type bookingView struct {
	model.Booking
	StartDay    string `json:"start_day"`
	StatusLabel string `json:"status_label"`
	TotalLabel  string `json:"total_label"`
}

func viewBooking(b model.Booking) bookingView {
	return bookingView{
		Booking:     b,
		StartDay:    b.StartDate.Format(daterange.DayLayout),
		StatusLabel: b.Status.Label(),
		TotalLabel:  b.TotalPrice.String(),
	}
}

func viewBookings(list []model.Booking) []bookingView {
	out := make([]bookingView, 0, len(list))
	for _, b := range list {
		out = append(out, viewBooking(b))
	}
	return out
}

// List handles GET /v1/admin/bookings: every booking, newest first.
func (h *AdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return respondError(c, err, "list bookings failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": viewBookings(list), "statuses": model.AllStatuses})
}

// UpdateStatus handles PATCH /v1/admin/bookings/:id/status.  The body
// carries either the status code or its label.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status, err := model.ParseBookingStatus(body.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		return respondError(c, err, "update status failed")
	}
	return c.JSON(http.StatusOK, viewBooking(b))
}
