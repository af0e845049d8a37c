package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/middleware"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/payment"
	"github.com/iliyamo/kit-rental/internal/service"
)

// paymentTimeout covers the provider's simulated latency.
const paymentTimeout = 30 * time.Second

// CheckoutHandler serves the signed-in part of the booking flow.  All
// methods assume JWTAuth and Session ran first.
type CheckoutHandler struct {
	Service  *service.CheckoutService
	Bookings *booking.Manager
}

// NewCheckoutHandler wires a CheckoutHandler.
func NewCheckoutHandler(checkout *service.CheckoutService, bookings *booking.Manager) *CheckoutHandler {
	return &CheckoutHandler{Service: checkout, Bookings: bookings}
}

type checkoutReq struct {
	FullName        string               `json:"full_name"`
	Phone           string               `json:"phone"`
	Address         string               `json:"address"`
	DeliveryMethod  model.DeliveryMethod `json:"delivery_method"`
	RedeemPoints    bool                 `json:"redeem_points"`
	WhatsAppUpdates *bool                `json:"whatsapp_updates"`
}

type bankReq struct {
	Bank string `json:"bank"`
}

type bankConfirmReq struct {
	Approve bool `json:"approve"`
}

// Checkout handles POST /v1/checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Service.Checkout(ctx, middleware.SessionID(c), middleware.UserEmail(c), service.CheckoutInput{
		Delivery: model.DeliveryDetails{
			FullName: req.FullName,
			Phone:    req.Phone,
			Address:  req.Address,
			Method:   req.DeliveryMethod,
		},
		RedeemPoints:    req.RedeemPoints,
		WhatsAppUpdates: req.WhatsAppUpdates,
	})
	if err != nil {
		return respondError(c, err, "checkout failed")
	}
	return c.JSON(http.StatusOK, viewDraft(d))
}

// Pay handles POST /v1/payments for card and UPI.  A decline answers 402
// and keeps the draft so the customer can try again.
func (h *CheckoutHandler) Pay(c echo.Context) error {
	var req payment.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), paymentTimeout)
	defer cancel()

	conf, err := h.Service.Pay(ctx, middleware.SessionID(c), middleware.UserEmail(c), req)
	if err != nil {
		return respondError(c, err, "payment failed")
	}
	return c.JSON(http.StatusCreated, conf)
}

// BeginBank handles POST /v1/payments/bank: remember the chosen bank and
// send the customer to its approval page.
func (h *CheckoutHandler) BeginBank(c echo.Context) error {
	var req bankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Service.BeginBankRedirect(ctx, middleware.SessionID(c), req.Bank)
	if err != nil {
		return respondError(c, err, "bank redirect failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"draft":    viewDraft(d),
		"redirect": "/payments/bank",
	})
}

// ConfirmBank handles POST /v1/payments/bank/confirm with the customer's
// approve or decline.
func (h *CheckoutHandler) ConfirmBank(c echo.Context) error {
	var req bankConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), paymentTimeout)
	defer cancel()

	conf, err := h.Service.CompleteBankPayment(ctx, middleware.SessionID(c), middleware.UserEmail(c), req.Approve)
	if err != nil {
		return respondError(c, err, "bank payment failed")
	}
	return c.JSON(http.StatusCreated, conf)
}

// Manual handles POST /v1/bookings/manual: place a Pending booking to be
// paid through an offline link.
func (h *CheckoutHandler) Manual(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	conf, err := h.Service.PlaceManualBooking(ctx, middleware.SessionID(c), middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, "booking failed")
	}
	return c.JSON(http.StatusCreated, conf)
}

// MyBookings handles GET /v1/my-bookings, newest first.
func (h *CheckoutHandler) MyBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Bookings.ListForUser(ctx, middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, "list bookings failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": viewBookings(list)})
}
