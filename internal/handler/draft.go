package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/daterange"
	"github.com/iliyamo/kit-rental/internal/middleware"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/service"
)

// DraftHandler manages the session's booking in progress.
type DraftHandler struct {
	Checkout *service.CheckoutService
}

// NewDraftHandler wires a DraftHandler.
func NewDraftHandler(checkout *service.CheckoutService) *DraftHandler {
	return &DraftHandler{Checkout: checkout}
}

type draftView struct {
	model.DraftBooking
	StartDay        string `json:"start_day"`
	EndDay          string `json:"end_day"`
	FinalPriceLabel string `json:"final_price_label"`
}

func viewDraft(d model.DraftBooking) draftView {
	return draftView{
		DraftBooking:    d,
		StartDay:        d.StartDate.Format(daterange.DayLayout),
		EndDay:          d.EndDate.Format(daterange.DayLayout),
		FinalPriceLabel: d.FinalPrice.String(),
	}
}

func sessionOrReject(c echo.Context) (string, bool) {
	id := middleware.SessionID(c)
	return id, id != ""
}

// Put handles PUT /v1/draft: select a kit, dates and add-ons, replacing
// any earlier draft.
func (h *DraftHandler) Put(c echo.Context) error {
	sid, ok := sessionOrReject(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session"})
	}
	var req selectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := req.toInput(h.Checkout)
	if err != nil {
		return respondError(c, err, "save draft failed")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Checkout.SelectKit(ctx, sid, in)
	if err != nil {
		return respondError(c, err, "save draft failed")
	}
	return c.JSON(http.StatusOK, viewDraft(d))
}

// Get handles GET /v1/draft.
func (h *DraftHandler) Get(c echo.Context) error {
	sid, ok := sessionOrReject(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Checkout.Draft(ctx, sid)
	if err != nil {
		return respondError(c, err, "load draft failed")
	}
	return c.JSON(http.StatusOK, viewDraft(d))
}

// Delete handles DELETE /v1/draft.
func (h *DraftHandler) Delete(c echo.Context) error {
	sid, ok := sessionOrReject(c)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Checkout.DiscardDraft(ctx, sid); err != nil {
		return respondError(c, err, "discard draft failed")
	}
	return c.NoContent(http.StatusNoContent)
}
