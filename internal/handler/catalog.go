package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/catalog"
	"github.com/iliyamo/kit-rental/internal/daterange"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/payment"
	"github.com/iliyamo/kit-rental/internal/service"
)

// CatalogHandler serves the public catalog and stateless quotes.
type CatalogHandler struct {
	Catalog  *catalog.Catalog
	Checkout *service.CheckoutService
}

// NewCatalogHandler wires a CatalogHandler.
func NewCatalogHandler(cat *catalog.Catalog, checkout *service.CheckoutService) *CatalogHandler {
	return &CatalogHandler{Catalog: cat, Checkout: checkout}
}

// selectionReq is the product page payload used by both quotes and drafts.
type selectionReq struct {
	KitID     string               `json:"kit_id"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	AddOns    model.AddOnSelection `json:"selected_add_ons"`
}

// toInput parses the calendar days.  Blank days stay zero and are
// rejected by the service with a field error.
func (r selectionReq) toInput(checkout *service.CheckoutService) (service.SelectionInput, error) {
	in := service.SelectionInput{KitID: r.KitID, AddOns: r.AddOns}
	v := &service.ValidationError{FieldErrors: map[string]string{}}
	if r.StartDate != "" {
		d, err := daterange.ParseDay(r.StartDate, checkout.Location())
		if err != nil {
			v.FieldErrors["start_date"] = "use YYYY-MM-DD"
		}
		in.StartDate = d
	}
	if r.EndDate != "" {
		d, err := daterange.ParseDay(r.EndDate, checkout.Location())
		if err != nil {
			v.FieldErrors["end_date"] = "use YYYY-MM-DD"
		}
		in.EndDate = d
	}
	if v.HasErrors() {
		return service.SelectionInput{}, v
	}
	return in, nil
}

// ListKits handles GET /v1/kits[?activity=Camping].
func (h *CatalogHandler) ListKits(c echo.Context) error {
	activity, err := catalog.ParseActivity(c.QueryParam("activity"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown activity type"})
	}
	kits, err := h.Catalog.ListKits(c.Request().Context(), activity)
	if err != nil {
		return respondError(c, err, "list kits failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"kits": kits})
}

// GetKit handles GET /v1/kits/:id.
func (h *CatalogHandler) GetKit(c echo.Context) error {
	kit, err := h.Catalog.GetKit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "load kit failed")
	}
	return c.JSON(http.StatusOK, kit)
}

// ListAddOns handles GET /v1/addons.
func (h *CatalogHandler) ListAddOns(c echo.Context) error {
	addOns, err := h.Catalog.ListAddOns(c.Request().Context())
	if err != nil {
		return respondError(c, err, "list add-ons failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"add_ons": addOns})
}

// ListBanks handles GET /v1/banks.
func (h *CatalogHandler) ListBanks(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"banks": payment.Banks})
}

// Quote handles POST /v1/quote: price a selection without saving it.
func (h *CatalogHandler) Quote(c echo.Context) error {
	var req selectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := req.toInput(h.Checkout)
	if err != nil {
		return respondError(c, err, "quote failed")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	q, err := h.Checkout.Quote(ctx, in)
	if err != nil {
		return respondError(c, err, "quote failed")
	}
	return c.JSON(http.StatusOK, q)
}
