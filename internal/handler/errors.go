package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/catalog"
	"github.com/iliyamo/kit-rental/internal/service"
)

// Messages shown on the login and sign-up pages.
const (
	msgSignUp        = "New user? Please sign up."
	msgWrongPassword = "Incorrect password."
	msgEmailTaken    = "User with this email already exists. Please log in."
)

// requestTimeout bounds storage calls made by a single request.  Payment
// calls get the gateway's own delay on top.
const requestTimeout = 5 * time.Second

// respondError maps service and domain errors to JSON responses.
// Anything unrecognised is a 500 carrying fallback.
func respondError(c echo.Context, err error, fallback string) error {
	var (
		vErr *service.ValidationError
		pErr *service.PaymentFailedError
		dErr *service.DraftStateError
	)
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": vErr.FieldErrors})
	case errors.As(err, &pErr):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": pErr.Reason})
	case errors.As(err, &dErr):
		redirect := "/kits"
		if dErr.KitID != "" {
			redirect = "/kits/" + dErr.KitID
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "no booking in progress for this step", "redirect": redirect})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgSignUp})
	case errors.Is(err, service.ErrIncorrectPassword):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgWrongPassword})
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": msgEmailTaken})
	case errors.Is(err, catalog.ErrKitNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "kit not found"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, booking.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	case errors.Is(err, booking.ErrTransitionNotAllowed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	}
	c.Logger().Errorf("%s: %v", fallback, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
