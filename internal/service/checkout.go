package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/daterange"
	"github.com/iliyamo/kit-rental/internal/logging"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/payment"
	"github.com/iliyamo/kit-rental/internal/pricing"
	"github.com/iliyamo/kit-rental/internal/session"
)

// KitCatalog is the reference data the checkout flow prices against.
type KitCatalog interface {
	GetKit(ctx context.Context, id string) (model.Kit, error)
	AddOn(id string) (model.AddOn, bool)
}

// BookingCreator persists finished bookings.
type BookingCreator interface {
	Create(ctx context.Context, d booking.Details, status model.BookingStatus) (string, error)
}

// SelectionInput is what the product page submits.
type SelectionInput struct {
	KitID     string
	StartDate time.Time
	EndDate   time.Time
	AddOns    model.AddOnSelection
}

// CheckoutInput is what the checkout page submits.  A nil WhatsAppUpdates
// keeps the draft's current preference.
type CheckoutInput struct {
	Delivery        model.DeliveryDetails
	RedeemPoints    bool
	WhatsAppUpdates *bool
}

// Quote is a stateless price for a prospective selection.
type Quote struct {
	Kit       model.Kit            `json:"kit"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Price     model.PriceBreakdown `json:"price"`
	Lines     []pricing.Line       `json:"add_on_lines"`
}

// Confirmation is returned once a booking exists.
type Confirmation struct {
	BookingID        string              `json:"booking_id"`
	Status           model.BookingStatus `json:"status"`
	StatusLabel      string              `json:"status_label"`
	Kit              model.Kit           `json:"kit"`
	StartDate        string              `json:"start_date"`
	Nights           int                 `json:"nights"`
	TotalPrice       model.Money         `json:"total_price"`
	TotalLabel       string              `json:"total_label"`
	PaymentReference string              `json:"payment_reference,omitempty"`
}

// CheckoutDeps wires a CheckoutService.
type CheckoutDeps struct {
	Catalog  KitCatalog
	Drafts   session.Store
	Bookings BookingCreator
	Users    UserRepository
	Gateway  payment.Gateway
	Loyalty  pricing.LoyaltyRule
	Now      func() time.Time
	Location *time.Location
	Logger   *logrus.Logger
}

// CheckoutService drives the product → checkout → payment → confirmation
// flow over a session-scoped draft.
type CheckoutService struct {
	catalog  KitCatalog
	calc     *pricing.Calculator
	drafts   session.Store
	bookings BookingCreator
	users    UserRepository
	gateway  payment.Gateway
	loyalty  pricing.LoyaltyRule
	now      func() time.Time
	loc      *time.Location
	logger   *logrus.Logger
}

// NewCheckoutService returns a CheckoutService.  A nil Now means
// time.Now and a nil Location means time.Local.
func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	return &CheckoutService{
		catalog:  d.Catalog,
		calc:     pricing.NewCalculator(d.Catalog),
		drafts:   d.Drafts,
		bookings: d.Bookings,
		users:    d.Users,
		gateway:  d.Gateway,
		loyalty:  d.Loyalty,
		now:      d.Now,
		loc:      d.Location,
		logger:   logging.OrDiscard(d.Logger),
	}
}

// Location is the zone calendar days are interpreted in.
func (s *CheckoutService) Location() *time.Location { return s.loc }

// LoyaltyRule exposes the configured discount rule.
func (s *CheckoutService) LoyaltyRule() pricing.LoyaltyRule { return s.loyalty }

func (s *CheckoutService) log(op, sessionID string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{"component": "checkout", "operation": op, "session": sessionID})
}

// Quote prices a selection without touching the session.
func (s *CheckoutService) Quote(ctx context.Context, in SelectionInput) (Quote, error) {
	kit, rng, sel, err := s.resolveSelection(ctx, in)
	if err != nil {
		return Quote{}, err
	}
	price := s.calc.Calculate(kit.PricePerNight, rng.Nights(), sel)
	return Quote{
		Kit:       kit,
		StartDate: rng.Start.Format(daterange.DayLayout),
		EndDate:   rng.End.Format(daterange.DayLayout),
		Price:     price,
		Lines:     s.calc.Lines(rng.Nights(), sel),
	}, nil
}

// SelectKit validates the selection, prices it and stores it as the
// session's draft, replacing any earlier one.
func (s *CheckoutService) SelectKit(ctx context.Context, sessionID string, in SelectionInput) (draft model.DraftBooking, err error) {
	entry := s.log("SelectKit", sessionID).WithField("kit_id", in.KitID)
	defer func() {
		if err != nil {
			entry.WithError(err).WithField("error_kind", ErrorKind(err)).Info("kit selection rejected")
			return
		}
		entry.WithField("nights", draft.Price.Nights).Debug("draft saved")
	}()

	kit, rng, sel, err := s.resolveSelection(ctx, in)
	if err != nil {
		return model.DraftBooking{}, err
	}
	price := s.calc.Calculate(kit.PricePerNight, rng.Nights(), sel)
	draft = model.DraftBooking{
		Stage:           model.StageSelected,
		Kit:             kit,
		StartDate:       rng.Start,
		EndDate:         rng.End,
		AddOns:          sel,
		Price:           price,
		FinalPrice:      price.Total,
		WhatsAppUpdates: true,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return model.DraftBooking{}, err
	}
	return draft, nil
}

// Draft returns the session's draft.
func (s *CheckoutService) Draft(ctx context.Context, sessionID string) (model.DraftBooking, error) {
	d, err := s.drafts.Load(ctx, sessionID)
	if errors.Is(err, session.ErrDraftAbsent) {
		return model.DraftBooking{}, &DraftStateError{Err: err}
	}
	return d, err
}

// DiscardDraft drops the session's draft.  Discarding nothing succeeds.
func (s *CheckoutService) DiscardDraft(ctx context.Context, sessionID string) error {
	return s.drafts.Clear(ctx, sessionID)
}

// Checkout records delivery details and the loyalty choice on the draft
// and fixes the amount to pay.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, email string, in CheckoutInput) (draft model.DraftBooking, err error) {
	entry := s.log("Checkout", sessionID).WithField("user", email)
	defer func() {
		if err != nil {
			entry.WithError(err).WithField("error_kind", ErrorKind(err)).Info("checkout rejected")
			return
		}
		entry.WithFields(logrus.Fields{"final_price": draft.FinalPrice.String(), "redeemed": draft.RedeemPoints}).Info("checkout captured")
	}()

	draft, err = s.loadDraft(ctx, sessionID, model.StageSelected)
	if err != nil {
		return model.DraftBooking{}, err
	}
	delivery, vErr := normalizeDelivery(in.Delivery)
	if vErr.HasErrors() {
		return model.DraftBooking{}, vErr
	}

	balance := 0
	if in.RedeemPoints {
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return model.DraftBooking{}, err
		}
		balance = u.LoyaltyPoints
	}

	price := s.calc.Calculate(draft.Kit.PricePerNight, draft.Price.Nights, draft.AddOns)
	final, applied := s.loyalty.Apply(price.Total, balance, in.RedeemPoints)
	if applied {
		price = pricing.WithDiscount(price, s.loyalty.Discount)
		final = price.Total
	}

	draft.Stage = model.StageCheckedOut
	draft.Price = price
	draft.FinalPrice = final
	draft.Delivery = &delivery
	draft.RedeemPoints = applied
	draft.SelectedBank = ""
	if in.WhatsAppUpdates != nil {
		draft.WhatsAppUpdates = *in.WhatsAppUpdates
	}
	draft.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return model.DraftBooking{}, err
	}
	return draft, nil
}

// Pay charges a card or UPI payment for the checked-out draft.
func (s *CheckoutService) Pay(ctx context.Context, sessionID, email string, req payment.Request) (Confirmation, error) {
	draft, err := s.loadDraft(ctx, sessionID, model.StageCheckedOut)
	if err != nil {
		return Confirmation{}, err
	}
	if req.Method == payment.MethodNetBanking {
		v := &ValidationError{}
		v.add("method", "net banking goes through the bank redirect")
		return Confirmation{}, v
	}
	req.Amount = draft.FinalPrice

	res, err := s.gateway.Charge(ctx, req)
	if err != nil {
		var dErr *payment.DetailsError
		if errors.As(err, &dErr) {
			return Confirmation{}, &ValidationError{FieldErrors: dErr.Fields}
		}
		return Confirmation{}, err
	}
	return s.CompletePayment(ctx, sessionID, email, res)
}

// BeginBankRedirect records the chosen bank and moves the draft to the
// bank approval step.
func (s *CheckoutService) BeginBankRedirect(ctx context.Context, sessionID, bank string) (model.DraftBooking, error) {
	draft, err := s.loadDraft(ctx, sessionID, model.StageCheckedOut)
	if err != nil {
		return model.DraftBooking{}, err
	}
	if !payment.IsKnownBank(bank) {
		v := &ValidationError{}
		v.add("bank", "choose one of the listed banks")
		return model.DraftBooking{}, v
	}
	draft.Stage = model.StageAwaitingBank
	draft.SelectedBank = bank
	draft.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return model.DraftBooking{}, err
	}
	s.log("BeginBankRedirect", sessionID).WithField("bank", bank).Debug("awaiting bank approval")
	return draft, nil
}

// CompleteBankPayment applies the customer's answer on the bank page.
func (s *CheckoutService) CompleteBankPayment(ctx context.Context, sessionID, email string, approve bool) (Confirmation, error) {
	if _, err := s.loadDraft(ctx, sessionID, model.StageAwaitingBank); err != nil {
		return Confirmation{}, err
	}
	return s.CompletePayment(ctx, sessionID, email, payment.BankResult(approve))
}

// PlaceManualBooking books the draft as Pending for the offline
// payment-link flow.
func (s *CheckoutService) PlaceManualBooking(ctx context.Context, sessionID, email string) (Confirmation, error) {
	draft, err := s.loadDraft(ctx, sessionID, model.StageCheckedOut)
	if err != nil {
		return Confirmation{}, err
	}
	return s.finalize(ctx, sessionID, email, draft, model.StatusPending, "")
}

// CompletePayment is where every payment method ends.  A declined result
// leaves the draft in place and returns PaymentFailedError.  An approved
// result creates a Confirmed booking and clears the draft.
func (s *CheckoutService) CompletePayment(ctx context.Context, sessionID, email string, res payment.Result) (Confirmation, error) {
	draft, err := s.loadDraft(ctx, sessionID, model.StageCheckedOut)
	if err != nil {
		return Confirmation{}, err
	}
	if !res.Approved {
		s.log("CompletePayment", sessionID).WithFields(logrus.Fields{
			"user":   email,
			"method": res.Method,
			"reason": res.Reason,
		}).Info("payment declined")
		return Confirmation{}, &PaymentFailedError{Reason: res.Reason}
	}
	return s.finalize(ctx, sessionID, email, draft, model.StatusConfirmed, res.Reference)
}

func (s *CheckoutService) finalize(ctx context.Context, sessionID, email string, draft model.DraftBooking, status model.BookingStatus, reference string) (Confirmation, error) {
	entry := s.log("finalize", sessionID).WithFields(logrus.Fields{"user": email, "status": status})

	id, err := s.bookings.Create(ctx, booking.Details{
		UserEmail:       email,
		Kit:             draft.Kit,
		AddOns:          draft.AddOns,
		StartDate:       draft.StartDate,
		Nights:          draft.Price.Nights,
		TotalPrice:      draft.FinalPrice,
		Delivery:        *draft.Delivery,
		WhatsAppUpdates: draft.WhatsAppUpdates,
	}, status)
	if err != nil {
		entry.WithError(err).Error("create booking failed")
		return Confirmation{}, err
	}
	entry = entry.WithField("booking_id", id)

	if delta := s.loyalty.PointsToSpend(draft.RedeemPoints); delta != 0 {
		if _, err := s.users.AdjustLoyaltyPoints(ctx, email, delta); err != nil {
			entry.WithError(err).Error("loyalty decrement failed")
		}
	}
	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		entry.WithError(err).Warn("clear draft failed")
	}
	entry.Info("booking placed")

	return Confirmation{
		BookingID:        id,
		Status:           status,
		StatusLabel:      status.Label(),
		Kit:              draft.Kit,
		StartDate:        draft.StartDate.Format(daterange.DayLayout),
		Nights:           draft.Price.Nights,
		TotalPrice:       draft.FinalPrice,
		TotalLabel:       draft.FinalPrice.String(),
		PaymentReference: reference,
	}, nil
}

func (s *CheckoutService) loadDraft(ctx context.Context, sessionID string, stage model.DraftStage) (model.DraftBooking, error) {
	d, err := s.drafts.Load(ctx, sessionID)
	if errors.Is(err, session.ErrDraftAbsent) {
		return model.DraftBooking{}, &DraftStateError{Err: err}
	}
	if err != nil {
		return model.DraftBooking{}, err
	}
	if err := d.Require(stage); err != nil {
		return model.DraftBooking{}, &DraftStateError{KitID: d.Kit.ID, Err: err}
	}
	return d, nil
}

func (s *CheckoutService) resolveSelection(ctx context.Context, in SelectionInput) (model.Kit, daterange.Range, model.AddOnSelection, error) {
	kit, err := s.catalog.GetKit(ctx, strings.TrimSpace(in.KitID))
	if err != nil {
		return model.Kit{}, daterange.Range{}, nil, err
	}

	v := &ValidationError{}
	rng := daterange.Range{Start: daterange.Midnight(in.StartDate, s.loc), End: daterange.Midnight(in.EndDate, s.loc)}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		rng = daterange.Range{}
	}
	switch err := daterange.Validate(rng, s.now()); {
	case errors.Is(err, daterange.ErrPastDate):
		v.add("start_date", "check-in cannot be in the past")
	case err != nil:
		v.add("end_date", "check-out must be after check-in")
	}

	// Unknown add-ons price at zero, so they are dropped rather than
	// stored on the draft.
	sel := in.AddOns.Normalized()
	for id := range sel {
		if _, ok := s.catalog.AddOn(id); !ok {
			delete(sel, id)
		}
	}
	if v.HasErrors() {
		return model.Kit{}, daterange.Range{}, nil, v
	}
	return kit, rng, sel, nil
}

func normalizeDelivery(in model.DeliveryDetails) (model.DeliveryDetails, *ValidationError) {
	out := model.DeliveryDetails{
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Method:   in.Method,
	}
	if out.Method == "" {
		out.Method = model.DeliveryHome
	}

	v := &ValidationError{}
	if out.FullName == "" {
		v.add("full_name", "full name is required")
	}
	switch {
	case out.Phone == "":
		v.add("phone", "phone number is required")
	case !isDigits(out.Phone):
		v.add("phone", "phone number must contain digits only")
	case len(out.Phone) > 10:
		v.add("phone", "phone number must be at most 10 digits")
	}
	switch out.Method {
	case model.DeliveryHome:
		if out.Address == "" {
			v.add("address", "address is required for home delivery")
		}
	case model.DeliveryPickup:
	default:
		v.add("delivery_method", "choose delivery or pickup")
	}
	return out, v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
