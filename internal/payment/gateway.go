// Package payment simulates the storefront's payment provider.  Nothing
// here moves money; the gateway validates the instrument, waits like a
// real provider would and answers approved or declined.
package payment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/kit-rental/internal/model"
)

// Method is a payment instrument family.
type Method string

const (
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetBanking Method = "netbanking"
)

// DeclinedByUser is the reason recorded when the customer declines on the
// net banking page.
const DeclinedByUser = "Payment was declined by the user."

// Banks offered for net banking.
var Banks = []string{
	"HDFC Bank",
	"ICICI Bank",
	"State Bank of India",
	"Axis Bank",
	"Kotak Mahindra Bank",
	"Punjab National Bank",
}

// IsKnownBank reports whether name is one of Banks.
func IsKnownBank(name string) bool {
	for _, b := range Banks {
		if b == name {
			return true
		}
	}
	return false
}

// Card holds card details as typed by the customer.  Spaces in the
// number are ignored.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// Request is a single charge attempt.
type Request struct {
	Method Method      `json:"method"`
	Amount model.Money `json:"amount"`
	Card   *Card       `json:"card,omitempty"`
	UPIID  string      `json:"upi_id,omitempty"`
}

// Result is the provider's answer.  A declined payment is a Result with
// Approved false, not an error.
type Result struct {
	Approved  bool   `json:"approved"`
	Method    Method `json:"method"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// DetailsError lists the payment fields that failed validation.
type DetailsError struct {
	Fields map[string]string
}

func (e *DetailsError) Error() string {
	return fmt.Sprintf("invalid payment details (%d fields)", len(e.Fields))
}

// Gateway charges card and UPI payments.
type Gateway interface {
	Charge(ctx context.Context, req Request) (Result, error)
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
	upiRe        = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+$`)
)

// Validate checks a request's instrument details.  It returns nil when
// they are well formed.
func Validate(req Request) *DetailsError {
	fields := map[string]string{}
	switch req.Method {
	case MethodCard:
		if req.Card == nil {
			fields["card"] = "card details are required"
			break
		}
		if !cardNumberRe.MatchString(strings.ReplaceAll(req.Card.Number, " ", "")) {
			fields["card.number"] = "card number must be 16 digits"
		}
		if !expiryRe.MatchString(strings.TrimSpace(req.Card.Expiry)) {
			fields["card.expiry"] = "expiry must be MM/YY"
		}
		if !cvvRe.MatchString(strings.TrimSpace(req.Card.CVV)) {
			fields["card.cvv"] = "CVV must be 3 digits"
		}
	case MethodUPI:
		if !upiRe.MatchString(strings.TrimSpace(req.UPIID)) {
			fields["upi_id"] = "enter a UPI ID like yourname@bank"
		}
	case MethodNetBanking:
		fields["method"] = "net banking goes through the bank redirect"
	default:
		fields["method"] = "payment method must be card or upi"
	}
	if len(fields) == 0 {
		return nil
	}
	return &DetailsError{Fields: fields}
}

// MockGateway approves every well-formed payment after Delay, except
// cards ending in 0000 which are declined.
type MockGateway struct {
	Delay time.Duration
}

// NewMockGateway returns a gateway that takes delay to answer.
func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{Delay: delay}
}

// Charge validates req, waits, and answers.  Cancelling ctx aborts the
// wait and returns ctx.Err().
func (g *MockGateway) Charge(ctx context.Context, req Request) (Result, error) {
	if derr := Validate(req); derr != nil {
		return Result{}, derr
	}
	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if req.Method == MethodCard && strings.HasSuffix(strings.ReplaceAll(req.Card.Number, " ", ""), "0000") {
		return Result{Method: req.Method, Reason: "Card declined by issuer."}, nil
	}
	return Result{Approved: true, Method: req.Method, Reference: NewReference()}, nil
}

// BankResult is the outcome of the net banking approve/decline page.
func BankResult(approve bool) Result {
	if !approve {
		return Result{Method: MethodNetBanking, Reason: DeclinedByUser}
	}
	return Result{Approved: true, Method: MethodNetBanking, Reference: NewReference()}
}

// NewReference returns a provider-style transaction reference.
func NewReference() string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
