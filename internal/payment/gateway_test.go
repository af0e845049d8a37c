package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kit-rental/internal/model"
)

func card(number string) *Card {
	return &Card{Number: number, Expiry: "08/31", CVV: "123", Name: "Asha Rao"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		fields []string
	}{
		{"valid card", Request{Method: MethodCard, Card: card("4111 1111 1111 1111")}, nil},
		{"short card", Request{Method: MethodCard, Card: card("4111")}, []string{"card.number"}},
		{"bad expiry and cvv", Request{Method: MethodCard, Card: &Card{Number: "4111111111111111", Expiry: "13/30", CVV: "12"}}, []string{"card.expiry", "card.cvv"}},
		{"missing card", Request{Method: MethodCard}, []string{"card"}},
		{"valid upi", Request{Method: MethodUPI, UPIID: "asha@okhdfc"}, nil},
		{"upi without handle", Request{Method: MethodUPI, UPIID: "asha"}, []string{"upi_id"}},
		{"net banking not charged here", Request{Method: MethodNetBanking}, []string{"method"}},
		{"unknown method", Request{Method: "cash"}, []string{"method"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := Validate(tt.req)
			if tt.fields == nil {
				assert.Nil(t, derr)
				return
			}
			require.NotNil(t, derr)
			for _, f := range tt.fields {
				assert.Contains(t, derr.Fields, f)
			}
			assert.Len(t, derr.Fields, len(tt.fields))
		})
	}
}

func TestMockGatewayApproves(t *testing.T) {
	g := NewMockGateway(0)
	res, err := g.Charge(context.Background(), Request{Method: MethodUPI, UPIID: "asha@okicici", Amount: model.Rupees(4800)})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Regexp(t, `^PAY-[0-9A-F]{12}$`, res.Reference)
}

func TestMockGatewayDeclinesTestCard(t *testing.T) {
	g := NewMockGateway(0)
	res, err := g.Charge(context.Background(), Request{Method: MethodCard, Card: card("4000 1234 5678 0000")})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Reference)
}

func TestMockGatewayRejectsBadDetails(t *testing.T) {
	_, err := NewMockGateway(0).Charge(context.Background(), Request{Method: MethodCard, Card: card("12")})
	var derr *DetailsError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Fields, "card.number")
}

func TestMockGatewayHonoursCancellation(t *testing.T) {
	g := NewMockGateway(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Charge(ctx, Request{Method: MethodUPI, UPIID: "asha@okhdfc"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBankResult(t *testing.T) {
	ok := BankResult(true)
	assert.True(t, ok.Approved)
	assert.Equal(t, MethodNetBanking, ok.Method)

	no := BankResult(false)
	assert.False(t, no.Approved)
	assert.Equal(t, DeclinedByUser, no.Reason)
}

func TestIsKnownBank(t *testing.T) {
	assert.True(t, IsKnownBank("HDFC Bank"))
	assert.False(t, IsKnownBank("Bank of Nowhere"))
}
