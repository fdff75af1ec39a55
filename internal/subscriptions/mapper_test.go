package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
)

func TestApplyCheckoutSessionPendingOnlyMarksSync(t *testing.T) {
	row := &models.Subscription{PriceID: "price_pro", Status: enums.SubscriptionStatusNotStarted}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := ApplyCheckoutSession(row, &stripe.CheckoutSession{ID: "cs_1"}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if row.Status != enums.SubscriptionStatusNotStarted || row.SyncedAt == nil || !row.SyncedAt.Equal(now) {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestApplyCheckoutSessionRejectsUnknownStatus(t *testing.T) {
	row := &models.Subscription{Status: enums.SubscriptionStatusNotStarted}
	session := &stripe.CheckoutSession{Subscription: &stripe.Subscription{ID: "sub_1", Status: "mystery"}}

	err := ApplyCheckoutSession(row, session, time.Now())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if row.Status != enums.SubscriptionStatusNotStarted {
		t.Fatalf("status should be left alone")
	}
}

func TestIsActiveStatus(t *testing.T) {
	active := []enums.SubscriptionStatus{enums.SubscriptionStatusActive, enums.SubscriptionStatusTrialing, enums.SubscriptionStatusPastDue}
	for _, status := range active {
		if !IsActiveStatus(status) {
			t.Fatalf("expected %s to be active", status)
		}
	}
	inactive := []enums.SubscriptionStatus{enums.SubscriptionStatusNotStarted, enums.SubscriptionStatusCanceled, enums.SubscriptionStatusUnpaid, enums.SubscriptionStatusPaused}
	for _, status := range inactive {
		if IsActiveStatus(status) {
			t.Fatalf("expected %s to be inactive", status)
		}
	}
}

func TestToStatusDTONamesConfiguredPlan(t *testing.T) {
	last4 := "4242"
	dto := ToStatusDTO(&models.Subscription{
		PriceID:            "price_pro",
		Status:             enums.SubscriptionStatusTrialing,
		PaymentMethodLast4: &last4,
	}, config.PlanList{{PriceID: "price_pro", Name: "Pro"}})

	if dto.PlanName != "Pro" || !dto.Active || dto.PaymentMethodLast4 != "4242" || dto.PaymentMethodBrand != "" {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

type fakeSessionReader struct {
	id     string
	params *stripe.CheckoutSessionParams
}

func (f *fakeSessionReader) GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.id = id
	f.params = params
	return &stripe.CheckoutSession{ID: id}, nil
}

func TestStripeSourceExpandsSubscription(t *testing.T) {
	reader := &fakeSessionReader{}
	ctx := context.Background()

	if _, err := newStripeSource(reader).CheckoutSession(ctx, "cs_1"); err != nil {
		t.Fatalf("read session: %v", err)
	}
	if reader.id != "cs_1" || reader.params.Context != ctx {
		t.Fatalf("unexpected call %q", reader.id)
	}
	expand := map[string]bool{}
	for _, field := range reader.params.Expand {
		expand[*field] = true
	}
	if !expand["subscription"] || !expand["subscription.default_payment_method"] {
		t.Fatalf("unexpected expand list %v", expand)
	}
	if NewStripeSource(nil) != nil {
		t.Fatal("expected nil source without a client")
	}
}
