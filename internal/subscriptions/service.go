// Package subscriptions sells the configured gateway plans and reports the
// state of a user's recurring plan.
package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/checkout"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/events"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/gateway"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
)

const (
	PurchaseSignInMessage    = "please sign in to make a purchase"
	StatusSignInMessage      = "please sign in to view your subscription"
	PlanNotFoundMessage      = "plan not found"
	AlreadySubscribedMessage = "you already have an active subscription"

	kindPlan            = "plan"
	opPriceCheckout     = "create_price_checkout"
	defaultRefreshAfter = time.Minute

	metadataUserID = "user_id"
	metadataPlanID = "plan_id"
)

type repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	StartPending(ctx context.Context, sub *models.Subscription) error
	Save(ctx context.Context, sub *models.Subscription) error
}

// Service sells plans and reports subscription state.
type Service interface {
	Plans() []PlanDTO
	Purchase(ctx context.Context, sess *auth.Session, priceID string) (*gateway.CheckoutSession, error)
	Current(ctx context.Context, sess *auth.Session) (*StatusDTO, error)
}

// ServiceParams wires the plan service. Source, Guard, Events, Logger and
// Metrics are optional; without a Source the stored row is reported as is.
type ServiceParams struct {
	Repo         repository
	Gateway      gateway.Gateway
	Source       Source
	Guard        checkout.Guard
	Events       events.Publisher
	Plans        config.PlanList
	Checkout     config.CheckoutConfig
	RefreshAfter time.Duration
	Logger       *logger.Logger
	Metrics      *metrics.Storefront
}

type service struct {
	repo         repository
	gateway      gateway.Gateway
	source       Source
	guard        checkout.Guard
	events       events.Publisher
	plans        config.PlanList
	cfg          config.CheckoutConfig
	refreshAfter time.Duration
	logg         *logger.Logger
	metrics      *metrics.Storefront
	now          func() time.Time
}

// NewService builds the plan service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("subscriptions repository required")
	}
	if params.Gateway == nil {
		return nil, errors.New("payment gateway required")
	}
	if strings.TrimSpace(params.Checkout.BaseURL) == "" {
		return nil, errors.New("checkout base url required")
	}
	guard := params.Guard
	if guard == nil {
		guard = checkout.NewMemoryGuard()
	}
	publisher := params.Events
	if publisher == nil {
		publisher = events.Noop{}
	}
	refreshAfter := params.RefreshAfter
	if refreshAfter <= 0 {
		refreshAfter = defaultRefreshAfter
	}
	return &service{
		repo:         params.Repo,
		gateway:      params.Gateway,
		source:       params.Source,
		guard:        guard,
		events:       publisher,
		plans:        params.Plans,
		cfg:          params.Checkout,
		refreshAfter: refreshAfter,
		logg:         params.Logger,
		metrics:      params.Metrics,
		now:          time.Now,
	}, nil
}

func (s *service) Plans() []PlanDTO {
	out := make([]PlanDTO, 0, len(s.plans))
	for _, plan := range s.plans {
		out = append(out, toPlanDTO(plan))
	}
	return out
}

// Purchase opens a hosted checkout for one configured price. A subscription
// plan is refused while an entitling subscription exists.
func (s *service) Purchase(ctx context.Context, sess *auth.Session, priceID string) (result *gateway.CheckoutSession, err error) {
	defer func() { s.metrics.IncCheckout(kindPlan, err) }()

	if err := auth.RequireSession(sess, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, PurchaseSignInMessage)
	}
	plan, ok := s.plans.ByPriceID(strings.TrimSpace(priceID))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, PlanNotFoundMessage).
			WithDetails(map[string]string{"price_id": priceID})
	}
	if plan.Recurring() {
		current, err := s.repo.FindByUser(ctx, sess.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load subscription")
		case IsActiveStatus(current.Status):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, AlreadySubscribedMessage)
		}
	}

	release, err := s.guard.Acquire(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	metadata := map[string]string{metadataUserID: sess.UserID.String()}
	if plan.ID != "" {
		metadata[metadataPlanID] = plan.ID
	}
	req := gateway.PriceCheckoutRequest{
		PriceID:       plan.PriceID,
		Mode:          plan.Mode,
		CustomerEmail: sess.Email,
		SuccessURL:    s.cfg.SuccessURL(),
		CancelURL:     s.cfg.HomeURL(),
		Metadata:      metadata,
	}

	started := s.now()
	result, err = s.gateway.CreatePriceCheckout(ctx, sess.AccessToken, req)
	s.metrics.ObserveGateway(s.gateway.Driver(), opPriceCheckout, s.now().Sub(started))
	if err != nil {
		s.logError(ctx, "subscriptions.checkout_failed", err)
		return nil, err
	}
	if result == nil || result.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "payment gateway returned no redirect url")
	}

	ctx = s.withFields(ctx, map[string]any{"checkout_session_id": result.ID, "price_id": plan.PriceID, "mode": plan.Mode})
	if plan.Recurring() {
		s.recordPending(ctx, sess.UserID, plan.PriceID, result.ID)
	}
	s.info(ctx, "subscriptions.checkout_created")
	if err := s.events.Publish(ctx, events.TypePlanCheckoutCreated, sess.UserID, events.PlanCheckoutStarted{
		GatewayID: result.ID,
		Driver:    s.gateway.Driver(),
		PriceID:   plan.PriceID,
		Mode:      plan.Mode,
	}); err != nil {
		s.logWarn(ctx, "subscriptions.event_publish_failed", err)
	}
	return result, nil
}

// recordPending never fails the purchase; the shopper already has a
// payment page to go to.
func (s *service) recordPending(ctx context.Context, userID uuid.UUID, priceID, checkoutSessionID string) {
	sessionID := checkoutSessionID
	row := &models.Subscription{
		UserID:            userID,
		PriceID:           priceID,
		CheckoutSessionID: &sessionID,
		Status:            enums.SubscriptionStatusNotStarted,
	}
	if err := s.repo.StartPending(ctx, row); err != nil {
		s.logError(ctx, "subscriptions.pending_save_failed", err)
	}
}

// Current returns the user's subscription, refreshed from the provider when
// the stored copy is older than the refresh interval.
func (s *service) Current(ctx context.Context, sess *auth.Session) (*StatusDTO, error) {
	if err := auth.RequireSession(sess, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, StatusSignInMessage)
	}
	row, err := s.repo.FindByUser(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ToStatusDTO(nil, s.plans), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load subscription")
	}
	if s.stale(row) {
		s.refresh(ctx, row)
	}
	return ToStatusDTO(row, s.plans), nil
}

func (s *service) stale(row *models.Subscription) bool {
	if s.source == nil || row.CheckoutSessionID == nil || *row.CheckoutSessionID == "" {
		return false
	}
	switch row.Status {
	case enums.SubscriptionStatusCanceled, enums.SubscriptionStatusIncompleteExpired:
		return false
	}
	return row.SyncedAt == nil || s.now().Sub(*row.SyncedAt) >= s.refreshAfter
}

// refresh keeps the stored state when the provider cannot be read.
func (s *service) refresh(ctx context.Context, row *models.Subscription) {
	ctx = s.withFields(ctx, map[string]any{"checkout_session_id": *row.CheckoutSessionID})
	session, err := s.source.CheckoutSession(ctx, *row.CheckoutSessionID)
	if err != nil {
		s.logWarn(ctx, "subscriptions.refresh_failed", err)
		return
	}
	next := *row
	if err := ApplyCheckoutSession(&next, session, s.now()); err != nil {
		s.logWarn(ctx, "subscriptions.refresh_failed", err)
		return
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		s.logWarn(ctx, "subscriptions.refresh_save_failed", err)
	}
	*row = next
}

func (s *service) withFields(ctx context.Context, fields map[string]any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, fields)
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *service) logWarn(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
	}
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}
