// Package orders reconciles the shopper's return from the payment page with
// the order the payment pipeline created.
package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

// NotFoundMessage is shown when the confirmation page has nothing to show.
const NotFoundMessage = "order not found"

const defaultMarkTTL = 30 * 24 * time.Hour

// Service exposes order confirmation and history.
type Service interface {
	Confirm(ctx context.Context, sess *auth.Session, checkoutSessionID string) (*OrderDTO, error)
	History(ctx context.Context, sess *auth.Session, params pagination.Params) (*HistoryPage, error)
}

// ServiceParams wires the reconciler. Marks and Logger are optional; without
// Marks every confirmation may settle the cart, still bounded by the order's
// creation time.
type ServiceParams struct {
	Repo    OrderReader
	Carts   cartClearer
	Marks   confirmationMarks
	MarkTTL time.Duration
	Policy  pricing.Policy
	Logger  *logger.Logger
}

type service struct {
	repo    OrderReader
	carts   cartClearer
	marks   confirmationMarks
	markTTL time.Duration
	policy  pricing.Policy
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order reconciler.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.Carts == nil {
		return nil, errors.New("cart registry required")
	}
	policy := params.Policy
	if policy == nil {
		policy = pricing.Zero
	}
	markTTL := params.MarkTTL
	if markTTL <= 0 {
		markTTL = defaultMarkTTL
	}
	return &service{
		repo:    params.Repo,
		carts:   params.Carts,
		marks:   params.Marks,
		markTTL: markTTL,
		policy:  policy,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// Confirm finds the order behind a checkout session. The first confirmation
// of a session removes the cart lines that existed when the order was placed.
// Without a session id the most recent order is shown and the cart is left
// alone.
func (s *service) Confirm(ctx context.Context, sess *auth.Session, checkoutSessionID string) (*OrderDTO, error) {
	if err := auth.RequireSession(sess, s.now()); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	checkoutSessionID = strings.TrimSpace(checkoutSessionID)
	if checkoutSessionID != "" {
		order, err = s.repo.FindBySessionID(ctx, sess.UserID, checkoutSessionID)
	} else {
		order, err = s.repo.FindLatestForUser(ctx, sess.UserID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage).
				WithDetails(map[string]string{"redirect": "/"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load order")
	}

	if checkoutSessionID != "" {
		s.settleCart(ctx, sess, checkoutSessionID, order)
	}

	dto := FromModel(*order, s.policy)
	return &dto, nil
}

// settleCart is best effort; a failure leaves the cart as it was.
func (s *service) settleCart(ctx context.Context, sess *auth.Session, checkoutSessionID string, order *models.Order) {
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String()})
	ctx = s.logg.WithCheckoutSessionID(ctx, checkoutSessionID)

	if s.marks != nil {
		key := s.marks.ConfirmationKey(sess.UserID.String(), checkoutSessionID)
		first, err := s.marks.SetNX(ctx, key, order.ID.String(), s.markTTL)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "orders.confirmation_mark_failed")
		} else if !first {
			return
		}
	}

	if err := s.carts.ClearBefore(ctx, sess, order.CreatedAt); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "orders.cart_clear_failed")
	}
}

// History lists the user's orders newest first.
func (s *service) History(ctx context.Context, sess *auth.Session, params pagination.Params) (*HistoryPage, error) {
	if err := auth.RequireSession(sess, s.now()); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListForUser(ctx, sess.UserID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list orders")
	}
	rows, next := pagination.Split(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, s.policy))
	}
	return &HistoryPage{Orders: out, NextCursor: next}, nil
}
