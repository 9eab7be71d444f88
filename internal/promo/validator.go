package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Reason tags why a promo code was not applied. The validator never decides
// whether a reason is fatal; each call site maps reasons to its own policy
// (cart calculation ignores them, the apply-promo endpoint rejects them).
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNotFound      Reason = "not_found"
	ReasonInactive      Reason = "inactive"
	ReasonNotStarted    Reason = "not_started"
	ReasonExpired       Reason = "expired"
	ReasonUsageLimit    Reason = "usage_limit_reached"
	ReasonMinimumOrder  Reason = "minimum_order_not_met"
	ReasonNotApplicable Reason = "not_applicable_to_cart"
)

// Resolution is the outcome of validating a promo code against a subtotal.
// Promo is nil unless the code row was found.
type Resolution struct {
	Promo  *domain.PromoCode
	Reason Reason
}

// Applied reports whether the code passed every validation check.
func (r Resolution) Applied() bool {
	return r.Reason == ReasonNone
}

type Validator struct {
	repo Repository
	now  func() time.Time
}

func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Resolve looks up a promo code and runs the validation checks in order:
// existence, active flag, start date, expiry, usage limit, minimum order
// amount. The first failing check wins.
func (v *Validator) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (Resolution, error) {
	p, err := v.repo.GetByCode(ctx, code)
	if errors.Is(err, ErrCodeNotFound) {
		return Resolution{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve promo code: %w", err)
	}

	now := v.now()
	switch {
	case !p.Active:
		return Resolution{Promo: p, Reason: ReasonInactive}, nil
	case p.StartsAt != nil && now.Before(*p.StartsAt):
		return Resolution{Promo: p, Reason: ReasonNotStarted}, nil
	case p.ExpiresAt != nil && now.After(*p.ExpiresAt):
		return Resolution{Promo: p, Reason: ReasonExpired}, nil
	case p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit:
		return Resolution{Promo: p, Reason: ReasonUsageLimit}, nil
	case p.MinimumOrderAmount != nil && subtotal.LessThan(*p.MinimumOrderAmount):
		return Resolution{Promo: p, Reason: ReasonMinimumOrder}, nil
	}

	return Resolution{Promo: p}, nil
}
