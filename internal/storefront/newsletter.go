package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

// SubscribeNewsletter acknowledges a newsletter signup. Nothing is stored or
// sent; the address is only validated and the session rate limited when a
// limiter is configured. Limiter failures let the signup through.
func (d *Dispatcher) SubscribeNewsletter(ctx context.Context, sessionID, email string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)
	if err := d.validate.Var(email, "required,email"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "enter a valid email address").
			WithDetails(map[string]any{"email": "must be a valid email address"})
	}

	if d.limiter != nil && d.settings.NewsletterLimit > 0 {
		allowed, count, err := d.limiter.FixedWindowAllow(ctx, "newsletter:"+sessionID, d.settings.NewsletterLimit, d.settings.NewsletterWindow)
		if err != nil {
			if d.logg != nil {
				d.logg.Warn(ctx, fmt.Sprintf("newsletter rate limit unavailable: %v", err))
			}
		} else if !allowed {
			return "", pkgerrors.New(pkgerrors.CodeRateLimit, "too many newsletter signups, try again later").
				WithDetails(map[string]any{"count": count})
		}
	}
	return render.MsgSubscribed, nil
}
