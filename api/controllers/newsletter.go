package controllers

import (
	"net/http"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/middleware"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/validators"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const invalidEmailMessage = "Please enter a valid email address."

// Newsletter acknowledges a signup; the outcome is shown under the form.
func Newsletter(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := validators.ParseNewsletterForm(r)
		if err != nil {
			setFlash(w, flashMessage{Newsletter: invalidEmailMessage})
			redirect(w, r, "/")
			return
		}
		msg, err := svc.SubscribeNewsletter(ctx, middleware.SessionIDFromContext(ctx), form.Email)
		if err != nil {
			msg = responses.PublicMessage(err)
		}
		setFlash(w, flashMessage{Newsletter: msg})
		redirect(w, r, "/")
	}
}
