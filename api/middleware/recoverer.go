package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const apiPrefix = "/api/"

// Recoverer turns a handler panic into a 500. JSON clients under /api get
// the error envelope; storefront pages get a plain-text message.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ctx := r.Context()
				typed := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "handler panicked").
					WithDetails(map[string]any{"method": r.Method, "path": r.URL.Path})

				if strings.HasPrefix(r.URL.Path, apiPrefix) {
					responses.WriteError(ctx, logg, w, typed)
					return
				}
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": fmt.Sprint(rec)})
					logg.Error(ctx, "panic.recovered", typed)
				}
				http.Error(w, responses.PublicMessage(typed), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
