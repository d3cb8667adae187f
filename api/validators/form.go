package validators

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"form", "json"} {
			if tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

// AddItemForm is posted by the card and detail "add" buttons.
type AddItemForm struct {
	ID   int64  `form:"id" validate:"required,gt=0"`
	From string `form:"from" validate:"omitempty,oneof=card detail"`
}

// LineActionForm is posted by the cart row buttons.
type LineActionForm struct {
	ID     int64  `form:"id" validate:"required,gt=0"`
	Action string `form:"action" validate:"required,oneof=increase decrease remove"`
}

// NewsletterForm is posted by the newsletter signup.
type NewsletterForm struct {
	Email string `form:"email" validate:"required,email,max=254"`
}

// ParseAddItemForm reads and validates the add-to-cart form.
func ParseAddItemForm(r *http.Request) (AddItemForm, error) {
	if err := r.ParseForm(); err != nil {
		return AddItemForm{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	form := AddItemForm{From: strings.ToLower(SanitizeString(r.PostForm.Get("from"), 16))}
	id, err := ParseID(r.PostForm.Get("id"), "id")
	if err != nil {
		return AddItemForm{}, err
	}
	form.ID = id
	return form, ValidateStruct(form)
}

// ParseLineActionForm reads the cart row form; the line id comes from the path.
func ParseLineActionForm(r *http.Request, rawID string) (LineActionForm, error) {
	if err := r.ParseForm(); err != nil {
		return LineActionForm{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	id, err := ParseID(rawID, "id")
	if err != nil {
		return LineActionForm{}, err
	}
	form := LineActionForm{
		ID:     id,
		Action: strings.ToLower(SanitizeString(r.PostForm.Get("action"), 16)),
	}
	return form, ValidateStruct(form)
}

// ParseNewsletterForm reads and validates the newsletter form.
func ParseNewsletterForm(r *http.Request) (NewsletterForm, error) {
	if err := r.ParseForm(); err != nil {
		return NewsletterForm{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	form := NewsletterForm{Email: SanitizeString(r.PostForm.Get("email"), 320)}
	return form, ValidateStruct(form)
}

// ParseID parses a positive product id.
func ParseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// ValidateStruct runs the validate tags of v.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}
