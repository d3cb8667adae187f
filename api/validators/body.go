package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

const maxJSONBody = 64 << 10

// AddItemRequest is the JSON body of POST /api/v1/cart/items.
type AddItemRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// LineActionRequest is the JSON body of POST /api/v1/cart/items/{id}.
type LineActionRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease remove"`
}

// DecodeJSONBody decodes a single JSON object into dest and validates it.
// Unknown fields and trailing data are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must hold a single JSON object")
	}
	return ValidateStruct(dest)
}

// ParseAddItemJSON decodes the JSON add-to-cart request.
func ParseAddItemJSON(r *http.Request) (AddItemForm, error) {
	var req AddItemRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		return AddItemForm{}, err
	}
	return AddItemForm{ID: req.ID}, nil
}

// ParseLineActionJSON decodes the JSON line action; the line id comes from the path.
func ParseLineActionJSON(r *http.Request, rawID string) (LineActionForm, error) {
	id, err := ParseID(rawID, "id")
	if err != nil {
		return LineActionForm{}, err
	}
	var req LineActionRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		return LineActionForm{}, err
	}
	return LineActionForm{ID: id, Action: req.Action}, nil
}
