// Package receipts covers the receipt detail page and its field-level edits.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/receiptly/dashboard/internal/upstream"
)

// ErrValidation wraps every locally rejected edit so handlers can map it to
// a 422 without inspecting field detail.
var ErrValidation = errors.New("receipts: validation failed")

// FieldError describes why one edit was rejected before reaching upstream.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, ErrValidation)
}

func (e FieldError) Unwrap() error { return ErrValidation }

// Editable scalar receipt fields.
const (
	FieldStoreName     = "store_name"
	FieldStoreCategory = "store_category"
	FieldDate          = "date"
	FieldTaxAmount     = "tax_amount"
	FieldTotalDiscount = "total_discount"
)

type storeNameEdit struct {
	Value string `validate:"required,min=1,max=120"`
}

type storeCategoryEdit struct {
	Value string `validate:"required,min=1,max=60"`
}

// Editor validates receipt edits locally and forwards accepted ones
// upstream one field at a time. A rejected edit never leaves the process.
type Editor struct {
	api      *upstream.Client
	validate *validator.Validate
}

// NewEditor constructs the edit service.
func NewEditor(api *upstream.Client) *Editor {
	return &Editor{api: api, validate: validator.New()}
}

// Load fetches the receipt for the detail page.
func (e *Editor) Load(ctx context.Context, receiptID int64) (upstream.Receipt, error) {
	return e.api.GetReceipt(ctx, receiptID)
}

// UpdateField validates and persists one scalar field edit. The returned
// receipt is the upstream state after the edit.
func (e *Editor) UpdateField(ctx context.Context, receiptID int64, field, value string) (upstream.Receipt, error) {
	value = strings.TrimSpace(value)
	if err := e.checkField(field, value); err != nil {
		return upstream.Receipt{}, err
	}
	res, err := e.api.UpdateReceiptField(ctx, receiptID, field, value)
	if err != nil {
		return upstream.Receipt{}, err
	}
	return res.Receipt, nil
}

// UpdateItemPrice validates and persists one line-item price edit. The raw
// input is parsed as a decimal so "12.999" or "-3" never reach upstream.
func (e *Editor) UpdateItemPrice(ctx context.Context, receiptID int64, itemIndex int, raw string) (upstream.Receipt, error) {
	if itemIndex < 0 {
		return upstream.Receipt{}, FieldError{Field: "item_index", Reason: "must not be negative"}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return upstream.Receipt{}, FieldError{Field: "price", Reason: "not a number"}
	}
	if price.IsNegative() {
		return upstream.Receipt{}, FieldError{Field: "price", Reason: "must not be negative"}
	}
	if price.Exponent() < -2 {
		return upstream.Receipt{}, FieldError{Field: "price", Reason: "at most two decimal places"}
	}
	res, err := e.api.UpdateItemPrice(ctx, receiptID, itemIndex, price.InexactFloat64())
	if err != nil {
		return upstream.Receipt{}, err
	}
	return res.Receipt, nil
}

func (e *Editor) checkField(field, value string) error {
	switch field {
	case FieldStoreName:
		if err := e.validate.Struct(storeNameEdit{Value: value}); err != nil {
			return FieldError{Field: field, Reason: "must be 1 to 120 characters"}
		}
	case FieldStoreCategory:
		if err := e.validate.Struct(storeCategoryEdit{Value: value}); err != nil {
			return FieldError{Field: field, Reason: "must be 1 to 60 characters"}
		}
	case FieldDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return FieldError{Field: field, Reason: "must be YYYY-MM-DD"}
		}
	case FieldTaxAmount, FieldTotalDiscount:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return FieldError{Field: field, Reason: "not a number"}
		}
		if amount.IsNegative() {
			return FieldError{Field: field, Reason: "must not be negative"}
		}
	default:
		return FieldError{Field: field, Reason: "not editable"}
	}
	return nil
}
