package shop

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// ProductInput is the admin product form. Characteristics is free-text
// JSON that must describe an object.
type ProductInput struct {
	Name            string      `json:"name" validate:"required,max=255"`
	Description     string      `json:"description" validate:"max=4000"`
	Price           json.Number `json:"price" validate:"required"`
	CategoryID      string      `json:"categoryId" validate:"required"`
	Photos          []string    `json:"photos" validate:"dive,url"`
	Characteristics string      `json:"characteristics"`
	StockQuantity   *int        `json:"stockQuantity" validate:"required,min=0"`
}

// ValidationError lists per-field problems of a product form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "shop: invalid product: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match httpx.ErrValidation.
func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

// FieldErrors exposes the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ValidateProduct checks the form and converts it to a Product without id.
func ValidateProduct(in ProductInput) (Product, error) {
	fields := make(map[string]string)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Product{}, err
		}
		for _, fe := range verrs {
			field := fe.Field()
			if strings.HasPrefix(field, "photos[") {
				field = "photos"
			}
			fields[field] = productMessage(fe)
		}
	}

	var price decimal.Decimal
	if _, missing := fields["price"]; !missing {
		parsed, err := decimal.NewFromString(in.Price.String())
		switch {
		case err != nil:
			fields["price"] = "must be a number"
		case parsed.IsNegative():
			fields["price"] = "must not be negative"
		default:
			price = parsed
		}
	}

	var characteristics map[string]any
	if raw := strings.TrimSpace(in.Characteristics); raw != "" {
		if err := json.Unmarshal([]byte(raw), &characteristics); err != nil {
			fields["characteristics"] = "must be a JSON object"
		}
	}
	if len(fields) > 0 {
		return Product{}, &ValidationError{Fields: fields}
	}

	photos := make([]string, 0, len(in.Photos))
	for _, p := range in.Photos {
		if p = strings.TrimSpace(p); p != "" {
			photos = append(photos, p)
		}
	}
	return Product{
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Price:           price,
		StockQuantity:   *in.StockQuantity,
		CategoryID:      in.CategoryID,
		Photos:          photos,
		Characteristics: characteristics,
	}, nil
}

func productMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must not be negative"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a URL"
	default:
		return "is invalid"
	}
}
