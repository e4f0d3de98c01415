package shop

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestValidateProductAccepts(t *testing.T) {
	p, err := ValidateProduct(ProductInput{
		Name:            " Tilapia frais ",
		Price:           "2500",
		CategoryID:      "cat-1",
		Photos:          []string{"https://cdn.example.com/a.jpg", " "},
		Characteristics: `{"poids": "1kg", "origine": "Ebolowa"}`,
		StockQuantity:   intPtr(12),
	})
	require.NoError(t, err)
	require.Equal(t, "Tilapia frais", p.Name)
	require.True(t, p.Price.Equal(decimal.NewFromInt(2500)))
	require.Equal(t, 12, p.StockQuantity)
	require.Equal(t, []string{"https://cdn.example.com/a.jpg"}, p.Photos)
	require.Equal(t, "Ebolowa", p.Characteristics["origine"])
}

func TestValidateProductRejects(t *testing.T) {
	_, err := ValidateProduct(ProductInput{
		Price:           "-1",
		Photos:          []string{"not a url"},
		Characteristics: `["list"]`,
		StockQuantity:   intPtr(-2),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "categoryId")
	require.Contains(t, verr.Fields, "photos")
	require.Contains(t, verr.Fields, "stockQuantity")
	require.Equal(t, "must not be negative", verr.Fields["price"])
	require.Equal(t, "must be a JSON object", verr.Fields["characteristics"])

	_, err = ValidateProduct(ProductInput{Name: "x", Price: "1", CategoryID: "c"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "is required", verr.Fields["stockQuantity"])
}
