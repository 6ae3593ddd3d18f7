package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
)

func TestAll(t *testing.T) {
	all := All()

	require.Len(t, all, 10)
	assert.Equal(t, "orju-t-shirt", all[0].ID)
	assert.Equal(t, "diary-denim-cap-light-gray", all[9].ID)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.True(t, p.Price.IsPositive(), p.ID)
		assert.NotEmpty(t, p.Description, p.ID)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"

	p, _ := Find("orju-t-shirt")
	assert.Equal(t, "Orju T-Shirt", p.Name)
}

func TestFind(t *testing.T) {
	p, ok := Find("diary-baseball-cap-navy-blue")
	require.True(t, ok)
	assert.Equal(t, "20", p.Price.String())
	assert.Equal(t, CapLimit, p.MaxPerOrder)

	_, ok = Find("hoodie")
	assert.False(t, ok)
}

func TestLineItem_Shirt(t *testing.T) {
	item, err := LineItem("diary-shirt-peach", "xl", 2)

	require.NoError(t, err)
	assert.Equal(t, "Diary Shirt Peach", item.Name)
	assert.Equal(t, "XL", item.Size)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "27", item.Price.String())
	assert.Equal(t, "/placeholder.svg", item.ImageURL)
	assert.Len(t, item.Sizes, 6)
}

func TestLineItem_Cap(t *testing.T) {
	item, err := LineItem("orju-cap", "", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Empty(t, item.Size)
	assert.Empty(t, item.Sizes)
}

func TestLineItem_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		size     string
		quantity int
		message  string
	}{
		{"unknown product", "hoodie", "", 1, `Unknown product "hoodie"`},
		{"shirt without size", "orju-t-shirt", "", 1, "Orju T-Shirt needs a size (XS, S, M, L, XL, XXL)"},
		{"shirt with unknown size", "orju-t-shirt", "XXXL", 1, "Orju T-Shirt has no size XXXL"},
		{"cap with size", "orju-cap", "M", 1, "Orju Cap comes in one size"},
		{"cap over limit", "diary-baseball-cap-black", "", 6, "At most 5 of Diary Baseball Cap Black per order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LineItem(tt.id, tt.size, tt.quantity)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestLineItem_CapAtLimit(t *testing.T) {
	item, err := LineItem("diary-denim-cap-dark-gray", "", CapLimit)

	require.NoError(t, err)
	assert.Equal(t, CapLimit, item.Quantity)
}
