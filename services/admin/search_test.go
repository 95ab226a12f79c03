package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByStock(t *testing.T) {
	// Arrange
	candidates := []Product{
		{ID: "p1", Name: "Oak Bookshelf", Stock: 0},
		{ID: "p2", Name: "Walnut Desk", Stock: 3},
		{ID: "p3", Name: "Pine Wardrobe", Stock: 10},
		{ID: "p4", Name: "Velvet Armchair", Stock: 42},
	}

	t.Run("empty filter returns all candidates", func(t *testing.T) {
		// Act
		filtered := filterByStock(candidates, "")

		// Assert
		assert.Len(t, filtered, 4)
	})

	t.Run("low keeps only stock between 1 and threshold", func(t *testing.T) {
		// Act
		filtered := filterByStock(candidates, StockFilterLow)

		// Assert
		assert.Len(t, filtered, 2)
		assert.Equal(t, "p2", filtered[0].ID)
		assert.Equal(t, "p3", filtered[1].ID)
	})

	t.Run("out keeps only zero stock", func(t *testing.T) {
		// Act
		filtered := filterByStock(candidates, StockFilterOut)

		// Assert
		assert.Len(t, filtered, 1)
		assert.Equal(t, "p1", filtered[0].ID)
	})
}

func TestSearchProducts_EmptyQuery(t *testing.T) {
	// Arrange
	candidates := []Product{{ID: "p1", Name: "Oak Table"}}

	// Act
	results := searchProducts("   ", candidates, defaultAdminSearchLimit)

	// Assert
	assert.Empty(t, results)
}

func TestSearchProducts_SKUMatchContributes(t *testing.T) {
	// Arrange - only the first product carries the queried SKU fragment
	candidates := []Product{
		{ID: "p1", SKU: "CHR-OAK-001", Name: "Dining Chair", Category: "chairs"},
		{ID: "p2", SKU: "TBL-WAL-002", Name: "Dining Chair", Category: "chairs"},
	}

	// Act
	results := searchProducts("chr-oak-001", candidates, defaultAdminSearchLimit)

	// Assert - the SKU holder ranks first, the other may still match fuzzily
	assert.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].ID)
}

func TestSearchProducts_NameOutranksSKU(t *testing.T) {
	// Arrange
	candidates := []Product{
		{ID: "p1", SKU: "SOFA-100", Name: "Leather Recliner", Category: "seating"},
		{ID: "p2", SKU: "CHR-200", Name: "Sofa Bed", Category: "seating"},
	}

	// Act
	results := searchProducts("sofa", candidates, defaultAdminSearchLimit)

	// Assert - phrase + word hit on the name beats a bare SKU fragment
	assert.Len(t, results, 2)
	assert.Equal(t, "p2", results[0].ID)
	assert.Equal(t, "p1", results[1].ID)
}

func TestSearchProducts_NoDescriptionOrColorSignal(t *testing.T) {
	// Arrange - the admin scorer ignores description and colors entirely
	candidates := []Product{
		{ID: "p1", Name: "Wardrobe", Category: "storage", Description: "spacious walnut finish", Colors: []string{"walnut"}},
	}

	// Act
	results := searchProducts("walnut", candidates, defaultAdminSearchLimit)

	// Assert
	assert.Empty(t, results)
}

func TestSearchProducts_TruncatesToLimit(t *testing.T) {
	// Arrange
	candidates := make([]Product, 0, 20)
	for i := 0; i < 20; i++ {
		candidates = append(candidates, Product{
			ID:       string(rune('a' + i)),
			Name:     "Oak Shelf",
			Category: "storage",
		})
	}

	// Act
	results := searchProducts("oak", candidates, defaultAdminSearchLimit)

	// Assert
	assert.Len(t, results, defaultAdminSearchLimit)
}

func TestSearchProducts_StableOrderOnTies(t *testing.T) {
	// Arrange - identical products score identically
	candidates := []Product{
		{ID: "p1", Name: "Oak Shelf", Category: "storage"},
		{ID: "p2", Name: "Oak Shelf", Category: "storage"},
		{ID: "p3", Name: "Oak Shelf", Category: "storage"},
	}

	// Act
	results := searchProducts("oak shelf", candidates, defaultAdminSearchLimit)

	// Assert - candidate order is preserved among ties
	assert.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "p2", results[1].ID)
	assert.Equal(t, "p3", results[2].ID)
}

func TestSearchProducts_AccentedNameFuzzyMatch(t *testing.T) {
	// Arrange - "café" está a uma edição de "cafe" contando caracteres,
	// não bytes
	candidates := []Product{
		{ID: "p1", Name: "Café", Category: "tables"},
	}

	// Act
	results := searchProducts("cafe", candidates, defaultAdminSearchLimit)

	// Assert
	assert.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}

func TestSearchProducts_FuzzyTypoMatch(t *testing.T) {
	// Arrange - "wardobe" is one edit away from "wardrobe"
	candidates := []Product{
		{ID: "p1", Name: "Wardrobe", Category: "storage"},
	}

	// Act
	results := searchProducts("wardobe", candidates, defaultAdminSearchLimit)

	// Assert
	assert.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}
