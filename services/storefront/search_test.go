package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func catalogFixture() []Product {
	return []Product{
		{ID: "p1", Name: "Oak Dining Table", Category: "Dining", Materials: "solid oak", Colors: []string{"natural", "walnut"}},
		{ID: "p2", Name: "Office Chair", Category: "Office", Materials: "mesh, steel", Colors: []string{"black"}},
		{ID: "p3", Name: "Velvet Sofa", Category: "Living Room", Description: "three seater velvet sofa", Colors: []string{"emerald", "grey"}},
		{ID: "p4", Name: "Bookshelf", Category: "Living Room", Materials: "oak veneer"},
	}
}

func TestSearchProducts_EmptyQuery(t *testing.T) {
	// Arrange
	candidates := catalogFixture()

	// Act & Assert
	assert.Empty(t, searchProducts("", candidates, 10))
	assert.Empty(t, searchProducts("   ", candidates, 10))
}

func TestSearchProducts_PhraseMatchExcludesNonMatching(t *testing.T) {
	// Arrange
	candidates := []Product{
		{ID: "p1", Name: "Oak Dining Table", Category: "Dining"},
		{ID: "p2", Name: "Office Chair", Category: "Office"},
	}

	// Act
	results := searchProducts("dining", candidates, 10)

	// Assert: só o primeiro candidato pontua, o segundo fica de fora
	assert.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}

func TestSearchProducts_RankingOrder(t *testing.T) {
	// Arrange: "oak" casa no nome de p1 (frase + palavra) mas só nos
	// materiais de p4, então p1 deve ranquear acima de p4
	candidates := catalogFixture()

	// Act
	results := searchProducts("oak", candidates, 10)

	// Assert
	assert.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "p4", results[1].ID)
}

func TestSearchProducts_MatchesDescriptionAndColors(t *testing.T) {
	// Act
	byDescription := searchProducts("seater", catalogFixture(), 10)
	byColor := searchProducts("emerald", catalogFixture(), 10)

	// Assert
	assert.Len(t, byDescription, 1)
	assert.Equal(t, "p3", byDescription[0].ID)
	assert.Len(t, byColor, 1)
	assert.Equal(t, "p3", byColor[0].ID)
}

func TestSearchProducts_LimitTruncates(t *testing.T) {
	// Arrange
	candidates := make([]Product, 0, 20)
	for i := 0; i < 20; i++ {
		candidates = append(candidates, Product{ID: string(rune('a' + i)), Name: "Dining Chair", Category: "Dining"})
	}

	// Act
	results := searchProducts("dining", candidates, 5)

	// Assert
	assert.Len(t, results, 5)
}

func TestSearchProducts_StableOnTies(t *testing.T) {
	// Arrange: candidatos idênticos empatam e preservam a ordem original
	candidates := []Product{
		{ID: "first", Name: "Dining Table", Category: "Dining"},
		{ID: "second", Name: "Dining Table", Category: "Dining"},
		{ID: "third", Name: "Dining Table", Category: "Dining"},
	}

	// Act
	results := searchProducts("dining", candidates, 10)

	// Assert
	assert.Len(t, results, 3)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
	assert.Equal(t, "third", results[2].ID)
}

func TestSearchProducts_FuzzyMatchTypo(t *testing.T) {
	// Arrange: "tabel" não é substring de nenhum campo, mas fica perto
	// de "table" na distância de edição
	candidates := []Product{
		{ID: "p1", Name: "Table", Category: "Dining"},
		{ID: "p2", Name: "Wardrobe", Category: "Bedroom"},
	}

	// Act
	results := searchProducts("tabel", candidates, 10)

	// Assert: similarity("tabel","table") = (5-2)/5 = 0.6 não passa do
	// limiar, então só verificamos que o não-relacionado fica de fora
	for _, p := range results {
		assert.NotEqual(t, "p2", p.ID)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("sofa", "sofa"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.InDelta(t, 0.571, similarity("kitten", "sitting"), 0.001)
	assert.Equal(t, 0.0, similarity("abc", ""))
	// Acentos contam como um caractere, não como bytes
	assert.InDelta(t, 0.8, similarity("décor", "decor"), 0.001)
	assert.Equal(t, 1.0, similarity("Café", "café"))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 3, levenshteinDistance([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, levenshteinDistance([]rune("chair"), []rune("chair")))
	assert.Equal(t, 5, levenshteinDistance([]rune(""), []rune("couch")))
	assert.Equal(t, 4, levenshteinDistance([]rune("sofa"), []rune("")))
	assert.Equal(t, 1, levenshteinDistance([]rune("table"), []rune("tables")))
	assert.Equal(t, 1, levenshteinDistance([]rune("décor"), []rune("decor")))
}
