package main

import (
	"math"
	"sort"
	"strings"
)

// Pesos de relevância da busca administrativa. Diferente da vitrine, o
// back office casa palavras contra o SKU em vez de materiais, e não olha
// descrição nem cores.
const (
	scoreNamePhrase     = 100
	scoreCategoryPhrase = 80
	scoreNameWord       = 50
	scoreCategoryWord   = 40
	scoreSKUWord        = 30

	fuzzyThreshold      = 0.6
	fuzzyNameWeight     = 40
	fuzzyCategoryWeight = 30
)

type scoredProduct struct {
	product Product
	score   int
}

// filterByStock restringe os candidatos pelo nível de estoque ANTES do
// ranqueamento. Filtro vazio devolve todos.
func filterByStock(candidates []Product, filter string) []Product {
	if filter == "" {
		return candidates
	}

	filtered := make([]Product, 0, len(candidates))
	for _, p := range candidates {
		switch filter {
		case StockFilterLow:
			if p.Stock > 0 && p.Stock <= lowStockThreshold {
				filtered = append(filtered, p)
			}
		case StockFilterOut:
			if p.Stock == 0 {
				filtered = append(filtered, p)
			}
		}
	}
	return filtered
}

// searchProducts ranqueia os candidatos contra a query e devolve os top-N.
// Query vazia ou só com espaços devolve uma lista vazia, sem erro.
func searchProducts(query string, candidates []Product, limit int) []Product {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return []Product{}
	}
	words := strings.Fields(normalized)

	scored := make([]scoredProduct, 0, len(candidates))
	for _, p := range candidates {
		score := scoreProduct(p, normalized, words)
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredProduct{product: p, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]Product, 0, len(scored))
	for _, s := range scored {
		results = append(results, s.product)
	}
	return results
}

func scoreProduct(p Product, query string, words []string) int {
	name := strings.ToLower(p.Name)
	category := strings.ToLower(p.Category)
	sku := strings.ToLower(p.SKU)

	score := 0

	if strings.Contains(name, query) {
		score += scoreNamePhrase
	}
	if strings.Contains(category, query) {
		score += scoreCategoryPhrase
	}

	for _, word := range words {
		if strings.Contains(name, word) {
			score += scoreNameWord
		}
		if strings.Contains(category, word) {
			score += scoreCategoryWord
		}
		if sku != "" && strings.Contains(sku, word) {
			score += scoreSKUWord
		}
	}

	if sim := similarity(query, name); sim > fuzzyThreshold {
		score += int(math.Floor(sim * fuzzyNameWeight))
	}
	if sim := similarity(query, category); sim > fuzzyThreshold {
		score += int(math.Floor(sim * fuzzyCategoryWeight))
	}

	return score
}

// similarity calcula a distância de edição normalizada entre duas strings
func similarity(a, b string) float64 {
	// Edição por caractere, não por byte: nomes acentuados contam certo
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-levenshteinDistance(ra, rb)) / float64(maxLen)
}

func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
