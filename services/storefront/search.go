package main

import (
	"math"
	"sort"
	"strings"
)

// Pesos de relevância da busca da vitrine
const (
	scoreNamePhrase     = 100
	scoreCategoryPhrase = 80
	scoreNameWord       = 50
	scoreCategoryWord   = 40
	scoreMaterialsWord  = 30
	scoreDescWord       = 20
	scoreColorWord      = 25

	fuzzyThreshold      = 0.6
	fuzzyNameWeight     = 40
	fuzzyCategoryWeight = 30
)

// scoredProduct associa um produto ao score transitório de relevância.
// O score existe apenas durante o ranqueamento e nunca é persistido.
type scoredProduct struct {
	product Product
	score   int
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

	// Ordenação estável: empates preservam a ordem original dos candidatos
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

// scoreProduct soma os sinais independentes de relevância de um candidato.
// Nenhum sinal curto-circuita outro.
func scoreProduct(p Product, query string, words []string) int {
	name := strings.ToLower(p.Name)
	category := strings.ToLower(p.Category)
	description := strings.ToLower(p.Description)
	materials := strings.ToLower(p.Materials)

	score := 0

	// 1. Query completa como substring dos campos principais
	if strings.Contains(name, query) {
		score += scoreNamePhrase
	}
	if strings.Contains(category, query) {
		score += scoreCategoryPhrase
	}

	// 2. Sinais por palavra da query
	for _, word := range words {
		if strings.Contains(name, word) {
			score += scoreNameWord
		}
		if strings.Contains(category, word) {
			score += scoreCategoryWord
		}
		if description != "" && strings.Contains(description, word) {
			score += scoreDescWord
		}
		if materials != "" && strings.Contains(materials, word) {
			score += scoreMaterialsWord
		}
		for _, color := range p.Colors {
			if strings.Contains(strings.ToLower(color), word) {
				score += scoreColorWord
				break
			}
		}
	}

	// 3. Reforço por similaridade fuzzy contra nome e categoria
	if sim := similarity(query, name); sim > fuzzyThreshold {
		score += int(math.Floor(sim * fuzzyNameWeight))
	}
	if sim := similarity(query, category); sim > fuzzyThreshold {
		score += int(math.Floor(sim * fuzzyCategoryWeight))
	}

	return score
}

// similarity calcula a distância de edição normalizada entre duas strings.
// Duas strings vazias têm similaridade 1.0.
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

	distance := levenshteinDistance(ra, rb)
	return float64(maxLen-distance) / float64(maxLen)
}

// levenshteinDistance calcula a distância de edição clássica
// (inserção, remoção e substituição de um caractere)
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
			curr[j] = min3(
				prev[j]+1,      // remoção
				curr[j-1]+1,    // inserção
				prev[j-1]+cost, // substituição
			)
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
