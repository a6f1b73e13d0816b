package domain

import "math/rand/v2"

const RecommendationsLimit = 4

// Recommend picks up to limit in-stock products of the category,
// excluding productID. Order is random.
func Recommend(ps []Product, productID int, category string, limit int) []Product {
	candidates := make([]Product, 0, len(ps))
	for _, p := range ps {
		if p.ID == productID || p.Category != category || !p.InStock {
			continue
		}
		candidates = append(candidates, p.Clone())
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
