// internal/search/diversifier.go
package search

import (
	"sort"
	"strings"

	"sustainatrend-search/internal/models"
)

// Diversify picks at most maxResults items from a scored pool so that every category gets a share
// before the remaining slots go to the best-scoring leftovers.
//
// Pools that already fit the budget are returned unchanged. Otherwise each category, in first-seen
// order, contributes up to max(1, maxResults/categories) items in its existing order, the list is
// back-filled from the pool order with titles not yet present, then stably sorted by score and truncated.
func Diversify(scored []models.SearchResult, maxResults int) []models.SearchResult {
	if maxResults <= 0 {
		return []models.SearchResult{}
	}
	if len(scored) <= maxResults {
		return scored
	}

	var order []string
	groups := make(map[string][]int)
	for i, r := range scored {
		if _, ok := groups[r.Category]; !ok {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], i)
	}

	quota := maxResults
	if len(order) > 0 {
		quota = maxResults / len(order)
	}
	if quota < 1 {
		quota = 1
	}

	picked := make([]int, 0, maxResults)
	selected := make(map[int]bool, maxResults)
	titles := make(map[string]bool, maxResults)
	pick := func(i int) {
		picked = append(picked, i)
		selected[i] = true
		titles[strings.ToLower(scored[i].Title)] = true
	}

	for _, category := range order {
		members := groups[category]
		if len(members) > quota {
			members = members[:quota]
		}
		for _, i := range members {
			pick(i)
		}
	}

	// Back-fill skips titles already present. Colliding leftovers are used only once distinct
	// titles run out, so the output still holds min(len(scored), maxResults) items.
	for i := range scored {
		if len(picked) >= maxResults {
			break
		}
		if selected[i] || titles[strings.ToLower(scored[i].Title)] {
			continue
		}
		pick(i)
	}
	for i := range scored {
		if len(picked) >= maxResults {
			break
		}
		if !selected[i] {
			pick(i)
		}
	}

	diverse := make([]models.SearchResult, len(picked))
	for k, i := range picked {
		diverse[k] = scored[i]
	}

	SortByScore(diverse)

	if len(diverse) > maxResults {
		diverse = diverse[:maxResults]
	}
	return diverse
}

// SortByScore orders results by ranking score, highest first, keeping fetch order on ties.
func SortByScore(results []models.SearchResult) {
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score() > results[b].Score()
	})
}
