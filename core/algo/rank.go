package algo

import "sort"

// RankTop sorts items by weight in descending order and returns the top
// 'limit' items. Items of equal weight keep their relative input order, so
// ranking the same findings twice yields the same result. If limit is zero
// or negative, all items are returned in sorted order.
func RankTop[T any](items []T, weight func(T) int, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return weight(items[i]) > weight(items[j])
	})
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
