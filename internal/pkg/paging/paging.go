package paging

import "math"

// Normalize clamps page to at least 1 and limit into [1, max], using def for
// a missing limit.
func Normalize(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Offset is the number of rows before page. Pages too large to address
// saturate at math.MaxInt instead of wrapping, so they read as past the end.
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Slice returns the items of page. A page past the end is empty.
func Slice[T any](items []T, page, limit int) []T {
	start := Offset(page, limit)
	if start >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && end-start > limit {
		end = start + limit
	}
	return items[start:end]
}

// Tail returns the [start, end) bounds of page counted from the end of a log
// of total entries, newest page first.
func Tail(total, page, limit int) (int, int) {
	skip := Offset(page, limit)
	if total <= 0 || skip >= total {
		return 0, 0
	}
	end := total - skip
	start := 0
	if limit > 0 && end > limit {
		start = end - limit
	}
	return start, end
}
