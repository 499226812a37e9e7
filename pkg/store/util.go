package store

// ClampLimit bounds a requested row limit to [1, MaxGraphLimit], substituting
// DefaultGraphLimit when the request carries none.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultGraphLimit
	}
	if limit > MaxGraphLimit {
		return MaxGraphLimit
	}
	return limit
}

// CountDistinct returns the number of distinct persisted ids in a
// temp-id → persisted-id mapping. Multiple temp ids may collide onto one row.
func CountDistinct(tempToDB map[string]int64) int {
	seen := make(map[int64]struct{}, len(tempToDB))
	for _, id := range tempToDB {
		seen[id] = struct{}{}
	}
	return len(seen)
}
