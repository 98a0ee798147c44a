package persistence

import "strings"

// Sortable column whitelists. Order-by input comes from query strings, so
// anything outside the whitelist falls back to the default instead of being
// interpolated into SQL.
var (
	revenueSortColumns = map[string]bool{
		"revenue_date":    true,
		"amount_remitted": true,
		"shortage_amount": true,
		"created_at":      true,
	}
	journalEntrySortColumns = map[string]bool{
		"entry_date":  true,
		"code":        true,
		"total_debit": true,
		"created_at":  true,
	}
)

// orderClause builds a validated ORDER BY clause
func orderClause(allowed map[string]bool, column, direction, fallback string) string {
	if !allowed[column] {
		column = fallback
	}
	dir := "DESC"
	if strings.EqualFold(direction, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

// paginate normalizes page and page size into limit/offset
func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
