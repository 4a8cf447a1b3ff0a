package repository

import "gorm.io/gorm"

// Page describes a 1-based page request. A zero PageSize disables pagination.
type Page struct {
	Page     int
	PageSize int
}

func paginate(query *gorm.DB, page Page) *gorm.DB {
	if page.PageSize <= 0 {
		return query
	}
	current := page.Page
	if current <= 0 {
		current = 1
	}
	return query.Offset((current - 1) * page.PageSize).Limit(page.PageSize)
}

func clampLimit(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
