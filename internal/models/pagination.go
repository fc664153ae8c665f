package models

// Pagination is the envelope attached to every paginated response.
// Page is 1-indexed and Pages == ceil(Total/Limit).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TotalPages computes ceil(total/limit), 0 when the collection is empty.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewPagination builds a consistent envelope for the given window.
func NewPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: TotalPages(total, limit),
	}
}

// ClampPage forces page into [1, max(pages,1)].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
