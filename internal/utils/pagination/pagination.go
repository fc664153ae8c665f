package pagination

import (
	"strconv"

	"bastion/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Params holds the pagination query parameters of a list request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the row offset for a SQL query.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseFromRequest reads page and limit from the Fiber context.
// Invalid or missing values fall back to page 1 and the given default limit;
// limit is capped at maxLimit to keep queries bounded.
func ParseFromRequest(c *fiber.Ctx, defaultLimit, maxLimit int) Params {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Envelope builds the pagination metadata returned alongside list data.
func Envelope(p Params, total int64) models.Pagination {
	return models.NewPagination(p.Page, p.Limit, int(total))
}
