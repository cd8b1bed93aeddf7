package repositories

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageBounds clamps a requested page and page size to usable values.
func PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
