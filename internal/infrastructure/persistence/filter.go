package persistence

import (
	"fmt"
	"strings"

	"github.com/germani/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies pagination and ordering from a shared.Filter to a
// query. Order columns are restricted to identifier characters to keep
// user input out of the SQL.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" && isSafeColumn(filter.OrderBy) {
		dir := "DESC"
		if strings.EqualFold(filter.OrderDir, "asc") {
			dir = "ASC"
		}
		query = query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	return query
}

func isSafeColumn(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return name != ""
}
