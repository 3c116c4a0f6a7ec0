package cashcard_repo

import (
	"strings"

	"cashcards/internal/domain"
)

// OrderBy renders an ORDER BY clause for orders using only the column
// expressions in columns, and always ends with "id ASC" so pages are stable.
// Fields missing from columns are skipped.
func OrderBy(orders []domain.SortOrder, columns map[domain.SortField]string) string {
	terms := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		col, ok := columns[o.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Direction == domain.Desc {
			dir = "DESC"
		}
		terms = append(terms, col+" "+dir)
	}
	terms = append(terms, "id ASC")
	return "ORDER BY " + strings.Join(terms, ", ")
}
