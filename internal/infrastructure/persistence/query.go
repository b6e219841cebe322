package persistence

import (
	"strings"

	"github.com/opsease/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortSpec whitelists the columns a list query may order by. Anything else
// falls back to the default column so user input never reaches ORDER BY.
type sortSpec struct {
	columns    map[string]struct{}
	defaultCol string
	defaultDir string
}

func newSortSpec(defaultCol, defaultDir string, columns ...string) sortSpec {
	s := sortSpec{
		columns:    map[string]struct{}{"created_at": {}, "updated_at": {}},
		defaultCol: defaultCol,
		defaultDir: defaultDir,
	}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	s.columns[defaultCol] = struct{}{}
	return s
}

var (
	customerSort = newSortSpec("company_name", "ASC",
		"customer_code", "contact_person", "city", "state", "credit_limit", "is_active")
	supplierSort = newSortSpec("company_name", "ASC",
		"supplier_code", "contact_person", "category", "city", "state", "is_active")
	invoiceSort = newSortSpec("created_at", "DESC",
		"invoice_number", "invoice_type", "invoice_date", "due_date", "buyer_name", "total_amount", "status")
)

// orderClause returns "<column> <ASC|DESC>" for the filter. The default
// direction applies only when the caller did not pick a column.
func (s sortSpec) orderClause(filter shared.Filter) string {
	col := strings.TrimSpace(filter.OrderBy)
	if _, ok := s.columns[col]; !ok {
		col = s.defaultCol
	}

	dir := "DESC"
	switch {
	case strings.TrimSpace(filter.OrderBy) == "":
		dir = s.defaultDir
	case strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc"):
		dir = "ASC"
	}
	return col + " " + dir
}

// apply adds ordering and, when a page is requested, offset and limit
func (s sortSpec) apply(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(s.orderClause(filter))
}

// likeOperator returns the case-insensitive LIKE of the connected database.
// SQLite's LIKE already ignores ASCII case and has no ILIKE.
func likeOperator(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}
