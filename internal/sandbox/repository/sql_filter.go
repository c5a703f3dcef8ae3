package repository

import (
	"strconv"
	"strings"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

// placeholderFunc renders the n-th (1-based) bind parameter of a dialect.
type placeholderFunc func(n int) string

func postgresPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func mysqlPlaceholder(int) string {
	return "?"
}

// recordWhere renders the WHERE clause of a record filter. Every tag group becomes an
// EXISTS over record_tags so a record matches when it carries one tag of each group.
// userID is the already encoded user id argument of the dialect.
func recordWhere(
	filter sandboxDomain.RecordFilter,
	userID any,
	ph placeholderFunc,
) (string, []any) {
	args := []any{userID}
	clauses := []string{"r.user_id = " + ph(len(args))}

	for _, group := range filter.TagGroups {
		marks := make([]string, 0, len(group))
		for _, tag := range group {
			args = append(args, tag)
			marks = append(marks, ph(len(args)))
		}
		clauses = append(clauses, "EXISTS (SELECT 1 FROM record_tags rt WHERE rt.record_id = r.id AND rt.tag IN ("+
			strings.Join(marks, ", ")+"))")
	}

	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		clauses = append(clauses, "r.date >= "+ph(len(args)))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		clauses = append(clauses, "r.date <= "+ph(len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
