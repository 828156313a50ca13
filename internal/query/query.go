// Package query runs ad-hoc SQL against the tracking database and formats
// results as tab-separated text.
package query

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/cctrack/cctrack/internal/types"
)

// Execute runs the query and returns a header line plus one TSV line per
// row. NULLs print as NULL, blobs as a size placeholder.
func Execute(db *sql.DB, query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", types.ErrNoQuery
	}

	rows, err := db.Query(trimmed)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read columns: %w", err)
	}

	var out strings.Builder
	out.WriteString(strings.Join(cols, "\t"))
	out.WriteByte('\n')

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}
		fields := make([]string, len(cols))
		for i, v := range values {
			fields[i] = formatValue(v)
		}
		out.WriteString(strings.Join(fields, "\t"))
		out.WriteByte('\n')
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
