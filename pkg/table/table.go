// Package table interprets a data-driven column schema against any row
// type. Handlers and exporters describe their columns once; the renderer
// only needs each column's accessor, not the concrete row shape.
package table

import "github.com/smartconstruct/course-admin-api/pkg/pagination"

// Column describes one column of a listing table. Render maps a row to its
// cell text; accessors for absent optional fields should return "".
type Column[T any] struct {
	Key      string
	Title    string
	Sortable bool
	Render   func(row T) string
}

// Rendered is the presentation-ready form of one listing page.
type Rendered struct {
	Headers   []string
	Rows      [][]string
	PageCount int
	Empty     bool
}

// Render interprets the column schema over one page of items. PageCount is
// derived from the full filtered count, not the page length. Zero rows
// produce an empty (non-nil) row set.
func Render[T any](columns []Column[T], result pagination.PageResult[T], limit int) Rendered {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Title
	}

	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if col.Render != nil {
				cells[i] = col.Render(item)
			}
		}
		rows = append(rows, cells)
	}

	return Rendered{
		Headers:   headers,
		Rows:      rows,
		PageCount: pagination.PageCount(result.TotalCount, limit),
		Empty:     len(rows) == 0,
	}
}

// SortableKeys returns the keys of columns that allow server-side sorting.
func SortableKeys[T any](columns []Column[T]) []string {
	keys := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Sortable {
			keys = append(keys, col.Key)
		}
	}
	return keys
}
