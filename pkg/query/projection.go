// Package query provides a small SQL builder for filtered, sorted, paginated
// PostgreSQL queries.
package query

import "strings"

// Field binds a logical field name to a table column.
type Field struct {
	Name   string
	Column string
}

// ProjectionMap binds logical field names to table columns so callers never
// pass raw column names through the API surface. Column order follows the
// declaration order, which scan functions rely on.
type ProjectionMap struct {
	table   string
	fields  map[string]string
	columns string
}

// NewProjectionMap creates a projection for the given table.
func NewProjectionMap(table string, fields ...Field) *ProjectionMap {
	byName := make(map[string]string, len(fields))
	columns := make([]string, len(fields))
	for i, f := range fields {
		byName[f.Name] = f.Column
		columns[i] = f.Column
	}

	return &ProjectionMap{
		table:   table,
		fields:  byName,
		columns: strings.Join(columns, ", "),
	}
}

// Table returns the projected table name.
func (p *ProjectionMap) Table() string {
	return p.table
}

// Columns returns the comma-separated column list in declaration order.
func (p *ProjectionMap) Columns() string {
	return p.columns
}

// Column resolves a logical field name to its column. Unknown fields resolve
// to the empty string, which surfaces as invalid SQL rather than injection.
func (p *ProjectionMap) Column(field string) string {
	return p.fields[field]
}
