package query

import "strings"

// SortField is one element of a multi-field sort specification.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses a comma-separated sort expression. A "-" prefix
// marks a field as descending: "name,-created_at".
func ParseSortFields(expr string) []SortField {
	if expr == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		descending := strings.HasPrefix(part, "-")
		fields = append(fields, SortField{
			Field:      strings.TrimPrefix(part, "-"),
			Descending: descending,
		})
	}
	return fields
}

// OrderByFields applies the first recognized sort field. Unknown fields fall
// through to the builder's default sort.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	for _, f := range fields {
		if b.projection.Column(f.Field) == "" {
			continue
		}
		return b.OrderBy(f.Field, f.Descending)
	}
	return b
}
