package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

// ContextCheckInterval is how often (in rows) to check for context cancellation.
// Checking every row would be expensive; checking periodically balances responsiveness
// with performance.
var ContextCheckInterval = 100

// cellValue returns the trimmed cell under the header resolved for field.
// The boolean is false when the field was not resolved or the row is short.
func cellValue(row tabular.Row, res Resolution, field string) (string, bool) {
	header, ok := res.Header(field)
	if !ok {
		return "", false
	}
	v, ok := row.Get(header)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// parseIsRoot maps TRUE/FALSE (any case, trimmed) to a boolean. Anything
// else, including blank, is unknown.
func parseIsRoot(v string) *bool {
	var b bool
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "TRUE":
		b = true
	case "FALSE":
		b = false
	default:
		return nil
	}
	return &b
}

// hierarchyValue drops blank cells and the not-applicable sentinel.
func hierarchyValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, sentinelNotApplicable) {
		return ""
	}
	return v
}

// ParseKnowledgePoints derives node records from tbl in file order.
//
// Fully blank rows and rows with a blank Name are skipped. A Name seen
// earlier in the file aborts with *DuplicateNameError. Missing required
// columns abort with *MissingFieldsError before any row is looked at.
func ParseKnowledgePoints(ctx context.Context, tbl *tabular.Table, specs []FieldSpec) ([]KnowledgePointRecord, error) {
	res := ResolveFields(tbl.Headers, specs)
	if err := res.Err(); err != nil {
		return nil, err
	}

	rows := tbl.NonEmptyRows()
	records := make([]KnowledgePointRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		name, _ := cellValue(row, res, FieldName)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, &DuplicateNameError{Name: name, Row: row.Number}
		}
		seen[name] = struct{}{}

		rec := KnowledgePointRecord{Name: name, Row: row.Number}

		rec.Label, _ = cellValue(row, res, FieldLabel)
		if rec.Label == "" {
			rec.Label = DefaultLabel
		}
		rec.EducationSystem, _ = cellValue(row, res, FieldEducationSystem)
		rec.Subject, _ = cellValue(row, res, FieldSubject)

		if v, ok := cellValue(row, res, FieldIsRoot); ok {
			rec.IsRoot = parseIsRoot(v)
		}
		rec.KnowledgeID, _ = cellValue(row, res, FieldID)

		if v, ok := cellValue(row, res, FieldTopic); ok {
			rec.Topic = hierarchyValue(v)
		}
		if v, ok := cellValue(row, res, FieldUnit); ok {
			rec.Unit = hierarchyValue(v)
		}
		if v, ok := cellValue(row, res, FieldConcept); ok {
			rec.Concept = hierarchyValue(v)
		}

		records = append(records, rec)
	}

	return records, nil
}
