package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

// splitPrerequisites splits a cell holding newline-separated prerequisite
// names. Blank entries and the "none" sentinel are dropped.
func splitPrerequisites(cell string) []string {
	var out []string
	for _, p := range strings.Split(cell, "\n") {
		p = strings.TrimSpace(p)
		if p == "" || isNone(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isNone(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), sentinelNone)
}

// ParsePrerequisites derives relationship candidates from tbl in file order.
//
// Rows with a blank Target are skipped, as are rows whose Prerequisite cell
// is blank or the "none" sentinel. Every remaining entry of a multi-line
// Prerequisite cell becomes its own record sharing the row's Target and
// Types. Duplicate candidates are kept.
func ParsePrerequisites(ctx context.Context, tbl *tabular.Table, specs []FieldSpec) ([]PrerequisiteRecord, error) {
	res := ResolveFields(tbl.Headers, specs)
	if err := res.Err(); err != nil {
		return nil, err
	}

	rows := tbl.NonEmptyRows()
	records := make([]PrerequisiteRecord, 0, len(rows))

	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		target, _ := cellValue(row, res, FieldTarget)
		if target == "" {
			continue
		}

		prereq, _ := cellValue(row, res, FieldPrerequisite)
		if prereq == "" || isNone(prereq) {
			continue
		}

		relType, _ := cellValue(row, res, FieldTypes)
		if relType == "" {
			relType = DefaultRelationshipType
		}

		for _, p := range splitPrerequisites(prereq) {
			records = append(records, PrerequisiteRecord{
				Prerequisite: p,
				Target:       target,
				Type:         relType,
				Row:          row.Number,
			})
		}
	}

	return records, nil
}
